package memory

import (
	"context"
	"sort"
	"sync"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

type salaryKey struct {
	runID    string
	playerID string
}

// SalaryHistoryStore is an in-memory implementation of storage.SalaryHistoryStore.
type SalaryHistoryStore struct {
	mu   sync.RWMutex
	data map[salaryKey]domain.SalaryPoint
}

// NewSalaryHistoryStore creates a new in-memory salary history store.
func NewSalaryHistoryStore() *SalaryHistoryStore {
	return &SalaryHistoryStore{
		data: make(map[salaryKey]domain.SalaryPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, player_id).
func (s *SalaryHistoryStore) InsertBulk(_ context.Context, points []domain.SalaryPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[salaryKey]struct{}, len(points))
	for _, p := range points {
		if p.RunID == "" || p.PlayerID == "" {
			return storage.ErrInvalidInput
		}
		key := salaryKey{runID: p.RunID, playerID: p.PlayerID}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		s.data[salaryKey{runID: p.RunID, playerID: p.PlayerID}] = p
	}

	return nil
}

// GetByRun retrieves all points of a run, ordered by salary DESC, player_id ASC.
func (s *SalaryHistoryStore) GetByRun(_ context.Context, runID string) ([]domain.SalaryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SalaryPoint
	for key, p := range s.data {
		if key.runID == runID {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Salary != result[j].Salary {
			return result[i].Salary > result[j].Salary
		}
		return result[i].PlayerID < result[j].PlayerID
	})

	return result, nil
}

// GetByPlayer retrieves a player's points in a league, ordered by created_at ASC.
func (s *SalaryHistoryStore) GetByPlayer(_ context.Context, leagueID, playerID string) ([]domain.SalaryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SalaryPoint
	for key, p := range s.data {
		if key.playerID == playerID && p.LeagueID == leagueID {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].RunID < result[j].RunID
	})

	return result, nil
}

var _ storage.SalaryHistoryStore = (*SalaryHistoryStore)(nil)
