package memory

import (
	"context"
	"sort"
	"sync"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

// LeagueStore is an in-memory implementation of storage.LeagueStore.
type LeagueStore struct {
	mu   sync.RWMutex
	data map[string]domain.LeagueConfig // keyed by league_id
}

// NewLeagueStore creates a new in-memory league store.
func NewLeagueStore() *LeagueStore {
	return &LeagueStore{
		data: make(map[string]domain.LeagueConfig),
	}
}

// Insert adds a new league configuration. Returns ErrDuplicateKey if league_id exists.
func (s *LeagueStore) Insert(_ context.Context, cfg *domain.LeagueConfig) error {
	if cfg == nil || cfg.LeagueID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[cfg.LeagueID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[cfg.LeagueID] = cfg.Clone()
	return nil
}

// GetByID retrieves a league by its ID. Returns ErrNotFound if not exists.
func (s *LeagueStore) GetByID(_ context.Context, leagueID string) (*domain.LeagueConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.data[leagueID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := cfg.Clone()
	return &out, nil
}

// List retrieves all leagues ordered by league_id ASC.
func (s *LeagueStore) List(_ context.Context) ([]*domain.LeagueConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LeagueConfig, 0, len(s.data))
	for _, cfg := range s.data {
		out := cfg.Clone()
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LeagueID < result[j].LeagueID
	})

	return result, nil
}

var _ storage.LeagueStore = (*LeagueStore)(nil)
