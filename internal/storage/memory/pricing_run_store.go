package memory

import (
	"context"
	"sort"
	"sync"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

// PricingRunStore is an in-memory implementation of storage.PricingRunStore.
type PricingRunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricingRun // keyed by run_id
}

// NewPricingRunStore creates a new in-memory pricing run store.
func NewPricingRunStore() *PricingRunStore {
	return &PricingRunStore{
		data: make(map[string]*domain.PricingRun),
	}
}

func cloneRun(r *domain.PricingRun) *domain.PricingRun {
	out := *r
	out.Result = r.Result.Clone()
	return &out
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *PricingRunStore) Insert(_ context.Context, run *domain.PricingRun) error {
	if run == nil || run.RunID == "" || run.LeagueID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[run.RunID] = cloneRun(run)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *PricingRunStore) GetByID(_ context.Context, runID string) (*domain.PricingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneRun(run), nil
}

// GetByLeague retrieves all runs for a league, ordered by created_at ASC.
func (s *PricingRunStore) GetByLeague(_ context.Context, leagueID string) ([]*domain.PricingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricingRun
	for _, run := range s.data {
		if run.LeagueID == leagueID {
			result = append(result, cloneRun(run))
		}
	}

	sortRuns(result)
	return result, nil
}

// GetLatest retrieves the newest run for a league season. Returns ErrNotFound if none.
func (s *PricingRunStore) GetLatest(_ context.Context, leagueID string, season int) (*domain.PricingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.PricingRun
	for _, run := range s.data {
		if run.LeagueID != leagueID || run.Season != season {
			continue
		}
		if latest == nil || run.CreatedAt > latest.CreatedAt ||
			(run.CreatedAt == latest.CreatedAt && run.RunID > latest.RunID) {
			latest = run
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return cloneRun(latest), nil
}

func sortRuns(runs []*domain.PricingRun) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt != runs[j].CreatedAt {
			return runs[i].CreatedAt < runs[j].CreatedAt
		}
		return runs[i].RunID < runs[j].RunID
	})
}

var _ storage.PricingRunStore = (*PricingRunStore)(nil)
