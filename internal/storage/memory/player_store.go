package memory

import (
	"context"
	"sync"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

type poolKey struct {
	leagueID string
	season   int
}

// PlayerStore is an in-memory implementation of storage.PlayerStore.
type PlayerStore struct {
	mu    sync.RWMutex
	pools map[poolKey][]domain.PlayerRecord // ingestion order
}

// NewPlayerStore creates a new in-memory player store.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		pools: make(map[poolKey][]domain.PlayerRecord),
	}
}

// InsertBulk appends players to a pool atomically. Fails entire batch on any duplicate.
func (s *PlayerStore) InsertBulk(_ context.Context, leagueID string, season int, players []domain.PlayerRecord) error {
	if leagueID == "" {
		return storage.ErrInvalidInput
	}
	if len(players) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := poolKey{leagueID: leagueID, season: season}
	existing := make(map[string]struct{}, len(s.pools[key]))
	for _, p := range s.pools[key] {
		existing[p.PlayerID] = struct{}{}
	}
	if err := checkBatch(existing, players); err != nil {
		return err
	}

	// Checked; insert all
	for _, p := range players {
		s.pools[key] = append(s.pools[key], p.Clone())
	}

	return nil
}

// GetPool retrieves a pool in ingestion order. Returns an empty slice if none.
func (s *PlayerStore) GetPool(_ context.Context, leagueID string, season int) ([]domain.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ClonePool(s.pools[poolKey{leagueID: leagueID, season: season}]), nil
}

// GetByID retrieves one player of a pool. Returns ErrNotFound if not exists.
func (s *PlayerStore) GetByID(_ context.Context, leagueID string, season int, playerID string) (*domain.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.pools[poolKey{leagueID: leagueID, season: season}] {
		if p.PlayerID == playerID {
			out := p.Clone()
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

// DeletePool removes a pool and returns the number of deleted players.
func (s *PlayerStore) DeletePool(_ context.Context, leagueID string, season int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := poolKey{leagueID: leagueID, season: season}
	n := len(s.pools[key])
	delete(s.pools, key)
	return n, nil
}

// ReplacePool swaps a pool for players under one lock.
func (s *PlayerStore) ReplacePool(_ context.Context, leagueID string, season int, players []domain.PlayerRecord) (int, error) {
	if leagueID == "" {
		return 0, storage.ErrInvalidInput
	}
	if err := checkBatch(nil, players); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := poolKey{leagueID: leagueID, season: season}
	n := len(s.pools[key])
	if len(players) == 0 {
		delete(s.pools, key)
		return n, nil
	}
	s.pools[key] = domain.ClonePool(players)
	return n, nil
}

// checkBatch rejects empty ids and duplicates against existing or within
// the batch itself.
func checkBatch(existing map[string]struct{}, players []domain.PlayerRecord) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.PlayerID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := existing[p.PlayerID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[p.PlayerID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.PlayerID] = struct{}{}
	}
	return nil
}

var _ storage.PlayerStore = (*PlayerStore)(nil)
