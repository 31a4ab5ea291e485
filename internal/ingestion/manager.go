package ingestion

import (
	"context"
	"fmt"
	"log"

	"fantasy-pricing-lab/internal/storage"
)

// Manager orchestrates ingestion from a feed source to the player store.
// Feed order is preserved; duplicate rejection is left to the storage layer.
type Manager struct {
	source  PlayerSource
	adapter *Adapter
	store   storage.PlayerStore
	leagues storage.LeagueStore
	logger  *log.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source  PlayerSource
	Adapter *Adapter // nil = NewAdapter with Logger
	Store   storage.PlayerStore
	Leagues storage.LeagueStore // optional; enables missing-category warnings
	Logger  *log.Logger
}

// NewManager creates a new ingestion manager with the provided source and store.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	adapter := opts.Adapter
	if adapter == nil {
		adapter = NewAdapter(AdapterOptions{Logger: logger})
	}
	return &Manager{
		source:  opts.Source,
		adapter: adapter,
		store:   opts.Store,
		leagues: opts.Leagues,
		logger:  logger,
	}
}

// IngestResult contains statistics from one pool ingestion.
type IngestResult struct {
	Fetched  int
	Stored   int
	Skipped  int
	Replaced int // players removed from a previous snapshot
	Warnings []string
}

// IngestPool fetches the feed for a league season, adapts it and stores it.
// With replace set, an existing snapshot is swapped out atomically; otherwise
// a second ingestion of the same players fails with storage.ErrDuplicateKey.
func (m *Manager) IngestPool(ctx context.Context, leagueID string, season int, replace bool) (*IngestResult, error) {
	if m.source == nil || m.store == nil {
		return nil, fmt.Errorf("ingest pool: source and store are required")
	}

	raw, err := m.source.Fetch(ctx, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("fetch pool %s/%d: %w", leagueID, season, err)
	}

	adapter := m.adapter
	if m.leagues != nil {
		cfg, err := m.leagues.GetByID(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("load league %s: %w", leagueID, err)
		}
		adapter = adapter.WithScoring(*cfg)
	}
	adapted := adapter.Adapt(raw)
	result := &IngestResult{
		Fetched:  len(raw),
		Skipped:  adapted.Skipped,
		Warnings: adapted.Warnings,
	}

	if replace {
		n, err := m.store.ReplacePool(ctx, leagueID, season, adapted.Players)
		if err != nil {
			return nil, fmt.Errorf("replace pool %s/%d: %w", leagueID, season, err)
		}
		result.Replaced = n
	} else if err := m.store.InsertBulk(ctx, leagueID, season, adapted.Players); err != nil {
		return nil, fmt.Errorf("store pool %s/%d: %w", leagueID, season, err)
	}
	result.Stored = len(adapted.Players)

	m.logger.Printf("[ingestion] league=%s season=%d fetched=%d stored=%d skipped=%d warnings=%d",
		leagueID, season, result.Fetched, result.Stored, result.Skipped, len(result.Warnings))

	return result, nil
}
