package storage

import (
	"context"

	"fantasy-pricing-lab/internal/domain"
)

// LeagueStore provides access to leagues storage.
type LeagueStore interface {
	// Insert adds a new league configuration. Returns ErrDuplicateKey if league_id exists.
	Insert(ctx context.Context, cfg *domain.LeagueConfig) error

	// GetByID retrieves a league by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, leagueID string) (*domain.LeagueConfig, error)

	// List retrieves all leagues ordered by league_id ASC.
	List(ctx context.Context) ([]*domain.LeagueConfig, error)
}

// PlayerStore provides access to player_pool storage.
// A pool is identified by (league_id, season); entries keep ingestion order.
type PlayerStore interface {
	// InsertBulk appends players to a pool atomically.
	// Fails entire batch on any duplicate (league_id, season, player_id).
	InsertBulk(ctx context.Context, leagueID string, season int, players []domain.PlayerRecord) error

	// GetPool retrieves a pool in ingestion order. Returns an empty slice if none.
	GetPool(ctx context.Context, leagueID string, season int) ([]domain.PlayerRecord, error)

	// GetByID retrieves one player of a pool. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, leagueID string, season int, playerID string) (*domain.PlayerRecord, error)

	// DeletePool removes a pool and returns the number of deleted players.
	DeletePool(ctx context.Context, leagueID string, season int) (int, error)

	// ReplacePool swaps a pool for players in one step and returns the number
	// of players it replaced. On error the previous pool is left untouched.
	ReplacePool(ctx context.Context, leagueID string, season int, players []domain.PlayerRecord) (int, error)
}

// PricingRunStore provides access to pricing_runs storage.
type PricingRunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.PricingRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.PricingRun, error)

	// GetByLeague retrieves all runs for a league, ordered by created_at ASC.
	GetByLeague(ctx context.Context, leagueID string) ([]*domain.PricingRun, error)

	// GetLatest retrieves the newest run for a league season. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, leagueID string, season int) (*domain.PricingRun, error)
}

// SalaryHistoryStore provides access to salary_history storage.
type SalaryHistoryStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, player_id).
	InsertBulk(ctx context.Context, points []domain.SalaryPoint) error

	// GetByRun retrieves all points of a run, ordered by salary DESC, player_id ASC.
	GetByRun(ctx context.Context, runID string) ([]domain.SalaryPoint, error)

	// GetByPlayer retrieves a player's points in a league, ordered by created_at ASC.
	GetByPlayer(ctx context.Context, leagueID, playerID string) ([]domain.SalaryPoint, error)
}
