package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

// PricingRunStore implements storage.PricingRunStore using PostgreSQL.
// Runs are append-only; the pricing result is stored as JSONB.
type PricingRunStore struct {
	pool *Pool
}

// NewPricingRunStore creates a new PricingRunStore.
func NewPricingRunStore(pool *Pool) *PricingRunStore {
	return &PricingRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PricingRunStore = (*PricingRunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *PricingRunStore) Insert(ctx context.Context, run *domain.PricingRun) (err error) {
	defer observeQuery("insert_pricing_run", time.Now(), &err)

	if run == nil || run.RunID == "" || run.LeagueID == "" {
		return storage.ErrInvalidInput
	}

	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal pricing result: %w", err)
	}

	query := `
		INSERT INTO pricing_runs (
			run_id, league_id, season, data_version, created_at, result
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err = s.pool.Exec(ctx, query,
		run.RunID, run.LeagueID, run.Season, run.DataVersion, run.CreatedAt, result,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert pricing run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *PricingRunStore) GetByID(ctx context.Context, runID string) (*domain.PricingRun, error) {
	query := `
		SELECT run_id, league_id, season, data_version, created_at, result
		FROM pricing_runs
		WHERE run_id = $1
	`

	run, err := scanPricingRun(s.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pricing run by id: %w", err)
	}
	return run, nil
}

// GetByLeague retrieves all runs for a league, ordered by created_at ASC.
func (s *PricingRunStore) GetByLeague(ctx context.Context, leagueID string) ([]*domain.PricingRun, error) {
	query := `
		SELECT run_id, league_id, season, data_version, created_at, result
		FROM pricing_runs
		WHERE league_id = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get pricing runs by league: %w", err)
	}
	defer rows.Close()

	var runs []*domain.PricingRun
	for rows.Next() {
		run, err := scanPricingRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pricing run row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pricing run rows: %w", err)
	}

	return runs, nil
}

// GetLatest retrieves the newest run for a league season. Returns ErrNotFound if none.
func (s *PricingRunStore) GetLatest(ctx context.Context, leagueID string, season int) (*domain.PricingRun, error) {
	query := `
		SELECT run_id, league_id, season, data_version, created_at, result
		FROM pricing_runs
		WHERE league_id = $1 AND season = $2
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`

	run, err := scanPricingRun(s.pool.QueryRow(ctx, query, leagueID, season))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest pricing run: %w", err)
	}
	return run, nil
}

// scanPricingRun scans a single row into a PricingRun.
func scanPricingRun(row pgx.Row) (*domain.PricingRun, error) {
	var (
		run    domain.PricingRun
		result []byte
	)

	if err := row.Scan(&run.RunID, &run.LeagueID, &run.Season, &run.DataVersion, &run.CreatedAt, &result); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &run.Result); err != nil {
		return nil, fmt.Errorf("decode pricing result: %w", err)
	}

	return &run, nil
}
