package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/storage"
)

// SalaryHistoryStore implements storage.SalaryHistoryStore using ClickHouse.
type SalaryHistoryStore struct {
	conn *Conn
}

// NewSalaryHistoryStore creates a new SalaryHistoryStore.
func NewSalaryHistoryStore(conn *Conn) *SalaryHistoryStore {
	return &SalaryHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SalaryHistoryStore = (*SalaryHistoryStore)(nil)

const salaryColumns = `
	run_id, league_id, season, player_id, position,
	salary, impact_score, tier, is_rookie, created_at
`

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, player_id).
// MergeTree does not enforce keys, so duplicates are checked before the batch is sent.
func (s *SalaryHistoryStore) InsertBulk(ctx context.Context, points []domain.SalaryPoint) (err error) {
	start := time.Now()
	defer func() {
		qerr := err
		if errors.Is(qerr, storage.ErrDuplicateKey) || errors.Is(qerr, storage.ErrInvalidInput) {
			qerr = nil
		}
		observability.RecordDBQuery("clickhouse", "insert_salary_history", time.Since(start).Seconds(), qerr)
	}()

	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(points))
	runs := make(map[string]struct{})
	for _, p := range points {
		if p.RunID == "" || p.PlayerID == "" {
			return storage.ErrInvalidInput
		}
		key := p.RunID + "|" + p.PlayerID
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
		runs[p.RunID] = struct{}{}
	}

	// Check for duplicates against existing rows, one query per run
	for runID := range runs {
		existing, err := s.playerIDs(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for playerID := range existing {
			if _, dup := seen[runID+"|"+playerID]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO salary_history (`+salaryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		var rookie uint8
		if p.IsRookie {
			rookie = 1
		}
		err = batch.Append(
			p.RunID, p.LeagueID, int32(p.Season), p.PlayerID, p.Position,
			int32(p.Salary), p.ImpactScore, p.Tier, rookie, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves all points of a run, ordered by salary DESC, player_id ASC.
func (s *SalaryHistoryStore) GetByRun(ctx context.Context, runID string) ([]domain.SalaryPoint, error) {
	query := `
		SELECT ` + salaryColumns + `
		FROM salary_history
		WHERE run_id = ?
		ORDER BY salary DESC, player_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanSalaryPoints(rows)
}

// GetByPlayer retrieves a player's points in a league, ordered by created_at ASC.
func (s *SalaryHistoryStore) GetByPlayer(ctx context.Context, leagueID, playerID string) ([]domain.SalaryPoint, error) {
	query := `
		SELECT ` + salaryColumns + `
		FROM salary_history
		WHERE league_id = ? AND player_id = ?
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.conn.Query(ctx, query, leagueID, playerID)
	if err != nil {
		return nil, fmt.Errorf("query by player: %w", err)
	}
	defer rows.Close()

	return scanSalaryPoints(rows)
}

// playerIDs returns the set of players already stored for a run.
func (s *SalaryHistoryStore) playerIDs(ctx context.Context, runID string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT player_id FROM salary_history WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSalaryPoints scans multiple rows into a slice.
func scanSalaryPoints(rows chRows) ([]domain.SalaryPoint, error) {
	var points []domain.SalaryPoint

	for rows.Next() {
		var (
			p      domain.SalaryPoint
			season int32
			salary int32
			rookie uint8
		)
		err := rows.Scan(
			&p.RunID, &p.LeagueID, &season, &p.PlayerID, &p.Position,
			&salary, &p.ImpactScore, &p.Tier, &rookie, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan salary point row: %w", err)
		}
		p.Season = int(season)
		p.Salary = int(salary)
		p.IsRookie = rookie == 1
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate salary point rows: %w", err)
	}

	return points, nil
}
