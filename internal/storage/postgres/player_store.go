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

// PlayerStore implements storage.PlayerStore using PostgreSQL.
type PlayerStore struct {
	pool *Pool
}

// NewPlayerStore creates a new PlayerStore.
func NewPlayerStore(pool *Pool) *PlayerStore {
	return &PlayerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PlayerStore = (*PlayerStore)(nil)

// InsertBulk appends players to a pool atomically. Fails entire batch on any duplicate.
func (s *PlayerStore) InsertBulk(ctx context.Context, leagueID string, season int, players []domain.PlayerRecord) (err error) {
	defer observeQuery("insert_player_pool", time.Now(), &err)

	if leagueID == "" {
		return storage.ErrInvalidInput
	}
	if len(players) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Continue ordinals after the existing pool so ingestion order survives appends
	var next int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(ordinal) + 1, 0) FROM player_pool
		WHERE league_id = $1 AND season = $2
	`, leagueID, season).Scan(&next)
	if err != nil {
		return fmt.Errorf("read pool ordinal: %w", err)
	}

	if err := insertPlayers(ctx, tx, leagueID, season, next, players); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ReplacePool deletes and reinserts a pool inside one transaction, so
// readers see either the old pool or the new one.
func (s *PlayerStore) ReplacePool(ctx context.Context, leagueID string, season int, players []domain.PlayerRecord) (_ int, err error) {
	defer observeQuery("replace_player_pool", time.Now(), &err)

	if leagueID == "" {
		return 0, storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM player_pool WHERE league_id = $1 AND season = $2`, leagueID, season)
	if err != nil {
		return 0, fmt.Errorf("clear player pool: %w", err)
	}
	if err := insertPlayers(ctx, tx, leagueID, season, 0, players); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

const insertPlayerQuery = `
	INSERT INTO player_pool (
		league_id, season, player_id, ordinal,
		name, position, team, is_pitcher, dual_eligible,
		stats_current, stats_prior, stats_two_years_ago
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11, $12
	)
`

// insertPlayers writes players with ordinals starting at first.
func insertPlayers(ctx context.Context, tx pgx.Tx, leagueID string, season, first int, players []domain.PlayerRecord) error {
	for i, p := range players {
		if p.PlayerID == "" {
			return storage.ErrInvalidInput
		}
		current, prior, twoYears, err := marshalStatLines(p)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, insertPlayerQuery,
			leagueID, season, p.PlayerID, first+i,
			p.Name, p.Position, p.Team, p.IsPitcher, p.EligibleForDualEvaluation,
			current, prior, twoYears,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
	}
	return nil
}

// GetPool retrieves a pool in ingestion order. Returns an empty slice if none.
func (s *PlayerStore) GetPool(ctx context.Context, leagueID string, season int) (_ []domain.PlayerRecord, err error) {
	defer observeQuery("get_player_pool", time.Now(), &err)

	query := `
		SELECT
			player_id, name, position, team, is_pitcher, dual_eligible,
			stats_current, stats_prior, stats_two_years_ago
		FROM player_pool
		WHERE league_id = $1 AND season = $2
		ORDER BY ordinal ASC
	`

	rows, err := s.pool.Query(ctx, query, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("get player pool: %w", err)
	}
	defer rows.Close()

	players := []domain.PlayerRecord{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		players = append(players, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player rows: %w", err)
	}

	return players, nil
}

// GetByID retrieves one player of a pool. Returns ErrNotFound if not exists.
func (s *PlayerStore) GetByID(ctx context.Context, leagueID string, season int, playerID string) (*domain.PlayerRecord, error) {
	query := `
		SELECT
			player_id, name, position, team, is_pitcher, dual_eligible,
			stats_current, stats_prior, stats_two_years_ago
		FROM player_pool
		WHERE league_id = $1 AND season = $2 AND player_id = $3
	`

	p, err := scanPlayer(s.pool.QueryRow(ctx, query, leagueID, season, playerID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get player by id: %w", err)
	}
	return p, nil
}

// DeletePool removes a pool and returns the number of deleted players.
func (s *PlayerStore) DeletePool(ctx context.Context, leagueID string, season int) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM player_pool WHERE league_id = $1 AND season = $2`, leagueID, season)
	if err != nil {
		return 0, fmt.Errorf("delete player pool: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func marshalStatLines(p domain.PlayerRecord) (current, prior, twoYears []byte, err error) {
	lines := []domain.StatLine{p.Current, p.Prior, p.TwoYearsAgo}
	out := make([][]byte, len(lines))
	for i, line := range lines {
		if line == nil {
			line = domain.StatLine{}
		}
		if out[i], err = json.Marshal(line); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal stats of %s: %w", p.PlayerID, err)
		}
	}
	return out[0], out[1], out[2], nil
}

// scanPlayer scans a single row into a PlayerRecord.
func scanPlayer(row pgx.Row) (*domain.PlayerRecord, error) {
	var (
		p                        domain.PlayerRecord
		current, prior, twoYears []byte
	)

	err := row.Scan(
		&p.PlayerID, &p.Name, &p.Position, &p.Team, &p.IsPitcher, &p.EligibleForDualEvaluation,
		&current, &prior, &twoYears,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		data []byte
		dst  *domain.StatLine
	}{
		{current, &p.Current},
		{prior, &p.Prior},
		{twoYears, &p.TwoYearsAgo},
	} {
		*f.dst = domain.StatLine{}
		if err := json.Unmarshal(f.data, f.dst); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}

	return &p, nil
}
