package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

// LeagueStore implements storage.LeagueStore using PostgreSQL.
// The configuration is stored whole as JSONB.
type LeagueStore struct {
	pool *Pool
}

// NewLeagueStore creates a new LeagueStore.
func NewLeagueStore(pool *Pool) *LeagueStore {
	return &LeagueStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LeagueStore = (*LeagueStore)(nil)

// Insert adds a new league configuration. Returns ErrDuplicateKey if league_id exists.
func (s *LeagueStore) Insert(ctx context.Context, cfg *domain.LeagueConfig) error {
	if cfg == nil || cfg.LeagueID == "" {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal league config: %w", err)
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO leagues (league_id, config) VALUES ($1, $2)`, cfg.LeagueID, data)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

// GetByID retrieves a league by its ID. Returns ErrNotFound if not exists.
func (s *LeagueStore) GetByID(ctx context.Context, leagueID string) (*domain.LeagueConfig, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT config FROM leagues WHERE league_id = $1`, leagueID).Scan(&data)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get league by id: %w", err)
	}
	return decodeLeague(data)
}

// List retrieves all leagues ordered by league_id ASC.
func (s *LeagueStore) List(ctx context.Context) ([]*domain.LeagueConfig, error) {
	rows, err := s.pool.Query(ctx, `SELECT config FROM leagues ORDER BY league_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []*domain.LeagueConfig
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan league row: %w", err)
		}
		cfg, err := decodeLeague(data)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate league rows: %w", err)
	}

	return leagues, nil
}

func decodeLeague(data []byte) (*domain.LeagueConfig, error) {
	var cfg domain.LeagueConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode league config: %w", err)
	}
	return &cfg, nil
}
