package pipeline

import (
	"context"
	"fmt"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/fixtures"
	"fantasy-pricing-lab/internal/storage"
)

// FixtureLeagueID is the league id fixture data is stored under.
const FixtureLeagueID = "fixture-league"

// FixtureSeason is the season fixture data is stored under.
var FixtureSeason = domain.SeasonContext{Year: 2025, Label: "fixtures"}

// LoadFixtures populates stores with the standard league and the synthetic
// player pool for demonstration. Returns the stored league.
func LoadFixtures(
	ctx context.Context,
	leagueStore storage.LeagueStore,
	playerStore storage.PlayerStore,
) (*domain.LeagueConfig, error) {
	cfg := fixtures.StandardLeague()
	cfg.LeagueID = FixtureLeagueID

	if err := leagueStore.Insert(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load fixture league: %w", err)
	}

	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	if err := playerStore.InsertBulk(ctx, cfg.LeagueID, FixtureSeason.Year, pool); err != nil {
		return nil, fmt.Errorf("load fixture pool: %w", err)
	}

	return &cfg, nil
}
