package valuation

import (
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/fixtures"
)

var season2026 = domain.SeasonContext{Year: 2026}

func newTestEngine() *Engine {
	return NewEngine(Options{Logger: log.New(io.Discard, "", 0)})
}

func scenarioPool() []domain.PlayerRecord {
	opts := fixtures.DefaultSyntheticOptions()
	opts.Rookies = 0
	return fixtures.SyntheticPool(opts)
}

func scenarioLeague() domain.LeagueConfig {
	cfg := fixtures.StandardLeague()
	cfg.MaxPlayerPercentOfCap = 0.5
	return cfg
}

func TestEngine_BudgetScenario(t *testing.T) {
	cfg := scenarioLeague()
	out, err := newTestEngine().Evaluate(scenarioPool(), cfg, season2026)
	require.NoError(t, err)

	target := float64(cfg.NumTeams*cfg.DraftCap) * cfg.DraftCapUsageTarget // 2340
	total := out.Result.Summary.TotalMoney

	assert.LessOrEqual(t, float64(total), target)
	assert.InDelta(t, target, float64(total), target*0.05)
	assert.True(t, out.Result.Success)
	assert.Equal(t, cfg.PoolLimit(), out.Relevant)
}

func TestEngine_SalaryBounds(t *testing.T) {
	for _, cfg := range []domain.LeagueConfig{fixtures.StandardLeague(), incrementLeague()} {
		result, err := newTestEngine().Run(fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions()), cfg, season2026)
		require.NoError(t, err)

		ceiling := cfg.MaxPlayerPercentOfCap * float64(cfg.DraftCap)
		for _, p := range result.Prices {
			if p.IsRookie {
				assert.Equal(t, cfg.RookiePrice, p.Salary)
				continue
			}
			assert.GreaterOrEqual(t, p.Salary, cfg.MinSalary, p.PlayerID)
			assert.LessOrEqual(t, float64(p.Salary), ceiling, p.PlayerID)
			assert.Zero(t, p.Salary%cfg.SalaryIncrement, "%s salary %d", p.PlayerID, p.Salary)
		}
	}
}

// incrementLeague uses $5 steps in a dual-cap league.
func incrementLeague() domain.LeagueConfig {
	cfg := fixtures.StandardLeague()
	cfg.LeagueID = "dual-10"
	cfg.NumTeams = 10
	cfg.CapMode = domain.CapModeDual
	cfg.DraftCap = 1000
	cfg.SeasonCap = 200
	cfg.TotalCap = 1200
	cfg.MinSalary = 5
	cfg.SalaryIncrement = 5
	cfg.RookiePrice = 5
	cfg.MaxPlayerPercentOfCap = 0.3
	return cfg
}

func TestEngine_BudgetCeilingAndFloorQuota(t *testing.T) {
	for _, cfg := range []domain.LeagueConfig{fixtures.StandardLeague(), scenarioLeague(), incrementLeague()} {
		out, err := newTestEngine().Evaluate(fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions()), cfg, season2026)
		require.NoError(t, err)

		total, atFloor := 0, 0
		for _, v := range out.Valuations {
			total += v.Salary
			if v.Salary == cfg.MinSalary {
				atFloor++
			}
		}

		avgTeam := float64(total) / float64(cfg.NumTeams)
		assert.LessOrEqual(t, avgTeam, float64(cfg.DraftCap)*cfg.DraftCapUsageTarget*1.001, cfg.LeagueID)

		quota := cfg.MinValuePlayersPercent * float64(len(out.Valuations))
		assert.GreaterOrEqual(t, float64(atFloor), quota, cfg.LeagueID)
	}
}

func TestEngine_Determinism(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	cfg := fixtures.StandardLeague()
	engine := newTestEngine()

	first, err := engine.Run(pool, cfg, season2026)
	require.NoError(t, err)
	second, err := engine.Run(pool, cfg, season2026)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_DoesNotMutateInput(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	snapshot := domain.ClonePool(pool)

	_, err := newTestEngine().Run(pool, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	assert.Equal(t, snapshot, pool)
}

func TestEngine_NoNaNOrInf(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	pool[5].Current[domain.StatAverage] = math.NaN()
	pool[6].Current[domain.StatHomeRuns] = math.Inf(1)

	out, err := newTestEngine().Evaluate(pool, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	for _, p := range out.Result.Prices {
		assert.False(t, math.IsNaN(p.ImpactScore) || math.IsInf(p.ImpactScore, 0), p.PlayerID)
		assert.False(t, math.IsNaN(p.TotalZScore) || math.IsInf(p.TotalZScore, 0), p.PlayerID)
		for k, v := range p.Stats {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s %s", p.PlayerID, k)
		}
	}
	for _, c := range out.Result.Categories {
		assert.NotZero(t, c.StdDev)
		assert.False(t, math.IsNaN(c.Mean), c.Category)
	}
}

func TestEngine_Fairness(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	twin := pool[20].Clone()
	twin.PlayerID = "twin"
	twin.Name = "Twin"
	pool = append(pool, twin)

	out, err := newTestEngine().Evaluate(pool, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	byID := make(map[string]domain.Valuation)
	for _, v := range out.Valuations {
		byID[v.Player.PlayerID] = v
	}
	orig, ok := byID[pool[20].PlayerID]
	require.True(t, ok)
	copyV, ok := byID["twin"]
	require.True(t, ok)

	assert.Equal(t, orig.TotalZScore, copyV.TotalZScore)
	assert.Equal(t, orig.VAR, copyV.VAR)
	assert.Equal(t, orig.FinalVAR, copyV.FinalVAR)
	assert.Equal(t, orig.Salary, copyV.Salary)
}

func TestEngine_RookieScenario(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	cfg := fixtures.StandardLeague()
	cfg.RookiePrice = 3

	result, err := newTestEngine().Run(pool, cfg, season2026)
	require.NoError(t, err)

	count := 0
	for _, p := range result.Prices {
		if p.PlayerID != "rk0001" {
			continue
		}
		count++
		assert.True(t, p.IsRookie)
		assert.Equal(t, 3, p.Salary)
		assert.Equal(t, domain.TierRookie, p.Tier)
		assert.Equal(t, domain.MethodRookie, p.NormalizationMethod)
		assert.NotEmpty(t, p.Stats)
		for k, v := range p.Stats {
			assert.Zero(t, v, k)
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 10, result.Summary.RookieCount)
}

func TestEngine_DualRoleMerged(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	require.True(t, pool[0].EligibleForDualEvaluation)

	out, err := newTestEngine().Evaluate(pool, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	seen := 0
	for _, v := range out.Valuations {
		if v.Player.PlayerID == pool[0].PlayerID {
			seen++
			assert.Len(t, v.MergedPositions, 2)
			assert.Equal(t, v.MergedPositions[0]+"/"+v.MergedPositions[1], v.Position)
		}
	}
	assert.Equal(t, 1, seen)
}

func TestEngine_ConfigurationErrors(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())

	tests := []struct {
		name   string
		mutate func(*domain.LeagueConfig)
		field  string
	}{
		{"zero teams", func(c *domain.LeagueConfig) { c.NumTeams = 0 }, "num_teams"},
		{"no categories", func(c *domain.LeagueConfig) { c.HittingCategories, c.PitchingCategories = nil, nil }, "categories"},
		{"non-positive cap", func(c *domain.LeagueConfig) { c.DraftCap = 0 }, "draft_cap"},
		{"bad cap mode", func(c *domain.LeagueConfig) { c.CapMode = "triple" }, "cap_mode"},
		{"dual total mismatch", func(c *domain.LeagueConfig) { c.CapMode = domain.CapModeDual; c.SeasonCap = 50 }, "total_cap"},
		{"usage above one", func(c *domain.LeagueConfig) { c.DraftCapUsageTarget = 1.2 }, "draft_cap_usage_target"},
		{"min not multiple", func(c *domain.LeagueConfig) { c.SalaryIncrement = 2; c.MinSalary = 3 }, "min_salary"},
		{"ceiling below floor", func(c *domain.LeagueConfig) { c.MaxPlayerPercentOfCap = 0.001 }, "max_player_percent_of_cap"},
		{"unknown position", func(c *domain.LeagueConfig) { c.PositionSlots["XX"] = 1 }, "position_slots"},
		{"bands not summing", func(c *domain.LeagueConfig) {
			c.TierBands = []domain.TierBand{{Name: "a", FromRank: 1, ToRank: 5, PoolShare: 0.5}, {Name: "b", FromRank: 6, PoolShare: 0.2}}
		}, "tier_bands"},
		{"band gap", func(c *domain.LeagueConfig) {
			c.TierBands = []domain.TierBand{{Name: "a", FromRank: 1, ToRank: 5, PoolShare: 0.5}, {Name: "b", FromRank: 8, PoolShare: 0.5}}
		}, "tier_bands[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fixtures.StandardLeague()
			tt.mutate(&cfg)

			result, err := newTestEngine().Run(pool, cfg, season2026)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestEngine_RejectsMissingSeason(t *testing.T) {
	_, err := newTestEngine().Run(nil, fixtures.StandardLeague(), domain.SeasonContext{})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestEngine_EmptyPool(t *testing.T) {
	result, err := newTestEngine().Run(nil, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Prices)
	assert.Zero(t, result.Summary.TotalMoney)
	assert.Zero(t, result.Summary.AverageSalary)
}

func TestEngine_DuplicatePlayersWarned(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	pool = append(pool, pool[3].Clone())

	result, err := newTestEngine().Run(pool, fixtures.StandardLeague(), season2026)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, p := range result.Prices {
		seen[p.PlayerID]++
	}
	assert.Equal(t, 1, seen[pool[3].PlayerID])
	assert.NotEmpty(t, result.Warnings)
	assert.Equal(t, len(result.Warnings), result.Summary.WarningCount)
}
