// Package valuation prices a player pool against a league budget.
// Flow: relevance → normalization → z-scores → replacement/VAR → scarcity →
// dollars → viability → rookies → summary. Every stage returns new slices;
// the caller's pool is never modified.
package valuation

import (
	"fmt"
	"log"
	"math"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/metrics"
	"fantasy-pricing-lab/internal/normalization"
)

// Options for creating an Engine.
type Options struct {
	Logger     *log.Logger
	Verbose    bool                     // log stage progress
	Thresholds normalization.Thresholds // zero value = defaults
	MaxRookies int                      // 0 = DefaultMaxRookies
}

// Engine runs the pricing stages. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	logger     *log.Logger
	verbose    bool
	normalizer *normalization.Normalizer
	maxRookies int
}

// NewEngine creates a new Engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxRookies := opts.MaxRookies
	if maxRookies <= 0 {
		maxRookies = DefaultMaxRookies
	}
	return &Engine{
		logger:     logger,
		verbose:    opts.Verbose,
		normalizer: normalization.NewNormalizer(opts.Thresholds),
		maxRookies: maxRookies,
	}
}

// Outcome is the full trace of one run: the result plus the intermediate
// figures reports are built from.
type Outcome struct {
	Result            *domain.PricingResult
	Valuations        []domain.Valuation // VAR-priced players, salary order
	ReplacementLevels map[string]float64
	ScarcityFactors   map[string]float64
	Viability         ViabilityReport
	Relevant          int // players kept by the relevance filter
}

// Run prices pool for cfg in season.
func (e *Engine) Run(pool []domain.PlayerRecord, cfg domain.LeagueConfig, season domain.SeasonContext) (*domain.PricingResult, error) {
	out, err := e.Evaluate(pool, cfg, season)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Evaluate prices pool and returns the full trace.
func (e *Engine) Evaluate(pool []domain.PlayerRecord, cfg domain.LeagueConfig, season domain.SeasonContext) (*Outcome, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if season.Year <= 0 {
		return nil, configErr("season.year", "must be positive, got %d", season.Year)
	}
	cfg = cfg.Clone()

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		e.logger.Printf("[valuation] warning: %s", msg)
	}

	// Stage 0: isolate input
	players := dedupe(domain.ClonePool(pool), warn)
	e.log("Stage 0: %d players in pool (season %d)", len(players), season.Year)

	// Stage 1: relevance
	relevant := FilterRelevant(players, cfg)
	e.log("Stage 1: %d relevant players (limit %d)", len(relevant), cfg.PoolLimit())

	// Stage 2: normalization
	entries := e.normalize(relevant, warn)
	e.log("Stage 2: %d role entries normalized", len(entries))

	// Stage 3-4: category statistics and z-scores
	stats := metrics.ComputeCategoryStatistics(entries, cfg)
	for _, s := range stats {
		if s.Count < 2 {
			warn("%s category %s has %d contributing players", s.Role, s.Category, s.Count)
		}
	}
	scored := metrics.ScoreEntries(entries, stats)
	e.log("Stage 3: %d category distributions", len(stats))

	// Stage 5-6: replacement level and VAR
	levels := EstimateReplacementLevels(scored, cfg)
	withVAR := ComputeVAR(scored, levels)
	e.log("Stage 4: replacement levels for %d positions", len(levels))

	// Stage 7: scarcity and dual-role merge
	factors := ScarcityFactors(withVAR, cfg)
	merged := MergeDualRole(ApplyScarcity(withVAR, cfg))
	e.log("Stage 5: %d players after dual-role merge", len(merged))

	// Stage 8-9: dollars and viability
	priced, viability := EnforceViability(ConvertToDollars(merged, cfg), cfg)
	if viability.Rescaled {
		e.log("Stage 6: rescaled salaries by %.4f", viability.RescaleRatio)
	}
	e.log("Stage 6: %d priced, trimmed $%d, %d pushed to floor", len(priced), viability.Trimmed, viability.FloorPushed)

	// Stage 10: rookies
	pricedIDs := make(map[string]bool, len(priced))
	prices := make([]domain.PricedPlayer, 0, len(priced))
	for _, v := range priced {
		pricedIDs[v.Player.PlayerID] = true
		prices = append(prices, toPricedPlayer(v))
	}
	rookies := AssignRookies(players, pricedIDs, cfg, e.maxRookies)
	prices = append(prices, rookies...)
	e.log("Stage 7: %d rookies assigned", len(rookies))

	// Stage 11: summary
	result := &domain.PricingResult{
		Season:     season,
		Prices:     prices,
		Categories: stats,
		Warnings:   warnings,
		Success:    true,
	}
	result.Summary = Summarize(prices, cfg, len(warnings))
	e.log("Completed: %d players, $%d total, %.2f%% of cap",
		result.Summary.TotalPlayers, result.Summary.TotalMoney, result.Summary.CapUsagePercent)

	return &Outcome{
		Result:            result,
		Valuations:        priced,
		ReplacementLevels: levels,
		ScarcityFactors:   factors,
		Viability:         viability,
		Relevant:          len(relevant),
	}, nil
}

// normalize builds one entry per evaluated role. A dual-role player's
// secondary role is dropped when it has no data in any season.
func (e *Engine) normalize(players []domain.PlayerRecord, warn func(string, ...any)) []domain.Valuation {
	entries := make([]domain.Valuation, 0, len(players))
	for _, p := range players {
		for i, role := range p.Roles() {
			res := e.normalizer.Normalize(p, role)
			if res.Method == domain.MethodNoData {
				if i > 0 {
					continue
				}
				warn("player %s has no usable %s stats", p.PlayerID, role)
			}
			saves := res.Stats.Get(domain.StatSaves)
			entries = append(entries, domain.Valuation{
				Player:     p,
				Role:       role,
				Normalized: res.Stats,
				Method:     res.Method,
				IsStarter:  res.IsStarter,
				Position:   NormalizePosition(p.Position, role, res.IsStarter, saves),
			})
		}
	}
	return entries
}

func dedupe(pool []domain.PlayerRecord, warn func(string, ...any)) []domain.PlayerRecord {
	seen := make(map[string]bool, len(pool))
	out := pool[:0]
	for _, p := range pool {
		if p.PlayerID == "" {
			warn("player without id dropped")
			continue
		}
		if seen[p.PlayerID] {
			warn("duplicate player %s dropped", p.PlayerID)
			continue
		}
		seen[p.PlayerID] = true
		out = append(out, p)
	}
	return out
}

func toPricedPlayer(v domain.Valuation) domain.PricedPlayer {
	stats := make(map[string]float64)
	for _, role := range v.Player.Roles() {
		for _, k := range displayKeys(role) {
			stats[k] = finite(v.Normalized.Get(k))
		}
	}
	return domain.PricedPlayer{
		PlayerID:            v.Player.PlayerID,
		PlayerName:          v.Player.Name,
		Position:            v.Position,
		Team:                v.Player.Team,
		Salary:              v.Salary,
		Tier:                v.Tier,
		ImpactScore:         round2(v.FinalVAR),
		NormalizationMethod: v.Method,
		TotalZScore:         math.Round(finite(v.TotalZScore)*1000) / 1000,
		Stats:               stats,
	}
}

func (e *Engine) log(format string, args ...interface{}) {
	if e.verbose {
		e.logger.Printf("[valuation] "+format, args...)
	}
}
