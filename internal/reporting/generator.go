package reporting

import (
	"math"
	"sort"
	"strings"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/metrics"
	"fantasy-pricing-lab/internal/valuation"
)

// GeneratorVersion is stamped into every report for reproducibility.
const GeneratorVersion = "1.0.0"

// DefaultTopPlayers is how many of the most expensive players a report lists.
const DefaultTopPlayers = 25

// Generator produces reports from pricing results.
type Generator struct {
	topN int
	now  func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		topN: DefaultTopPlayers,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopPlayers sets how many players the top table lists.
func (g *Generator) WithTopPlayers(n int) *Generator {
	g.topN = n
	return g
}

// Diagnostics carries engine figures that are not part of a stored result.
// A report built from a persisted run has none.
type Diagnostics struct {
	ReplacementLevels map[string]float64
	ScarcityFactors   map[string]float64
	Viability         valuation.ViabilityReport
	Relevant          int
}

// DiagnosticsFromOutcome extracts report diagnostics from an engine trace.
func DiagnosticsFromOutcome(out *valuation.Outcome) *Diagnostics {
	if out == nil {
		return nil
	}
	return &Diagnostics{
		ReplacementLevels: out.ReplacementLevels,
		ScarcityFactors:   out.ScarcityFactors,
		Viability:         out.Viability,
		Relevant:          out.Relevant,
	}
}

// Generate builds a report for result priced under cfg. diag may be nil.
func (g *Generator) Generate(result *domain.PricingResult, cfg domain.LeagueConfig, diag *Diagnostics) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		LeagueID:    cfg.LeagueID,
		Season:      result.Season,
		League:      leagueSummary(cfg),
		Summary:     result.Summary,
		Percentiles: salaryPercentiles(result.Prices),
		Positions:   positionRows(result.Prices, cfg, diag),
		Tiers:       tierRows(result.Prices, cfg),
		Categories:  result.Categories,
		TopPlayers:  topPlayers(result.Prices, g.topN),
		Warnings:    result.Warnings,
	}
	if diag != nil {
		report.League.RelevantPlayers = diag.Relevant
		report.Viability = ViabilityRow{
			Rescaled:     diag.Viability.Rescaled,
			RescaleRatio: diag.Viability.RescaleRatio,
			Trimmed:      diag.Viability.Trimmed,
			FloorPushed:  diag.Viability.FloorPushed,
			FloorQuota:   diag.Viability.FloorQuota,
		}
	}
	return report
}

func leagueSummary(cfg domain.LeagueConfig) LeagueSummary {
	return LeagueSummary{
		NumTeams:      cfg.NumTeams,
		RosterSize:    cfg.RosterSize,
		CapMode:       cfg.CapMode,
		DraftCap:      cfg.DraftCap,
		TotalCap:      cfg.TotalCap,
		MinSalary:     cfg.MinSalary,
		MaxSalary:     cfg.MaxSalary(),
		UsageTarget:   cfg.DraftCapUsageTarget,
		BudgetCeiling: int(math.Floor(float64(cfg.NumTeams*cfg.DraftCap) * cfg.DraftCapUsageTarget)),
	}
}

// salaryPercentiles covers VAR-priced players only; rookies sit at a flat price.
func salaryPercentiles(prices []domain.PricedPlayer) SalaryPercentiles {
	var salaries []float64
	for _, p := range prices {
		if !p.IsRookie {
			salaries = append(salaries, float64(p.Salary))
		}
	}
	if len(salaries) == 0 {
		return SalaryPercentiles{}
	}
	sorted := metrics.SortedCopy(salaries)
	return SalaryPercentiles{
		P10: metrics.Percentile(sorted, 0.10),
		P25: metrics.Percentile(sorted, 0.25),
		P50: metrics.Percentile(sorted, 0.50),
		P75: metrics.Percentile(sorted, 0.75),
		P90: metrics.Percentile(sorted, 0.90),
	}
}

// primaryPosition returns the first position of a merged "C/SP" label.
func primaryPosition(pos string) string {
	first, _, _ := strings.Cut(pos, "/")
	return first
}

func positionRows(prices []domain.PricedPlayer, cfg domain.LeagueConfig, diag *Diagnostics) []PositionRow {
	rows := make(map[string]*PositionRow)
	row := func(pos string) *PositionRow {
		r, ok := rows[pos]
		if !ok {
			r = &PositionRow{
				Position: pos,
				Slots:    cfg.Slots(pos),
				Demand:   cfg.Slots(pos) * cfg.NumTeams,
			}
			if diag != nil {
				r.ReplacementLevel = diag.ReplacementLevels[pos]
				r.ScarcityFactor = diag.ScarcityFactors[pos]
			}
			rows[pos] = r
		}
		return r
	}

	for pos := range cfg.PositionSlots {
		row(pos)
	}

	money := make(map[string]int)
	for _, p := range prices {
		if p.IsRookie {
			continue
		}
		r := row(primaryPosition(p.Position))
		r.Priced++
		money[r.Position] += p.Salary
		if p.Salary > r.MaxSalary {
			r.MaxSalary = p.Salary
		}
	}

	out := make([]PositionRow, 0, len(rows))
	for pos, r := range rows {
		if r.Priced > 0 {
			r.AvgSalary = math.Round(float64(money[pos])/float64(r.Priced)*100) / 100
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

func tierRows(prices []domain.PricedPlayer, cfg domain.LeagueConfig) []TierRow {
	var order []string
	for _, b := range cfg.Bands() {
		order = append(order, b.Name)
	}
	order = append(order, domain.TierRookie)

	rows := make(map[string]*TierRow, len(order))
	for _, name := range order {
		rows[name] = &TierRow{Tier: name}
	}

	for _, p := range prices {
		r, ok := rows[p.Tier]
		if !ok {
			r = &TierRow{Tier: p.Tier}
			rows[p.Tier] = r
			order = append(order, p.Tier)
		}
		if r.Players == 0 || p.Salary < r.MinSalary {
			r.MinSalary = p.Salary
		}
		if p.Salary > r.MaxSalary {
			r.MaxSalary = p.Salary
		}
		r.Players++
		r.Money += p.Salary
	}

	out := make([]TierRow, 0, len(order))
	for _, name := range order {
		if rows[name].Players > 0 {
			out = append(out, *rows[name])
		}
	}
	return out
}

// topPlayers returns the n highest salaries, ties broken by impact then id.
func topPlayers(prices []domain.PricedPlayer, n int) []domain.PricedPlayer {
	sorted := make([]domain.PricedPlayer, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Salary != sorted[j].Salary {
			return sorted[i].Salary > sorted[j].Salary
		}
		if sorted[i].ImpactScore != sorted[j].ImpactScore {
			return sorted[i].ImpactScore > sorted[j].ImpactScore
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
