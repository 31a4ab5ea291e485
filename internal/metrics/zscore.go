package metrics

import (
	"math"

	"fantasy-pricing-lab/internal/domain"
)

// ZClamp bounds every per-category z-score.
const ZClamp = 3.0

// ComputeCategoryStatistics builds one distribution per (role, category).
// Only entries of the matching role with a non-zero, finite normalized value
// contribute. Output follows the configured category order, hitters first.
func ComputeCategoryStatistics(entries []domain.Valuation, cfg domain.LeagueConfig) []domain.CategoryStatistic {
	var out []domain.CategoryStatistic
	for _, role := range []domain.Role{domain.RoleHitter, domain.RolePitcher} {
		for _, cat := range cfg.Categories(role) {
			out = append(out, categoryStatistic(entries, role, cat))
		}
	}
	return out
}

func categoryStatistic(entries []domain.Valuation, role domain.Role, cat string) domain.CategoryStatistic {
	stat := domain.CategoryStatistic{Role: role, Category: cat}

	var values []float64
	for _, e := range entries {
		if e.Role != role {
			continue
		}
		if v := e.Normalized.Get(cat); usable(v) {
			values = append(values, v)
		}
	}

	stat.Count = len(values)
	if stat.Count == 0 {
		stat.StdDev = 1
		return stat
	}

	stat.Mean = Mean(values)
	stat.StdDev = PopulationStdDev(values, stat.Mean)
	if stat.StdDev == 0 || math.IsNaN(stat.StdDev) {
		stat.StdDev = 1
	}
	stat.Min, stat.Max = values[0], values[0]
	for _, v := range values[1:] {
		stat.Min = math.Min(stat.Min, v)
		stat.Max = math.Max(stat.Max, v)
	}
	return stat
}

// ZScore converts one value against a distribution, sign-corrected and clamped.
func ZScore(v float64, stat domain.CategoryStatistic) float64 {
	sd := stat.StdDev
	if sd == 0 || math.IsNaN(sd) {
		sd = 1
	}
	z := (v - stat.Mean) / sd
	if domain.IsLowerBetter(stat.Category) {
		z = -z
	}
	if math.IsNaN(z) {
		return 0
	}
	return math.Max(-ZClamp, math.Min(ZClamp, z))
}

// ScoreEntries returns copies of entries with per-category, total and
// average z-scores filled in. Zeros are left out of the distributions but
// still scored against them; a missing stat counts as 0. A category is
// skipped only when it has no distribution or the value is not finite.
func ScoreEntries(entries []domain.Valuation, stats []domain.CategoryStatistic) []domain.Valuation {
	byRole := make(map[domain.Role][]domain.CategoryStatistic)
	for _, s := range stats {
		byRole[s.Role] = append(byRole[s.Role], s)
	}

	out := make([]domain.Valuation, len(entries))
	for i, e := range entries {
		e.ZScores = make(map[string]float64)
		e.TotalZScore, e.AvgZScore = 0, 0

		for _, s := range byRole[e.Role] {
			v := e.Normalized.Get(s.Category)
			if s.Count == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			z := ZScore(v, s)
			e.ZScores[s.Category] = z
			e.TotalZScore += z
		}
		if n := len(e.ZScores); n > 0 {
			e.AvgZScore = e.TotalZScore / float64(n)
		}
		out[i] = e
	}
	return out
}
