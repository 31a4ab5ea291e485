package valuation

import (
	"sort"

	"fantasy-pricing-lab/internal/domain"
)

// sortByTotalZ orders entries by total z-score DESC then player id ASC.
func sortByTotalZ(entries []domain.Valuation) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalZScore != entries[j].TotalZScore {
			return entries[i].TotalZScore > entries[j].TotalZScore
		}
		return entries[i].Player.PlayerID < entries[j].Player.PlayerID
	})
}

// EstimateReplacementLevels returns the replacement total z-score per
// normalized position: the entry at index min(slots*teams, n-1) of the
// position group sorted by total z-score. Configured positions with no
// entries get 0.
func EstimateReplacementLevels(entries []domain.Valuation, cfg domain.LeagueConfig) map[string]float64 {
	groups := make(map[string][]domain.Valuation)
	for _, e := range entries {
		groups[e.Position] = append(groups[e.Position], e)
	}

	levels := make(map[string]float64, len(groups)+len(cfg.PositionSlots))
	for pos := range cfg.PositionSlots {
		levels[pos] = 0
	}

	for pos, group := range groups {
		sortByTotalZ(group)
		idx := cfg.Slots(pos) * cfg.NumTeams
		if idx > len(group)-1 {
			idx = len(group) - 1
		}
		levels[pos] = group[idx].TotalZScore
	}
	return levels
}

// eliteVARThreshold and eliteVARBoost form the convexity boost for elite VAR.
const (
	eliteVARThreshold = 2.0
	eliteVARBoost     = 1.1
)

// ComputeVAR returns copies of entries with VAR and AdjustedVAR set.
func ComputeVAR(entries []domain.Valuation, levels map[string]float64) []domain.Valuation {
	out := make([]domain.Valuation, len(entries))
	for i, e := range entries {
		e.ReplacementLvl = levels[e.Position]
		e.VAR = finite(e.TotalZScore - e.ReplacementLvl)
		if e.VAR < 0 {
			e.VAR = 0
		}
		e.AdjustedVAR = e.VAR
		if e.VAR > eliteVARThreshold {
			e.AdjustedVAR = e.VAR * eliteVARBoost
		}
		out[i] = e
	}
	return out
}
