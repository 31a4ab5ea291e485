package valuation

import (
	"fantasy-pricing-lab/internal/domain"
)

// Scarcity bounds and position floors.
const (
	scarcityMin     = 0.9
	scarcityMax     = 1.3
	scarcityPremium = 1.05
)

var scarcityFloors = map[string]float64{
	domain.PosCatcher: 1.15,
	domain.PosCloser:  1.2,
}

// ScarcityFactors computes the demand/supply multiplier for every position
// that appears in entries or in the slot table.
func ScarcityFactors(entries []domain.Valuation, cfg domain.LeagueConfig) map[string]float64 {
	available := make(map[string]int)
	for _, e := range entries {
		available[e.Position]++
	}
	for pos := range cfg.PositionSlots {
		if _, ok := available[pos]; !ok {
			available[pos] = 0
		}
	}

	factors := make(map[string]float64, len(available))
	for pos, n := range available {
		supply := n
		if supply < 1 {
			supply = 1
		}
		demand := float64(cfg.Slots(pos) * cfg.NumTeams)
		f := clamp(finite(demand/float64(supply)*scarcityPremium), scarcityMin, scarcityMax)
		if floor, ok := scarcityFloors[pos]; ok && f < floor {
			f = floor
		}
		factors[pos] = f
	}
	return factors
}

// ApplyScarcity returns copies of entries with ScarcityFactor and FinalVAR set.
func ApplyScarcity(entries []domain.Valuation, cfg domain.LeagueConfig) []domain.Valuation {
	factors := ScarcityFactors(entries, cfg)
	out := make([]domain.Valuation, len(entries))
	for i, e := range entries {
		e.ScarcityFactor = factors[e.Position]
		e.FinalVAR = finite(e.AdjustedVAR * e.ScarcityFactor)
		out[i] = e
	}
	return out
}

// MergeDualRole collapses the hitter and pitcher entries of a dual-role
// player into one, summing VAR figures. The merged position lists the hitter
// position first. Output keeps the order of each player's first entry.
func MergeDualRole(entries []domain.Valuation) []domain.Valuation {
	index := make(map[string]int, len(entries))
	out := make([]domain.Valuation, 0, len(entries))

	for _, e := range entries {
		i, seen := index[e.Player.PlayerID]
		if !seen {
			e.MergedPositions = []string{e.Position}
			index[e.Player.PlayerID] = len(out)
			out = append(out, e)
			continue
		}

		m := out[i]
		hit, pitch := m, e
		if m.Role == domain.RolePitcher {
			hit, pitch = e, m
		}

		merged := m
		merged.Position = hit.Position + "/" + pitch.Position
		merged.MergedPositions = []string{hit.Position, pitch.Position}
		merged.TotalZScore = m.TotalZScore + e.TotalZScore
		merged.VAR = m.VAR + e.VAR
		merged.AdjustedVAR = m.AdjustedVAR + e.AdjustedVAR
		merged.FinalVAR = m.FinalVAR + e.FinalVAR
		merged.IsStarter = pitch.IsStarter

		stats := hit.Normalized.Clone()
		for k, v := range pitch.Normalized {
			if _, ok := stats[k]; !ok {
				stats[k] = v
			}
		}
		merged.Normalized = stats

		zs := make(map[string]float64, len(m.ZScores)+len(e.ZScores))
		for k, v := range hit.ZScores {
			zs[k] = v
		}
		for k, v := range pitch.ZScores {
			zs[k] = v
		}
		merged.ZScores = zs
		if len(zs) > 0 {
			merged.AvgZScore = merged.TotalZScore / float64(len(zs))
		}

		out[i] = merged
	}
	return out
}
