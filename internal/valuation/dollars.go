package valuation

import (
	"math"
	"sort"

	"fantasy-pricing-lab/internal/domain"
)

// maxSalary is the per-player ceiling snapped down to the salary increment.
func maxSalary(cfg domain.LeagueConfig) int {
	ceiling := cfg.MaxSalary()
	if cfg.SalaryIncrement > 0 {
		ceiling -= ceiling % cfg.SalaryIncrement
	}
	return ceiling
}

// boundSalary caps, rounds and floors a raw dollar amount.
func boundSalary(raw float64, cfg domain.LeagueConfig) int {
	raw = math.Min(finite(raw), float64(cfg.MaxSalary()))
	s := roundToIncrement(raw, cfg.SalaryIncrement)
	if ceiling := maxSalary(cfg); s > ceiling {
		s = ceiling
	}
	if s < cfg.MinSalary {
		s = cfg.MinSalary
	}
	return s
}

// sortByFinalVAR orders entries by final VAR DESC then player id ASC.
func sortByFinalVAR(entries []domain.Valuation) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FinalVAR != entries[j].FinalVAR {
			return entries[i].FinalVAR > entries[j].FinalVAR
		}
		return entries[i].Player.PlayerID < entries[j].Player.PlayerID
	})
}

// tieGroups returns [start, end) ranges of equal final VAR in a sorted slice.
func tieGroups(entries []domain.Valuation) [][2]int {
	var groups [][2]int
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].FinalVAR == entries[start].FinalVAR {
			end++
		}
		groups = append(groups, [2]int{start, end})
		start = end
	}
	return groups
}

// DistributablePool returns the money spread across tiers after the
// minimum-salary reserve for a pool of n priced players.
func DistributablePool(cfg domain.LeagueConfig, n int) float64 {
	target := float64(cfg.NumTeams*cfg.DraftCap) * cfg.DraftCapUsageTarget
	reserve := float64(floorCount(float64(n)*cfg.MinValuePlayersPercent) * cfg.MinSalary)
	return math.Max(0, target-reserve)
}

// ConvertToDollars ranks entries by final VAR and prices them through the
// tier bands. Within a band a player's share is proportional to its final
// VAR; a band with zero total VAR pays no share. Players tied on final VAR
// land in the band of the first of them so they price identically.
func ConvertToDollars(entries []domain.Valuation, cfg domain.LeagueConfig) []domain.Valuation {
	out := make([]domain.Valuation, len(entries))
	copy(out, entries)
	sortByFinalVAR(out)

	bands := cfg.Bands()
	available := DistributablePool(cfg, len(out))

	bandOf := make([]int, len(out))
	for _, g := range tieGroups(out) {
		b := bandIndex(bands, g[0]+1)
		for i := g[0]; i < g[1]; i++ {
			bandOf[i] = b
		}
	}

	bandTotal := make([]float64, len(bands))
	for i, e := range out {
		bandTotal[bandOf[i]] += e.FinalVAR
	}

	for i := range out {
		b := bandOf[i]
		share := 0.0
		if bandTotal[b] > 0 {
			share = available * bands[b].PoolShare * out[i].FinalVAR / bandTotal[b]
		}
		out[i].Salary = boundSalary(float64(cfg.MinSalary)+share, cfg)
		out[i].Tier = bands[b].Name
	}
	return out
}

// bandIndex returns the band containing a 1-based rank, else the last band.
func bandIndex(bands []domain.TierBand, rank int) int {
	for i, b := range bands {
		if b.Contains(rank) {
			return i
		}
	}
	return len(bands) - 1
}
