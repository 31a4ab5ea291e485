package valuation

import "fantasy-pricing-lab/internal/domain"

// rescaleTrigger is the share of the draft cap an average team may reach
// before every salary is rescaled.
const rescaleTrigger = 0.85

// ViabilityReport describes the corrections EnforceViability made.
type ViabilityReport struct {
	Rescaled     bool
	RescaleRatio float64
	Trimmed      int // dollars removed by the ceiling trim pass
	FloorPushed  int // players pushed down to the salary floor
	FloorQuota   int
}

func totalSalary(entries []domain.Valuation) int {
	sum := 0
	for _, e := range entries {
		sum += e.Salary
	}
	return sum
}

// EnforceViability keeps the priced pool draftable. Entries must be ordered
// by final VAR DESC as returned by ConvertToDollars.
//
//  1. Rescale every salary when the average team spend exceeds 85% of the
//     draft cap.
//  2. Trim from the lowest final VAR upward until the total fits
//     numTeams * draftCap * usageTarget.
//  3. Push the lowest final VAR players down to the floor until
//     ceil(minValuePlayersPercent * n) players sit at minSalary.
//
// Tied final VAR groups always move together.
func EnforceViability(entries []domain.Valuation, cfg domain.LeagueConfig) ([]domain.Valuation, ViabilityReport) {
	out := make([]domain.Valuation, len(entries))
	copy(out, entries)
	var report ViabilityReport
	if len(out) == 0 {
		return out, report
	}

	teams := float64(cfg.NumTeams)
	target := float64(cfg.DraftCap) * cfg.DraftCapUsageTarget

	avgTeam := float64(totalSalary(out)) / teams
	if avgTeam > float64(cfg.DraftCap)*rescaleTrigger {
		ratio := target / avgTeam
		for i := range out {
			out[i].Salary = boundSalary(float64(out[i].Salary)*ratio, cfg)
		}
		report.Rescaled = true
		report.RescaleRatio = ratio
	}

	groups := tieGroups(out)

	ceiling := floorCount(target * teams)
	excess := totalSalary(out) - ceiling
	for g := len(groups) - 1; g >= 0 && excess > 0; g-- {
		start, end := groups[g][0], groups[g][1]
		room := out[start].Salary - cfg.MinSalary
		if room <= 0 {
			continue
		}
		perPlayer := ceilToIncrement((excess+end-start-1)/(end-start), cfg.SalaryIncrement)
		cut := perPlayer
		if cut > room {
			cut = room
		}
		for i := start; i < end; i++ {
			out[i].Salary -= cut
		}
		excess -= cut * (end - start)
		report.Trimmed += cut * (end - start)
	}

	report.FloorQuota = ceilCount(float64(len(out)) * cfg.MinValuePlayersPercent)
	atFloor := 0
	for _, e := range out {
		if e.Salary == cfg.MinSalary {
			atFloor++
		}
	}
	for g := len(groups) - 1; g >= 0 && atFloor < report.FloorQuota; g-- {
		start, end := groups[g][0], groups[g][1]
		if out[start].Salary == cfg.MinSalary {
			continue
		}
		for i := start; i < end; i++ {
			out[i].Salary = cfg.MinSalary
		}
		atFloor += end - start
		report.FloorPushed += end - start
	}

	return out, report
}
