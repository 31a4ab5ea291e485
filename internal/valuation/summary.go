package valuation

import (
	"math"

	"fantasy-pricing-lab/internal/domain"
)

// Salary bucket thresholds of the summary report.
const (
	bucketOver50 = 50
	bucketOver30 = 30
	bucketOver20 = 20
	bucketUnder5 = 5
)

// Summarize aggregates distribution diagnostics over every priced row,
// rookies included.
func Summarize(prices []domain.PricedPlayer, cfg domain.LeagueConfig, warnings int) domain.SummaryReport {
	s := domain.SummaryReport{
		TotalPlayers: len(prices),
		WarningCount: warnings,
	}

	for _, p := range prices {
		s.TotalMoney += p.Salary
		if p.Salary > s.MaxSalary {
			s.MaxSalary = p.Salary
		}
		if p.Salary >= bucketOver50 {
			s.Over50++
		}
		if p.Salary >= bucketOver30 {
			s.Over30++
		}
		if p.Salary >= bucketOver20 {
			s.Over20++
		}
		if p.Salary < bucketUnder5 {
			s.Under5++
		}
		if p.Salary == cfg.MinSalary {
			s.AtMinimum++
		}
		if p.IsRookie {
			s.RookieCount++
		}
	}

	if s.TotalPlayers > 0 {
		s.AverageSalary = round2(float64(s.TotalMoney) / float64(s.TotalPlayers))
	}
	if cfg.NumTeams > 0 {
		s.AverageTeamSpend = round2(float64(s.TotalMoney) / float64(cfg.NumTeams))
	}
	if budget := cfg.NumTeams * cfg.DraftCap; budget > 0 {
		s.CapUsagePercent = round2(float64(s.TotalMoney) / float64(budget) * 100)
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(finite(v)*100) / 100
}
