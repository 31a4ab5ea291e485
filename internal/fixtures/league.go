package fixtures

import "fantasy-pricing-lab/internal/domain"

// StandardLeague returns a 12-team, 25-man, $260 single-cap league with
// 6x6 categories.
func StandardLeague() domain.LeagueConfig {
	return domain.LeagueConfig{
		LeagueID:        "standard-12",
		NumTeams:        12,
		RosterSize:      25,
		CapMode:         domain.CapModeSingle,
		DraftCap:        260,
		TotalCap:        260,
		MinSalary:       1,
		SalaryIncrement: 1,
		RookiePrice:     1,
		HittingCategories: []string{
			domain.StatRuns, domain.StatHomeRuns, domain.StatRBI,
			domain.StatStolenBases, domain.StatAverage, domain.StatOPS,
		},
		PitchingCategories: []string{
			domain.StatWins, domain.StatQualityStart, domain.StatSaves,
			domain.StatStrikeouts, domain.StatERA, domain.StatWHIP,
		},
		PositionSlots: map[string]int{
			domain.PosCatcher:    2,
			domain.PosFirstBase:  1,
			domain.PosSecondBase: 1,
			domain.PosThirdBase:  1,
			domain.PosShortstop:  1,
			domain.PosOutfield:   5,
			domain.PosDesignated: 1,
			domain.PosStarter:    6,
			domain.PosReliever:   3,
			domain.PosCloser:     2,
		},
		DraftCapUsageTarget:    0.75,
		MinValuePlayersPercent: 0.2,
		MaxPlayerPercentOfCap:  0.25,
	}
}
