package ingestion

import "fantasy-pricing-lab/internal/domain"

// sharedAliases resolve the same way for every role.
var sharedAliases = map[string]string{
	"ab":                domain.StatAtBats,
	"at_bats":           domain.StatAtBats,
	"atbats":            domain.StatAtBats,
	"pa":                domain.StatPlateAppear,
	"plate_appearances": domain.StatPlateAppear,
	"r":                 domain.StatRuns,
	"runs":              domain.StatRuns,
	"hr":                domain.StatHomeRuns,
	"home_runs":         domain.StatHomeRuns,
	"homeruns":          domain.StatHomeRuns,
	"rbi":               domain.StatRBI,
	"rbis":              domain.StatRBI,
	"runs_batted_in":    domain.StatRBI,
	"sb":                domain.StatStolenBases,
	"stolen_bases":      domain.StatStolenBases,
	"avg":               domain.StatAverage,
	"ba":                domain.StatAverage,
	"batting_average":   domain.StatAverage,
	"obp":               domain.StatOnBase,
	"on_base_pct":       domain.StatOnBase,
	"slg":               domain.StatSlugging,
	"slugging":          domain.StatSlugging,
	"slugging_pct":      domain.StatSlugging,
	"ops":               domain.StatOPS,

	"gs":                 domain.StatGamesStarted,
	"games_started":      domain.StatGamesStarted,
	"starts":             domain.StatGamesStarted,
	"ip":                 domain.StatInnings,
	"innings":            domain.StatInnings,
	"innings_pitched":    domain.StatInnings,
	"w":                  domain.StatWins,
	"wins":               domain.StatWins,
	"l":                  domain.StatLosses,
	"losses":             domain.StatLosses,
	"sv":                 domain.StatSaves,
	"saves":              domain.StatSaves,
	"hld":                domain.StatHolds,
	"holds":              domain.StatHolds,
	"qs":                 domain.StatQualityStart,
	"quality_starts":     domain.StatQualityStart,
	"pitcher_strikeouts": domain.StatStrikeouts,
	"strikeouts_pitched": domain.StatStrikeouts,
	"era":                domain.StatERA,
	"earned_run_average": domain.StatERA,
	"whip":               domain.StatWHIP,
	"er":                 domain.StatEarnedRuns,
	"earned_runs":        domain.StatEarnedRuns,
	"games_pitched":      domain.StatPitchGames,
	"pitcher_games":      domain.StatPitchGames,
	"appearances":        domain.StatPitchGames,
	"p_g":                domain.StatPitchGames,
	"walks_allowed":      domain.StatPitchWalks,
	"pitcher_walks":      domain.StatPitchWalks,
	"p_bb":               domain.StatPitchWalks,
	"hits_allowed":       domain.StatPitchHits,
	"pitcher_hits":       domain.StatPitchHits,
	"p_h":                domain.StatPitchHits,
}

// roleAliases cover keys whose meaning depends on the player's primary role.
var roleAliases = map[domain.Role]map[string]string{
	domain.RoleHitter: {
		"g":          domain.StatGames,
		"games":      domain.StatGames,
		"h":          domain.StatHits,
		"hits":       domain.StatHits,
		"bb":         domain.StatWalks,
		"walks":      domain.StatWalks,
		"so":         domain.StatHitStrikeouts,
		"k":          domain.StatHitStrikeouts,
		"strikeouts": domain.StatHitStrikeouts,
	},
	domain.RolePitcher: {
		"g":          domain.StatPitchGames,
		"games":      domain.StatPitchGames,
		"h":          domain.StatPitchHits,
		"hits":       domain.StatPitchHits,
		"bb":         domain.StatPitchWalks,
		"walks":      domain.StatPitchWalks,
		"so":         domain.StatStrikeouts,
		"k":          domain.StatStrikeouts,
		"strikeouts": domain.StatStrikeouts,
	},
}

// canonicalKey resolves a raw stat key for a player whose primary role is role.
func canonicalKey(raw string, role domain.Role) (string, bool) {
	if key, ok := roleAliases[role][raw]; ok {
		return key, true
	}
	key, ok := sharedAliases[raw]
	return key, ok
}

// pitcherPositions are raw position strings that mark a pitcher.
var pitcherPositions = map[string]bool{
	"P":   true,
	"SP":  true,
	"RP":  true,
	"CL":  true,
	"RHP": true,
	"LHP": true,
}
