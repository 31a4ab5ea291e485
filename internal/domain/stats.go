package domain

// StatLine maps a canonical category key to a value for one season.
// Missing keys read as 0.
type StatLine map[string]float64

// Get returns the value for key, 0 when absent.
func (s StatLine) Get(key string) float64 {
	if s == nil {
		return 0
	}
	return s[key]
}

// Clone returns a deep copy. A nil line clones to an empty, non-nil line.
func (s StatLine) Clone() StatLine {
	out := make(StatLine, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether the line carries no non-zero value.
func (s StatLine) IsEmpty() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Canonical hitting keys.
const (
	StatGames         = "g"
	StatAtBats        = "ab"
	StatRuns          = "r"
	StatHits          = "h"
	StatHomeRuns      = "hr"
	StatRBI           = "rbi"
	StatStolenBases   = "sb"
	StatWalks         = "bb"
	StatAverage       = "avg"
	StatOnBase        = "obp"
	StatSlugging      = "slg"
	StatOPS           = "ops"
	StatPlateAppear   = "pa"
	StatHitStrikeouts = "so"
)

// Canonical pitching keys. Pitching keys that collide with hitting names
// (games, walks, hits) are prefixed with "p_".
const (
	StatPitchGames   = "p_g"
	StatGamesStarted = "gs"
	StatInnings      = "ip"
	StatWins         = "w"
	StatLosses       = "l"
	StatSaves        = "sv"
	StatHolds        = "hld"
	StatQualityStart = "qs"
	StatStrikeouts   = "k"
	StatERA          = "era"
	StatWHIP         = "whip"
	StatEarnedRuns   = "er"
	StatPitchWalks   = "p_bb"
	StatPitchHits    = "p_h"
)

// Rate categories are blended by weighted average and nudged toward
// league-neutral values when discounted. Everything else is counting.
var rateStats = map[string]bool{
	StatAverage:  true,
	StatOnBase:   true,
	StatSlugging: true,
	StatOPS:      true,
	StatERA:      true,
	StatWHIP:     true,
}

// IsRateStat reports whether key is a rate statistic.
func IsRateStat(key string) bool {
	return rateStats[key]
}

// lowerIsBetter categories have their z-score sign flipped.
var lowerIsBetter = map[string]bool{
	StatERA:    true,
	StatWHIP:   true,
	StatLosses: true,
}

// IsLowerBetter reports whether smaller values are better for key.
func IsLowerBetter(key string) bool {
	return lowerIsBetter[key]
}

// NeutralRates are league-neutral rate values used when discounting an older
// season toward the middle of the league.
var NeutralRates = map[string]float64{
	StatAverage:  0.250,
	StatOnBase:   0.320,
	StatSlugging: 0.410,
	StatOPS:      0.730,
	StatERA:      4.20,
	StatWHIP:     1.30,
}

// HitterDisplayStats are the raw hitting fields shown next to a price.
var HitterDisplayStats = []string{
	StatAtBats, StatRuns, StatHomeRuns, StatRBI, StatStolenBases, StatAverage, StatOPS,
}

// PitcherDisplayStats are the raw pitching fields shown next to a price.
var PitcherDisplayStats = []string{
	StatInnings, StatWins, StatQualityStart, StatSaves, StatStrikeouts, StatERA, StatWHIP,
}
