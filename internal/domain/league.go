package domain

// CapMode selects how a league splits its spending power.
type CapMode string

const (
	CapModeSingle CapMode = "single" // one cap spent at the draft
	CapModeDual   CapMode = "dual"   // draft cap + in-season cap
)

// IsValid checks if the cap mode is a known value.
func (m CapMode) IsValid() bool {
	return m == CapModeSingle || m == CapModeDual
}

// TierBand is one rank range of the tiered money distribution.
// ToRank of 0 means open-ended.
type TierBand struct {
	Name      string  // label attached to players priced in this band
	FromRank  int     // 1-based, inclusive
	ToRank    int     // 1-based, inclusive; 0 = no upper bound
	PoolShare float64 // fraction of the distributable pool
}

// Contains reports whether a 1-based rank falls inside the band.
func (b TierBand) Contains(rank int) bool {
	if rank < b.FromRank {
		return false
	}
	return b.ToRank == 0 || rank <= b.ToRank
}

// DefaultTierBands is the stock distribution: stars take a disproportionate share.
func DefaultTierBands() []TierBand {
	return []TierBand{
		{Name: "elite", FromRank: 1, ToRank: 10, PoolShare: 0.25},
		{Name: "core", FromRank: 11, ToRank: 50, PoolShare: 0.35},
		{Name: "depth", FromRank: 51, ToRank: 150, PoolShare: 0.30},
		{Name: "value", FromRank: 151, ToRank: 0, PoolShare: 0.10},
	}
}

// LeagueConfig is the immutable configuration of one pricing run.
type LeagueConfig struct {
	LeagueID               string         // owning league identifier
	NumTeams               int            // teams drafting
	RosterSize             int            // roster slots per team
	CapMode                CapMode        // single | dual
	DraftCap               int            // money per team at the draft
	SeasonCap              int            // in-season money per team (dual mode)
	TotalCap               int            // DraftCap + SeasonCap in dual mode, DraftCap in single mode
	MinSalary              int            // salary floor
	SalaryIncrement        int            // salaries are multiples of this
	RookiePrice            int            // flat price for unqualified players
	HittingCategories      []string       // canonical keys scored for hitters
	PitchingCategories     []string       // canonical keys scored for pitchers
	PositionSlots          map[string]int // normalized position -> required slots per team
	DraftCapUsageTarget    float64        // fraction of draft money expected to be spent
	MinValuePlayersPercent float64        // fraction of priced players held at the floor
	MaxPlayerPercentOfCap  float64        // per-player ceiling as a fraction of DraftCap
	TierBands              []TierBand     // ordered rank bands; empty = DefaultTierBands
}

// MaxSalary returns the per-player salary ceiling.
func (c LeagueConfig) MaxSalary() int {
	return int(c.MaxPlayerPercentOfCap * float64(c.DraftCap))
}

// PoolLimit returns how many players survive the relevance filter.
func (c LeagueConfig) PoolLimit() int {
	return int(float64(c.NumTeams*c.RosterSize) * 1.5)
}

// Bands returns the configured tier bands or the defaults.
func (c LeagueConfig) Bands() []TierBand {
	if len(c.TierBands) == 0 {
		return DefaultTierBands()
	}
	return c.TierBands
}

// Categories returns the scoring categories for a role.
func (c LeagueConfig) Categories(role Role) []string {
	if role == RolePitcher {
		return c.PitchingCategories
	}
	return c.HittingCategories
}

// Slots returns required slots per team for a normalized position.
func (c LeagueConfig) Slots(position string) int {
	return c.PositionSlots[position]
}

// Clone returns a deep copy of the configuration.
func (c LeagueConfig) Clone() LeagueConfig {
	out := c
	out.HittingCategories = append([]string(nil), c.HittingCategories...)
	out.PitchingCategories = append([]string(nil), c.PitchingCategories...)
	out.TierBands = append([]TierBand(nil), c.TierBands...)
	if c.PositionSlots != nil {
		out.PositionSlots = make(map[string]int, len(c.PositionSlots))
		for k, v := range c.PositionSlots {
			out.PositionSlots[k] = v
		}
	}
	return out
}
