package domain

// PricedPlayer is one output row of a pricing run.
type PricedPlayer struct {
	PlayerID            string              `json:"player_id"`
	PlayerName          string              `json:"player_name"`
	Position            string              `json:"position"`
	Team                string              `json:"team"`
	Salary              int                 `json:"salary"`
	Tier                string              `json:"tier"`
	ImpactScore         float64             `json:"impact_score"`
	IsRookie            bool                `json:"is_rookie"`
	NormalizationMethod NormalizationMethod `json:"normalization_method"`
	TotalZScore         float64             `json:"total_z_score"`
	Stats               map[string]float64  `json:"stats"` // role-specific raw display fields
}

// SummaryReport aggregates distribution diagnostics for a run.
type SummaryReport struct {
	TotalPlayers     int     `json:"total_players"`
	TotalMoney       int     `json:"total_money"`
	AverageSalary    float64 `json:"average_salary"`
	AverageTeamSpend float64 `json:"average_team_spend"`
	CapUsagePercent  float64 `json:"cap_usage_percent"`
	MaxSalary        int     `json:"max_salary"`
	Over50           int     `json:"over_50"`
	Over30           int     `json:"over_30"`
	Over20           int     `json:"over_20"`
	Under5           int     `json:"under_5"`
	AtMinimum        int     `json:"at_minimum"`
	RookieCount      int     `json:"rookie_count"`
	WarningCount     int     `json:"warning_count"`
}

// PricingResult is the complete output of one engine invocation.
type PricingResult struct {
	Season     SeasonContext       `json:"season"`
	Prices     []PricedPlayer      `json:"prices"`
	Summary    SummaryReport       `json:"summary"`
	Categories []CategoryStatistic `json:"categories"`
	Warnings   []string            `json:"warnings,omitempty"`
	Success    bool                `json:"success"`
}

// PricingRun is a persisted pricing result owned by the calling system.
type PricingRun struct {
	RunID       string        // deterministic id, see idhash.ComputeRunID
	LeagueID    string        // owning league
	Season      int           // SeasonContext.Year
	DataVersion string        // hash of the input pool
	CreatedAt   int64         // Unix ms
	Result      PricingResult // full output
}

// SalaryPoint is one player's salary in one run, for cross-run analytics.
type SalaryPoint struct {
	RunID       string
	LeagueID    string
	Season      int
	PlayerID    string
	Position    string
	Salary      int
	ImpactScore float64
	Tier        string
	IsRookie    bool
	CreatedAt   int64 // Unix ms
}

// Clone returns a deep copy of the result.
func (r PricingResult) Clone() PricingResult {
	out := r
	out.Prices = make([]PricedPlayer, len(r.Prices))
	for i, p := range r.Prices {
		stats := make(map[string]float64, len(p.Stats))
		for k, v := range p.Stats {
			stats[k] = v
		}
		p.Stats = stats
		out.Prices[i] = p
	}
	out.Categories = append([]CategoryStatistic(nil), r.Categories...)
	out.Warnings = append([]string(nil), r.Warnings...)
	return out
}
