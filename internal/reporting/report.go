package reporting

import (
	"time"

	"fantasy-pricing-lab/internal/domain"
)

// Report represents one pricing run report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	LeagueID    string
	Season      domain.SeasonContext

	// League
	League LeagueSummary

	// Data Quality (sufficiency checks)
	DataQuality DataQualitySection

	// Summary of the priced pool
	Summary     domain.SummaryReport
	Percentiles SalaryPercentiles
	Viability   ViabilityRow

	// Breakdown tables
	Positions  []PositionRow              // sorted by position
	Tiers      []TierRow                  // band order, rookie tier last
	Categories []domain.CategoryStatistic // hitters first, config order
	TopPlayers []domain.PricedPlayer      // highest salaries

	Warnings []string

	// Reproducibility
	Reproducibility ReproducibilityMetadata
}

// LeagueSummary describes the league a run was priced for.
type LeagueSummary struct {
	NumTeams        int
	RosterSize      int
	CapMode         domain.CapMode
	DraftCap        int
	TotalCap        int
	MinSalary       int
	MaxSalary       int
	UsageTarget     float64
	BudgetCeiling   int // numTeams * draftCap * usageTarget
	RelevantPlayers int // players kept by the relevance filter
}

// DataQualitySection contains pool sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SalaryPercentiles is the salary distribution of VAR-priced players.
type SalaryPercentiles struct {
	P10 float64
	P25 float64
	P50 float64
	P75 float64
	P90 float64
}

// ViabilityRow reports the draft-viability corrections of a run.
type ViabilityRow struct {
	Rescaled     bool
	RescaleRatio float64
	Trimmed      int
	FloorPushed  int
	FloorQuota   int
}

// PositionRow summarizes one normalized position.
type PositionRow struct {
	Position         string
	Slots            int     // required per team
	Demand           int     // slots * teams
	Priced           int     // priced players whose primary position is this one
	AvgSalary        float64 // over priced players
	MaxSalary        int
	ReplacementLevel float64
	ScarcityFactor   float64
}

// TierRow summarizes one tier band.
type TierRow struct {
	Tier      string
	Players   int
	Money     int
	MinSalary int
	MaxSalary int
}

// ReproducibilityMetadata identifies the inputs of a report.
type ReproducibilityMetadata struct {
	ReportTimestamp  time.Time
	GeneratorVersion string
	RunID            string
	DataVersion      string
	ReplayCommand    string
}
