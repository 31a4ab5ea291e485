package domain

// NormalizationMethod tags which season(s) fed the normalized stat line.
type NormalizationMethod string

const (
	MethodCurrentYear    NormalizationMethod = "current_year"
	MethodBlended        NormalizationMethod = "blended"
	MethodPartialCurrent NormalizationMethod = "partial_current"
	MethodPriorYear      NormalizationMethod = "prior_year"
	MethodTwoYearsAgo    NormalizationMethod = "two_years_ago"
	MethodNoData         NormalizationMethod = "no_data"
	MethodRookie         NormalizationMethod = "rookie"
)

// Normalized position vocabulary.
const (
	PosCatcher    = "C"
	PosFirstBase  = "1B"
	PosSecondBase = "2B"
	PosThirdBase  = "3B"
	PosShortstop  = "SS"
	PosOutfield   = "OF"
	PosDesignated = "DH"
	PosStarter    = "SP"
	PosReliever   = "RP"
	PosCloser     = "CL"
)

// TierRookie labels players priced by the rookie assigner.
const TierRookie = "rookie"

// CategoryStatistic summarizes one (role, category) pair for one run.
type CategoryStatistic struct {
	Role     Role    `json:"role"`
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"` // population stddev, floored to 1 when zero
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Count    int     `json:"count"` // contributing players
}

// Valuation is one role-specific entry flowing through the pricing stages.
// Dual-role players produce two entries that merge after scarcity.
type Valuation struct {
	Player          PlayerRecord
	Role            Role
	Normalized      StatLine
	Method          NormalizationMethod
	IsStarter       bool               // pitchers only
	Position        string             // normalized position
	ZScores         map[string]float64 // per valid category
	TotalZScore     float64
	AvgZScore       float64
	ReplacementLvl  float64
	VAR             float64 // max(0, total - replacement)
	AdjustedVAR     float64 // VAR after convexity boost
	ScarcityFactor  float64
	FinalVAR        float64
	Salary          int
	Tier            string
	MergedPositions []string // positions of merged dual-role entries
}
