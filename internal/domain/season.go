package domain

// SeasonContext pins the season a pricing run is evaluated for.
// It is passed in explicitly; the engine never reads the wall clock.
type SeasonContext struct {
	Year  int    `json:"year"`            // season year of the "current" stat snapshot
	Label string `json:"label,omitempty"` // optional display label, e.g. "2026 preseason"
}

// PriorYear returns the year of the prior snapshot.
func (s SeasonContext) PriorYear() int {
	return s.Year - 1
}

// TwoYearsAgoYear returns the year of the oldest snapshot.
func (s SeasonContext) TwoYearsAgoYear() int {
	return s.Year - 2
}
