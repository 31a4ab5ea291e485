package valuation

import "math"

// finite replaces NaN and infinities with 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundToIncrement snaps v to the nearest multiple of inc.
func roundToIncrement(v float64, inc int) int {
	if inc <= 0 {
		inc = 1
	}
	return int(math.Round(finite(v)/float64(inc))) * inc
}

// ceilToIncrement rounds a positive amount up to a multiple of inc.
func ceilToIncrement(v, inc int) int {
	if inc <= 0 {
		inc = 1
	}
	if v <= 0 {
		return 0
	}
	return ((v + inc - 1) / inc) * inc
}

// floatSlack absorbs binary rounding in products such as 0.7 * 260 * 12.
const floatSlack = 1e-9

// floorCount floors a computed amount, treating values within floatSlack of
// the next integer as that integer.
func floorCount(v float64) int {
	return int(math.Floor(v + floatSlack*math.Max(1, math.Abs(v))))
}

// ceilCount is the ceiling counterpart of floorCount.
func ceilCount(v float64) int {
	return int(math.Ceil(v - floatSlack*math.Max(1, math.Abs(v))))
}
