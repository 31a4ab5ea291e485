package normalization

import (
	"math"

	"fantasy-pricing-lab/internal/domain"
)

// Thresholds holds the playing-time cutoffs and discounts of the
// season-selection procedure.
type Thresholds struct {
	MinAtBats         float64 // hitters: full-season sample
	PriorAtBats       float64 // hitters: prior AB must exceed this to blend
	MinGamesStarted   float64 // starters: full-season sample
	PriorGamesStarted float64 // starters: prior GS needed to blend
	MinRelief         float64 // relievers: full-season appearances
	PriorRelief       float64 // relievers: prior appearances needed to blend
	StarterMinGS      float64 // GS at or above this marks a starter
	PriorDiscount     float64 // counting-stat scale for a prior-season fallback
	TwoYearDiscount   float64 // counting-stat scale for a two-years-ago fallback
	RateNudge         float64 // fraction a discounted rate moves toward neutral
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAtBats:         300,
		PriorAtBats:       100,
		MinGamesStarted:   12,
		PriorGamesStarted: 5,
		MinRelief:         25,
		PriorRelief:       10,
		StarterMinGS:      5,
		PriorDiscount:     0.85,
		TwoYearDiscount:   0.70,
		RateNudge:         0.05,
	}
}

// Result is one normalized stat line for one role.
type Result struct {
	Stats     domain.StatLine
	Method    domain.NormalizationMethod
	IsStarter bool    // pitchers only
	Weight    float64 // current-season weight when blended, else 0 or 1
}

// Normalizer selects or blends seasons per player and role.
type Normalizer struct {
	t Thresholds
}

// NewNormalizer creates a normalizer. Zero-valued thresholds take defaults.
func NewNormalizer(t Thresholds) *Normalizer {
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return &Normalizer{t: t}
}

// Normalize produces the normalized stat line of p evaluated as role.
// The input record is not modified.
func (n *Normalizer) Normalize(p domain.PlayerRecord, role domain.Role) Result {
	if role == domain.RolePitcher {
		return n.normalizePitcher(p)
	}
	return n.normalizeHitter(p)
}

func (n *Normalizer) normalizeHitter(p domain.PlayerRecord) Result {
	cur := p.Current.Get(domain.StatAtBats)
	prior := p.Prior.Get(domain.StatAtBats)

	switch {
	case cur >= n.t.MinAtBats:
		return Result{Stats: p.Current.Clone(), Method: domain.MethodCurrentYear, Weight: 1}
	case cur > 0 && prior > n.t.PriorAtBats:
		w := cur / n.t.MinAtBats
		line := blend(p.Current, p.Prior, w)
		line[domain.StatAtBats] = math.Max(cur, prior)
		return Result{Stats: line, Method: domain.MethodBlended, Weight: w}
	case cur > 0:
		return Result{Stats: p.Current.Clone(), Method: domain.MethodPartialCurrent, Weight: 1}
	}
	return n.fallback(p)
}

func (n *Normalizer) normalizePitcher(p domain.PlayerRecord) Result {
	starter := n.isStarter(p)

	key, full, priorMin := domain.StatPitchGames, n.t.MinRelief, n.t.PriorRelief
	if starter {
		key, full, priorMin = domain.StatGamesStarted, n.t.MinGamesStarted, n.t.PriorGamesStarted
	}
	cur := pitcherSample(p.Current, key)
	prior := pitcherSample(p.Prior, key)

	var res Result
	switch {
	case cur >= full:
		res = Result{Stats: p.Current.Clone(), Method: domain.MethodCurrentYear, Weight: 1}
	case cur > 0 && prior >= priorMin:
		w := cur / full
		res = Result{Stats: blend(p.Current, p.Prior, w), Method: domain.MethodBlended, Weight: w}
	case cur > 0:
		res = Result{Stats: p.Current.Clone(), Method: domain.MethodPartialCurrent, Weight: 1}
	default:
		res = n.fallback(p)
	}
	res.IsStarter = starter
	return res
}

// isStarter classifies from the first season that shows any appearance.
func (n *Normalizer) isStarter(p domain.PlayerRecord) bool {
	for _, line := range []domain.StatLine{p.Current, p.Prior, p.TwoYearsAgo} {
		gs := line.Get(domain.StatGamesStarted)
		g := math.Max(line.Get(domain.StatPitchGames), gs)
		if g <= 0 && line.Get(domain.StatInnings) <= 0 {
			continue
		}
		return gs >= n.t.StarterMinGS || (g > 0 && gs > 0.5*g)
	}
	return false
}

// pitcherSample reads the sample-size stat. Appearances fall back to starts
// for feeds that only report GS.
func pitcherSample(line domain.StatLine, key string) float64 {
	v := line.Get(key)
	if v == 0 && key == domain.StatPitchGames {
		v = line.Get(domain.StatGamesStarted)
	}
	return v
}

func (n *Normalizer) fallback(p domain.PlayerRecord) Result {
	if !p.Prior.IsEmpty() {
		return Result{Stats: n.discount(p.Prior, n.t.PriorDiscount), Method: domain.MethodPriorYear}
	}
	if !p.TwoYearsAgo.IsEmpty() {
		return Result{Stats: n.discount(p.TwoYearsAgo, n.t.TwoYearDiscount), Method: domain.MethodTwoYearsAgo}
	}
	return Result{Stats: domain.StatLine{}, Method: domain.MethodNoData}
}

// blend mixes two seasons as cur*w + prior*(1-w). A rate stat missing from
// one side is taken from the other rather than blended against zero.
func blend(cur, prior domain.StatLine, w float64) domain.StatLine {
	w = clamp01(w)
	out := make(domain.StatLine, len(cur)+len(prior))
	for _, line := range []domain.StatLine{cur, prior} {
		for k := range line {
			if _, done := out[k]; done {
				continue
			}
			c, p := cur.Get(k), prior.Get(k)
			if domain.IsRateStat(k) {
				switch {
				case c == 0:
					out[k] = p
					continue
				case p == 0:
					out[k] = c
					continue
				}
			}
			out[k] = finite(c*w + p*(1-w))
		}
	}
	return out
}

// discount scales counting stats and nudges rate stats toward neutral.
func (n *Normalizer) discount(line domain.StatLine, factor float64) domain.StatLine {
	out := make(domain.StatLine, len(line))
	for k, v := range line {
		if domain.IsRateStat(k) {
			if neutral, ok := domain.NeutralRates[k]; ok && v != 0 {
				v += (neutral - v) * n.t.RateNudge
			}
			out[k] = finite(v)
			continue
		}
		out[k] = finite(v * factor)
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
