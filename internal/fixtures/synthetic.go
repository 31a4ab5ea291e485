// Package fixtures generates deterministic player pools and leagues for
// demos and tests.
package fixtures

import (
	"fmt"
	"math"
	"math/rand"

	"fantasy-pricing-lab/internal/domain"
)

// SyntheticOptions sizes a synthetic pool.
type SyntheticOptions struct {
	Hitters   int
	Starters  int
	Relievers int
	Closers   int // relievers with closer-level saves, counted inside Relievers
	Rookies   int // players with no stats at all
	DualRole  int // hitters that also pitch
	Seed      int64
}

// DefaultSyntheticOptions returns a pool large enough for a 12-team league.
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{
		Hitters:   330,
		Starters:  130,
		Relievers: 110,
		Closers:   30,
		Rookies:   10,
		DualRole:  1,
		Seed:      42,
	}
}

var hitterPositionCycle = []string{"C", "1B", "2B", "3B", "SS", "LF", "CF", "RF", "DH", "C", "OF", "2B/SS"}

var teams = []string{"ATL", "BAL", "BOS", "CHC", "CWS", "CIN", "CLE", "COL", "DET", "HOU", "KC", "LAA", "LAD", "MIA", "MIL"}

// SyntheticPool builds a deterministic pool. Quality decreases with the index
// inside each group, with seeded noise on top.
func SyntheticPool(opts SyntheticOptions) []domain.PlayerRecord {
	rng := rand.New(rand.NewSource(opts.Seed))
	pool := make([]domain.PlayerRecord, 0, opts.Hitters+opts.Starters+opts.Relievers+opts.Rookies)

	for i := 0; i < opts.Hitters; i++ {
		q := quality(i, opts.Hitters, rng)
		p := domain.PlayerRecord{
			PlayerID:    fmt.Sprintf("h%04d", i+1),
			Name:        fmt.Sprintf("Hitter %d", i+1),
			Position:    hitterPositionCycle[i%len(hitterPositionCycle)],
			Team:        teams[i%len(teams)],
			Current:     hitterLine(q, 180+380*q+40*rng.Float64(), rng),
			Prior:       hitterLine(q, 200+400*q, rng),
			TwoYearsAgo: hitterLine(q*0.9, 250+300*q, rng),
		}
		if i < opts.DualRole {
			p.EligibleForDualEvaluation = true
			addPitching(p.Current, starterLine(0.6, 20, rng))
			addPitching(p.Prior, starterLine(0.6, 22, rng))
		}
		pool = append(pool, p)
	}

	for i := 0; i < opts.Starters; i++ {
		q := quality(i, opts.Starters, rng)
		pool = append(pool, domain.PlayerRecord{
			PlayerID:    fmt.Sprintf("sp%04d", i+1),
			Name:        fmt.Sprintf("Starter %d", i+1),
			Position:    "SP",
			Team:        teams[(i+3)%len(teams)],
			IsPitcher:   true,
			Current:     starterLine(q, 8+24*q+3*rng.Float64(), rng),
			Prior:       starterLine(q, 10+22*q, rng),
			TwoYearsAgo: domain.StatLine{},
		})
	}

	for i := 0; i < opts.Relievers; i++ {
		q := quality(i, opts.Relievers, rng)
		closer := i < opts.Closers
		pos := "RP"
		if closer && i%3 == 0 {
			pos = "CL"
		}
		pool = append(pool, domain.PlayerRecord{
			PlayerID:    fmt.Sprintf("rp%04d", i+1),
			Name:        fmt.Sprintf("Reliever %d", i+1),
			Position:    pos,
			Team:        teams[(i+7)%len(teams)],
			IsPitcher:   true,
			Current:     relieverLine(q, closer, 22+48*q, rng),
			Prior:       relieverLine(q, closer, 25+40*q, rng),
			TwoYearsAgo: domain.StatLine{},
		})
	}

	for i := 0; i < opts.Rookies; i++ {
		isPitcher := i%2 == 1
		pos := hitterPositionCycle[i%len(hitterPositionCycle)]
		if isPitcher {
			pos = "SP"
		}
		pool = append(pool, domain.PlayerRecord{
			PlayerID:    fmt.Sprintf("rk%04d", i+1),
			Name:        fmt.Sprintf("Rookie %d", i+1),
			Position:    pos,
			Team:        teams[(i+11)%len(teams)],
			IsPitcher:   isPitcher,
			Current:     domain.StatLine{},
			Prior:       domain.StatLine{},
			TwoYearsAgo: domain.StatLine{},
		})
	}

	return pool
}

// quality maps a rank inside a group to (0, 1], best first, with noise.
func quality(i, n int, rng *rand.Rand) float64 {
	if n <= 1 {
		return 1
	}
	base := 1 - float64(i)/float64(n)
	return math.Max(0.02, math.Min(1, base+0.08*(rng.Float64()-0.5)))
}

func hitterLine(q, ab float64, rng *rand.Rand) domain.StatLine {
	ab = math.Round(ab)
	avg := round3(0.220 + 0.085*q + 0.01*rng.Float64())
	obp := round3(avg + 0.060 + 0.02*q)
	slg := round3(0.340 + 0.200*q + 0.02*rng.Float64())
	h := math.Round(avg * ab)
	return domain.StatLine{
		domain.StatGames:       math.Round(ab / 3.8),
		domain.StatAtBats:      ab,
		domain.StatRuns:        math.Round(ab * (0.10 + 0.08*q)),
		domain.StatHits:        h,
		domain.StatHomeRuns:    math.Round(ab * (0.015 + 0.05*q)),
		domain.StatRBI:         math.Round(ab * (0.10 + 0.09*q)),
		domain.StatStolenBases: math.Round(30 * q * rng.Float64()),
		domain.StatWalks:       math.Round(ab * (0.06 + 0.05*q)),
		domain.StatAverage:     avg,
		domain.StatOnBase:      obp,
		domain.StatSlugging:    slg,
		domain.StatOPS:         round3(obp + slg),
	}
}

func starterLine(q, gs float64, rng *rand.Rand) domain.StatLine {
	gs = math.Round(gs)
	ip := math.Round(gs * (5.0 + 1.2*q))
	era := round2(5.30 - 2.40*q + 0.3*rng.Float64())
	whip := round2(1.48 - 0.42*q + 0.05*rng.Float64())
	return domain.StatLine{
		domain.StatPitchGames:   gs,
		domain.StatGamesStarted: gs,
		domain.StatInnings:      ip,
		domain.StatWins:         math.Round(gs * (0.20 + 0.25*q)),
		domain.StatLosses:       math.Round(gs * (0.40 - 0.20*q)),
		domain.StatQualityStart: math.Round(gs * (0.25 + 0.45*q)),
		domain.StatStrikeouts:   math.Round(ip * (0.75 + 0.40*q)),
		domain.StatERA:          era,
		domain.StatWHIP:         whip,
		domain.StatEarnedRuns:   math.Round(era * ip / 9),
	}
}

func relieverLine(q float64, closer bool, g float64, rng *rand.Rand) domain.StatLine {
	g = math.Round(g)
	ip := math.Round(g * 1.05)
	saves := math.Round(5 * rng.Float64())
	holds := math.Round(g * 0.25 * q)
	if closer {
		saves = math.Round(12 + 28*q)
		holds = math.Round(3 * rng.Float64())
	}
	return domain.StatLine{
		domain.StatPitchGames: g,
		domain.StatInnings:    ip,
		domain.StatWins:       math.Round(6 * q * rng.Float64()),
		domain.StatLosses:     math.Round(5 * (1 - q) * rng.Float64()),
		domain.StatSaves:      saves,
		domain.StatHolds:      holds,
		domain.StatStrikeouts: math.Round(ip * (0.9 + 0.5*q)),
		domain.StatERA:        round2(4.80 - 2.20*q + 0.3*rng.Float64()),
		domain.StatWHIP:       round2(1.45 - 0.40*q + 0.05*rng.Float64()),
	}
}

func addPitching(dst, src domain.StatLine) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
