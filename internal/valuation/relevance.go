package valuation

import (
	"sort"

	"fantasy-pricing-lab/internal/domain"
)

// relevanceFallbackBelow is the current-season score under which the prior
// season is consulted.
const relevanceFallbackBelow = 20

// priorRelevanceDiscount scales a prior-season score used as a fallback.
const priorRelevanceDiscount = 0.8

func pitcherRelevance(line domain.StatLine) float64 {
	return 2*line.Get(domain.StatGamesStarted) +
		0.5*line.Get(domain.StatInnings) +
		3*line.Get(domain.StatWins) +
		3*line.Get(domain.StatSaves) +
		0.2*line.Get(domain.StatStrikeouts)
}

func hitterRelevance(line domain.StatLine) float64 {
	return 0.1*line.Get(domain.StatAtBats) +
		2*line.Get(domain.StatHomeRuns) +
		0.5*line.Get(domain.StatRBI)
}

func roleRelevance(p domain.PlayerRecord, role domain.Role) float64 {
	score := hitterRelevance
	if role == domain.RolePitcher {
		score = pitcherRelevance
	}
	cur := finite(score(p.Current))
	if cur < relevanceFallbackBelow {
		if prior := priorRelevanceDiscount * finite(score(p.Prior)); prior > cur {
			return prior
		}
	}
	return cur
}

// RelevanceScore is the cheap pre-filter score of a player: the best score
// across every role the player is evaluated in.
func RelevanceScore(p domain.PlayerRecord) float64 {
	best := 0.0
	for i, role := range p.Roles() {
		if s := roleRelevance(p, role); i == 0 || s > best {
			best = s
		}
	}
	return best
}

// FilterRelevant keeps players with a positive relevance score, ordered by
// score DESC then player id ASC, truncated to cfg.PoolLimit().
func FilterRelevant(pool []domain.PlayerRecord, cfg domain.LeagueConfig) []domain.PlayerRecord {
	type scored struct {
		player domain.PlayerRecord
		score  float64
	}

	candidates := make([]scored, 0, len(pool))
	for _, p := range pool {
		if s := RelevanceScore(p); s > 0 {
			candidates = append(candidates, scored{player: p, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].player.PlayerID < candidates[j].player.PlayerID
	})

	limit := cfg.PoolLimit()
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]domain.PlayerRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.player.Clone()
	}
	return out
}
