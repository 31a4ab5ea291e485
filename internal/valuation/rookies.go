package valuation

import (
	"fantasy-pricing-lab/internal/domain"
)

// DefaultMaxRookies bounds how many unqualified players get a rookie price.
const DefaultMaxRookies = 50

// AssignRookies prices players from the original pool that were not valued
// and show no prior-season production. Input order is kept; at most limit
// players are returned. Display stats are all zero.
func AssignRookies(pool []domain.PlayerRecord, priced map[string]bool, cfg domain.LeagueConfig, limit int) []domain.PricedPlayer {
	var out []domain.PricedPlayer
	seen := make(map[string]bool)

	for _, p := range pool {
		if len(out) >= limit {
			break
		}
		if priced[p.PlayerID] || seen[p.PlayerID] || !p.Prior.IsEmpty() {
			continue
		}
		seen[p.PlayerID] = true

		role := p.PrimaryRole()
		isStarter := primaryToken(p.Position) == domain.PosStarter
		out = append(out, domain.PricedPlayer{
			PlayerID:            p.PlayerID,
			PlayerName:          p.Name,
			Position:            NormalizePosition(p.Position, role, isStarter, 0),
			Team:                p.Team,
			Salary:              cfg.RookiePrice,
			Tier:                domain.TierRookie,
			IsRookie:            true,
			NormalizationMethod: domain.MethodRookie,
			Stats:               zeroDisplayStats(p),
		})
	}
	return out
}

func zeroDisplayStats(p domain.PlayerRecord) map[string]float64 {
	stats := make(map[string]float64)
	for _, role := range p.Roles() {
		for _, k := range displayKeys(role) {
			stats[k] = 0
		}
	}
	return stats
}

func displayKeys(role domain.Role) []string {
	if role == domain.RolePitcher {
		return domain.PitcherDisplayStats
	}
	return domain.HitterDisplayStats
}
