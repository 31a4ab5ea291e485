package lookup

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fantasy-pricing-lab/internal/domain"
)

// DefaultLimit caps Search results when the caller passes limit <= 0.
const DefaultLimit = 10

// Match is one search hit.
type Match struct {
	Player domain.PricedPlayer
	Score  int
}

// Filter narrows search results. Zero value matches everything.
type Filter struct {
	Position  string // substring of the player's position, e.g. "SS"
	Team      string // exact team, case-insensitive
	MinSalary int
	Rookies   *bool // nil = both
}

func (f Filter) matches(p domain.PricedPlayer) bool {
	if f.Position != "" && !strings.Contains(strings.ToUpper(p.Position), strings.ToUpper(f.Position)) {
		return false
	}
	if f.Team != "" && !strings.EqualFold(p.Team, f.Team) {
		return false
	}
	if p.Salary < f.MinSalary {
		return false
	}
	if f.Rookies != nil && p.IsRookie != *f.Rookies {
		return false
	}
	return true
}

// Index searches the priced players of one run by name.
// It is read-only after construction and safe for concurrent use.
type Index struct {
	players []domain.PricedPlayer
	names   []string // folded names, parallel to players
	byID    map[string]int
}

// NewIndex builds an index over prices.
func NewIndex(prices []domain.PricedPlayer) *Index {
	idx := &Index{
		players: make([]domain.PricedPlayer, len(prices)),
		names:   make([]string, len(prices)),
		byID:    make(map[string]int, len(prices)),
	}
	copy(idx.players, prices)
	for i, p := range prices {
		idx.names[i] = foldName(p.PlayerName)
		idx.byID[p.PlayerID] = i
	}
	return idx
}

// Len returns the number of indexed players.
func (idx *Index) Len() int { return len(idx.players) }

// String implements fuzzy.Source.
func (idx *Index) String(i int) string { return idx.names[i] }

// ByID returns the player with the given id. Returns ErrNoMatch if absent.
func (idx *Index) ByID(playerID string) (domain.PricedPlayer, error) {
	i, ok := idx.byID[playerID]
	if !ok {
		return domain.PricedPlayer{}, ErrNoMatch
	}
	return idx.players[i], nil
}

// Search fuzzy-matches query against player names, best match first.
// An empty query lists players in run order.
func (idx *Index) Search(query string, filter Filter, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query = foldName(query)
	var out []Match
	if query == "" {
		for _, p := range idx.players {
			if filter.matches(p) {
				out = append(out, Match{Player: p})
				if len(out) == limit {
					break
				}
			}
		}
		return out
	}

	for _, m := range fuzzy.FindFrom(query, idx) {
		p := idx.players[m.Index]
		if !filter.matches(p) {
			continue
		}
		out = append(out, Match{Player: p, Score: m.Score})
		if len(out) == limit {
			break
		}
	}
	return out
}

// foldName lowercases and strips diacritics so "Acuña" matches "acuna".
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
