package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/normalization"
	"fantasy-pricing-lab/internal/valuation"
)

// MinCategoryContributors is the fewest players with a usable value a
// scoring category needs for a meaningful distribution.
const MinCategoryContributors = 2

// SufficiencyCheck represents one pool sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// FailedChecks returns the names of the checks that did not pass.
func (r *SufficiencyResult) FailedChecks() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Pass {
			names = append(names, c.Name)
		}
	}
	return names
}

// SufficiencyChecker validates that a player pool can support a league
// before pricing. Failures are data-quality findings; they do not block a run.
type SufficiencyChecker struct {
	normalizer *normalization.Normalizer
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(thresholds normalization.Thresholds) *SufficiencyChecker {
	return &SufficiencyChecker{normalizer: normalization.NewNormalizer(thresholds)}
}

// roleEntry is one normalized role of a pool player.
type roleEntry struct {
	role     domain.Role
	position string
	stats    domain.StatLine
}

// Check performs all sufficiency checks of pool against cfg.
func (c *SufficiencyChecker) Check(pool []domain.PlayerRecord, cfg domain.LeagueConfig) *SufficiencyResult {
	result := &SufficiencyResult{
		AllPass: true,
		Errors:  []string{},
	}
	add := func(check SufficiencyCheck, errs ...string) {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	// Check 1: duplicate player ids
	check, dupErrors := c.checkDuplicatePlayers(pool)
	add(check, dupErrors...)

	// Check 2: pool size covers league demand
	add(c.checkPoolSize(pool, cfg))

	entries := c.normalizeAll(pool)

	// Check 3: per-position supply
	for _, check := range c.checkPositionSupply(entries, cfg) {
		add(check)
	}

	// Check 4: category contributors
	check, catErrors := c.checkCategoryContributors(entries, cfg)
	add(check, catErrors...)

	return result
}

// checkDuplicatePlayers: duplicate player_id count == 0.
func (c *SufficiencyChecker) checkDuplicatePlayers(pool []domain.PlayerRecord) (SufficiencyCheck, []string) {
	seen := make(map[string]int, len(pool))
	for _, p := range pool {
		seen[p.PlayerID]++
	}

	var errs []string
	for id, n := range seen {
		if n > 1 {
			errs = append(errs, fmt.Sprintf("duplicate player_id %q appears %d times", id, n))
		}
	}
	sort.Strings(errs)

	return SufficiencyCheck{
		Name:      "Duplicate player ids",
		Threshold: "== 0",
		Actual:    fmt.Sprintf("%d", len(errs)),
		Pass:      len(errs) == 0,
	}, errs
}

// checkPoolSize: players in pool >= numTeams * rosterSize.
func (c *SufficiencyChecker) checkPoolSize(pool []domain.PlayerRecord, cfg domain.LeagueConfig) SufficiencyCheck {
	demand := cfg.NumTeams * cfg.RosterSize
	return SufficiencyCheck{
		Name:      "Player pool size",
		Threshold: fmt.Sprintf(">= %d", demand),
		Actual:    fmt.Sprintf("%d", len(pool)),
		Pass:      len(pool) >= demand,
	}
}

// normalizeAll normalizes every role of every player with data.
func (c *SufficiencyChecker) normalizeAll(pool []domain.PlayerRecord) []roleEntry {
	var entries []roleEntry
	for _, p := range pool {
		for _, role := range p.Roles() {
			res := c.normalizer.Normalize(p, role)
			if res.Method == domain.MethodNoData {
				continue
			}
			entries = append(entries, roleEntry{
				role:     role,
				position: valuation.NormalizePosition(p.Position, role, res.IsStarter, res.Stats.Get(domain.StatSaves)),
				stats:    res.Stats,
			})
		}
	}
	return entries
}

// checkPositionSupply: players at each configured position >= slots * teams.
// Any hitter can fill DH.
func (c *SufficiencyChecker) checkPositionSupply(entries []roleEntry, cfg domain.LeagueConfig) []SufficiencyCheck {
	supply := make(map[string]int)
	hitters := 0
	for _, e := range entries {
		supply[e.position]++
		if e.role == domain.RoleHitter {
			hitters++
		}
	}
	supply[domain.PosDesignated] = hitters

	positions := make([]string, 0, len(cfg.PositionSlots))
	for pos, slots := range cfg.PositionSlots {
		if slots > 0 {
			positions = append(positions, pos)
		}
	}
	sort.Strings(positions)

	checks := make([]SufficiencyCheck, 0, len(positions))
	for _, pos := range positions {
		demand := cfg.Slots(pos) * cfg.NumTeams
		checks = append(checks, SufficiencyCheck{
			Name:      "Supply at " + pos,
			Threshold: fmt.Sprintf(">= %d", demand),
			Actual:    fmt.Sprintf("%d", supply[pos]),
			Pass:      supply[pos] >= demand,
		})
	}
	return checks
}

// checkCategoryContributors: every scoring category has at least
// MinCategoryContributors players of its role with a non-zero value.
func (c *SufficiencyChecker) checkCategoryContributors(entries []roleEntry, cfg domain.LeagueConfig) (SufficiencyCheck, []string) {
	var errs []string
	fewest := -1
	for _, role := range []domain.Role{domain.RoleHitter, domain.RolePitcher} {
		for _, cat := range cfg.Categories(role) {
			n := 0
			for _, e := range entries {
				if e.role == role && e.stats.Get(cat) != 0 {
					n++
				}
			}
			if fewest < 0 || n < fewest {
				fewest = n
			}
			if n < MinCategoryContributors {
				errs = append(errs, fmt.Sprintf("%s category %s has %d contributing players", role, cat, n))
			}
		}
	}
	if fewest < 0 {
		fewest = 0
	}

	actual := fmt.Sprintf("min %d", fewest)
	if len(errs) > 0 {
		actual += fmt.Sprintf(" (%d short)", len(errs))
	}

	return SufficiencyCheck{
		Name:      "Category contributors",
		Threshold: fmt.Sprintf(">= %d per category", MinCategoryContributors),
		Actual:    actual,
		Pass:      len(errs) == 0,
	}, errs
}

// Summary renders a one-line description of the result for logs.
func (r *SufficiencyResult) Summary() string {
	if r.AllPass {
		return fmt.Sprintf("all %d checks passed", len(r.Checks))
	}
	return fmt.Sprintf("%d of %d checks failed: %s", len(r.FailedChecks()), len(r.Checks), strings.Join(r.FailedChecks(), ", "))
}
