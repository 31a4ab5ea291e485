package ingestion

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"fantasy-pricing-lab/internal/domain"
)

// ErrMalformedEntry is returned for raw entries that cannot become a player record.
var ErrMalformedEntry = errors.New("malformed player entry")

// RawStats is one season of stats as delivered by a data source.
// Values may be numbers, numeric strings or null.
type RawStats map[string]any

// RawPlayer is one entry of an upstream player feed.
type RawPlayer struct {
	PlayerID         string   `json:"player_id"`
	PlayerName       string   `json:"player_name"`
	Position         string   `json:"position"`
	Team             string   `json:"team"`
	IsPitcher        *bool    `json:"is_pitcher,omitempty"`
	DualEligible     bool     `json:"dual_eligible,omitempty"`
	StatsCurrent     RawStats `json:"stats_current"`
	StatsPrior       RawStats `json:"stats_prior"`
	StatsTwoYearsAgo RawStats `json:"stats_two_years_ago"`
}

// AdaptResult holds adapted records and the data-quality warnings raised on the way.
type AdaptResult struct {
	Players  []domain.PlayerRecord
	Warnings []string
	Skipped  int
}

// AdapterOptions contains configuration for creating an Adapter.
type AdapterOptions struct {
	Logger *log.Logger
	// StrictKeys turns unknown stat keys into warnings. Off by default since
	// feeds routinely carry columns nobody scores.
	StrictKeys bool
}

// Adapter converts raw feed entries into canonical player records.
type Adapter struct {
	logger     *log.Logger
	strictKeys bool
	scoring    map[domain.Role][]string // nil = no missing-category warnings
}

// NewAdapter creates a new Adapter.
func NewAdapter(opts AdapterOptions) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{
		logger:     logger,
		strictKeys: opts.StrictKeys,
	}
}

// WithScoring returns a copy of the adapter that warns when a non-empty
// stats_current line lacks one of cfg's scoring categories for the
// player's primary role. The missing value is scored as 0.
func (a *Adapter) WithScoring(cfg domain.LeagueConfig) *Adapter {
	c := *a
	c.scoring = map[domain.Role][]string{
		domain.RoleHitter:  cfg.HittingCategories,
		domain.RolePitcher: cfg.PitchingCategories,
	}
	return &c
}

// Adapt converts every raw entry. Entries without an id and repeated ids are
// skipped with a warning; everything else is absorbed into the record.
func (a *Adapter) Adapt(raw []RawPlayer) AdaptResult {
	result := AdaptResult{Players: make([]domain.PlayerRecord, 0, len(raw))}
	seen := make(map[string]bool, len(raw))

	for i, entry := range raw {
		record, warnings, err := a.AdaptOne(entry)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, w)
			a.logger.Printf("[ingestion] %s", w)
		}
		if err != nil {
			w := fmt.Sprintf("entry %d skipped: %v", i, err)
			result.Warnings = append(result.Warnings, w)
			result.Skipped++
			a.logger.Printf("[ingestion] %s", w)
			continue
		}
		if seen[record.PlayerID] {
			w := fmt.Sprintf("entry %d skipped: duplicate player_id %s", i, record.PlayerID)
			result.Warnings = append(result.Warnings, w)
			result.Skipped++
			a.logger.Printf("[ingestion] %s", w)
			continue
		}
		seen[record.PlayerID] = true
		result.Players = append(result.Players, record)
	}

	return result
}

// AdaptOne converts a single raw entry.
func (a *Adapter) AdaptOne(raw RawPlayer) (domain.PlayerRecord, []string, error) {
	id := strings.TrimSpace(raw.PlayerID)
	if id == "" {
		return domain.PlayerRecord{}, nil, fmt.Errorf("%w: missing player_id", ErrMalformedEntry)
	}

	position := strings.ToUpper(strings.TrimSpace(raw.Position))
	isPitcher := isPitcherPosition(position)
	if raw.IsPitcher != nil {
		isPitcher = *raw.IsPitcher
	}
	role := domain.RoleHitter
	if isPitcher {
		role = domain.RolePitcher
	}

	var warnings []string
	convert := func(label string, stats RawStats) domain.StatLine {
		line, w := a.canonicalize(stats, role)
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("%s %s: %s", id, label, msg))
		}
		return line
	}

	record := domain.PlayerRecord{
		PlayerID:                  id,
		Name:                      strings.TrimSpace(raw.PlayerName),
		Position:                  position,
		Team:                      strings.ToUpper(strings.TrimSpace(raw.Team)),
		IsPitcher:                 isPitcher,
		EligibleForDualEvaluation: raw.DualEligible,
		Current:                   convert("stats_current", raw.StatsCurrent),
		Prior:                     convert("stats_prior", raw.StatsPrior),
		TwoYearsAgo:               convert("stats_two_years_ago", raw.StatsTwoYearsAgo),
	}
	if record.Name == "" {
		record.Name = id
	}
	if len(raw.StatsCurrent) > 0 {
		for _, cat := range a.scoring[role] {
			if _, ok := record.Current[cat]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s stats_current: missing %s, scoring as 0", id, cat))
			}
		}
	}

	return record, warnings, nil
}

// canonicalize resolves aliases, coerces values and fills derivable rate stats.
func (a *Adapter) canonicalize(stats RawStats, role domain.Role) (domain.StatLine, []string) {
	line := make(domain.StatLine, len(stats))
	var warnings []string

	// Sorted iteration keeps alias collisions deterministic.
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	source := make(map[string]string, len(keys))
	for _, rawKey := range keys {
		normalized := strings.ToLower(strings.TrimSpace(rawKey))
		key, ok := canonicalKey(normalized, role)
		if !ok {
			if a.strictKeys {
				warnings = append(warnings, fmt.Sprintf("unknown stat key %q ignored", rawKey))
			}
			continue
		}

		value, err := coerce(stats[rawKey])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using 0", rawKey, err))
			value = 0
		}
		if key == domain.StatInnings {
			value = inningsFromNotation(value)
		}

		if prev, dup := source[key]; dup {
			if line[key] != value {
				warnings = append(warnings, fmt.Sprintf("%s conflicts with %s for %s, keeping %s", rawKey, prev, key, prev))
			}
			continue
		}
		source[key] = rawKey
		line[key] = value
	}

	deriveRates(line)
	return line, warnings
}

// coerce turns a raw JSON value into a finite float.
func coerce(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "-" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number %q", t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value")
	}
	return f, nil
}

// inningsFromNotation converts box-score innings (180.1 = 180 1/3) into
// true fractional innings. Values that are not in that notation pass through.
func inningsFromNotation(ip float64) float64 {
	whole := math.Floor(ip)
	frac := math.Round((ip-whole)*10) / 10
	switch frac {
	case 0.1:
		return whole + 1.0/3.0
	case 0.2:
		return whole + 2.0/3.0
	}
	return ip
}

// deriveRates fills rate stats a feed left out but whose inputs are present.
func deriveRates(line domain.StatLine) {
	ab := line.Get(domain.StatAtBats)
	if _, ok := line[domain.StatAverage]; !ok && ab > 0 {
		if h, ok := line[domain.StatHits]; ok {
			line[domain.StatAverage] = h / ab
		}
	}
	if _, ok := line[domain.StatOPS]; !ok {
		obp, hasOBP := line[domain.StatOnBase]
		slg, hasSLG := line[domain.StatSlugging]
		if hasOBP && hasSLG {
			line[domain.StatOPS] = obp + slg
		}
	}

	ip := line.Get(domain.StatInnings)
	if ip <= 0 {
		return
	}
	if _, ok := line[domain.StatERA]; !ok {
		if er, ok := line[domain.StatEarnedRuns]; ok {
			line[domain.StatERA] = er * 9 / ip
		}
	}
	if _, ok := line[domain.StatWHIP]; !ok {
		bb, hasBB := line[domain.StatPitchWalks]
		h, hasH := line[domain.StatPitchHits]
		if hasBB && hasH {
			line[domain.StatWHIP] = (bb + h) / ip
		}
	}
}

func isPitcherPosition(position string) bool {
	if pitcherPositions[position] {
		return true
	}
	// Multi-position strings list the primary position first.
	first := strings.FieldsFunc(position, func(r rune) bool {
		return r == '/' || r == ',' || r == '-' || r == ' '
	})
	return len(first) > 0 && pitcherPositions[first[0]]
}
