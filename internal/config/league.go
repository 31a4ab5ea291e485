// Package config loads league configuration files and process settings.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/valuation"
)

// LeagueFile is the TOML (and JSON) layout of a league configuration.
type LeagueFile struct {
	LeagueID               string         `toml:"league_id" json:"league_id"`
	NumTeams               int            `toml:"num_teams" json:"num_teams"`
	RosterSize             int            `toml:"roster_size" json:"roster_size"`
	CapMode                string         `toml:"cap_mode" json:"cap_mode"`
	DraftCap               int            `toml:"draft_cap" json:"draft_cap"`
	SeasonCap              int            `toml:"season_cap" json:"season_cap"`
	TotalCap               int            `toml:"total_cap" json:"total_cap"`
	MinSalary              int            `toml:"min_salary" json:"min_salary"`
	SalaryIncrement        int            `toml:"salary_increment" json:"salary_increment"`
	RookiePrice            int            `toml:"rookie_price" json:"rookie_price"`
	DraftCapUsageTarget    float64        `toml:"draft_cap_usage_target" json:"draft_cap_usage_target"`
	MinValuePlayersPercent float64        `toml:"min_value_players_percent" json:"min_value_players_percent"`
	MaxPlayerPercentOfCap  float64        `toml:"max_player_percent_of_cap" json:"max_player_percent_of_cap"`
	HittingCategories      []string       `toml:"hitting_categories" json:"hitting_categories"`
	PitchingCategories     []string       `toml:"pitching_categories" json:"pitching_categories"`
	PositionSlots          map[string]int `toml:"position_slots" json:"position_slots"`
	Tiers                  []TierFile     `toml:"tiers" json:"tiers"`
}

// TierFile is one [[tiers]] entry.
type TierFile struct {
	Name      string  `toml:"name" json:"name"`
	FromRank  int     `toml:"from_rank" json:"from_rank"`
	ToRank    int     `toml:"to_rank" json:"to_rank"`
	PoolShare float64 `toml:"pool_share" json:"pool_share"`
}

// DefaultLeague returns the documented defaults: a 12-team, 25-man,
// $260 single-cap league scoring 6x6 categories.
func DefaultLeague() domain.LeagueConfig {
	return domain.LeagueConfig{
		LeagueID:        "default",
		NumTeams:        12,
		RosterSize:      25,
		CapMode:         domain.CapModeSingle,
		DraftCap:        260,
		TotalCap:        260,
		MinSalary:       1,
		SalaryIncrement: 1,
		RookiePrice:     1,
		HittingCategories: []string{
			domain.StatRuns, domain.StatHomeRuns, domain.StatRBI,
			domain.StatStolenBases, domain.StatAverage, domain.StatOPS,
		},
		PitchingCategories: []string{
			domain.StatWins, domain.StatQualityStart, domain.StatSaves,
			domain.StatStrikeouts, domain.StatERA, domain.StatWHIP,
		},
		PositionSlots: map[string]int{
			domain.PosCatcher:    2,
			domain.PosFirstBase:  1,
			domain.PosSecondBase: 1,
			domain.PosThirdBase:  1,
			domain.PosShortstop:  1,
			domain.PosOutfield:   5,
			domain.PosDesignated: 1,
			domain.PosStarter:    6,
			domain.PosReliever:   3,
			domain.PosCloser:     2,
		},
		DraftCapUsageTarget:    0.75,
		MinValuePlayersPercent: 0.2,
		MaxPlayerPercentOfCap:  0.25,
		TierBands:              domain.DefaultTierBands(),
	}
}

// LoadLeague reads and validates a league TOML file.
func LoadLeague(path string) (*domain.LeagueConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open league config: %w", err)
	}
	cfg, err := DecodeLeague(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("league config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeLeague decodes a league from TOML. Keys absent from the document
// take DefaultLeague values; present keys are validated as given.
// Unknown keys are rejected.
func DecodeLeague(r io.Reader) (*domain.LeagueConfig, error) {
	return decodeLeague(func(f *LeagueFile) error {
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		return nil
	})
}

// DecodeLeagueJSON is DecodeLeague for JSON documents with the same keys.
func DecodeLeagueJSON(data []byte) (*domain.LeagueConfig, error) {
	return decodeLeague(func(f *LeagueFile) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
		return nil
	})
}

func decodeLeague(decode func(*LeagueFile) error) (*domain.LeagueConfig, error) {
	file := NewLeagueFile(DefaultLeague())
	// Collections are replaced wholesale, never merged with defaults.
	file.HittingCategories = nil
	file.PitchingCategories = nil
	file.PositionSlots = nil
	file.Tiers = nil

	if err := decode(&file); err != nil {
		return nil, err
	}

	defaults := DefaultLeague()
	if file.HittingCategories == nil && file.PitchingCategories == nil {
		file.HittingCategories = defaults.HittingCategories
		file.PitchingCategories = defaults.PitchingCategories
	}
	if file.PositionSlots == nil {
		file.PositionSlots = defaults.PositionSlots
	}

	cfg := file.League()
	if err := valuation.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EncodeLeague writes cfg as TOML.
func EncodeLeague(w io.Writer, cfg domain.LeagueConfig) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(NewLeagueFile(cfg))
}

// League converts the file layout to a league configuration.
func (f LeagueFile) League() domain.LeagueConfig {
	cfg := domain.LeagueConfig{
		LeagueID:               f.LeagueID,
		NumTeams:               f.NumTeams,
		RosterSize:             f.RosterSize,
		CapMode:                domain.CapMode(f.CapMode),
		DraftCap:               f.DraftCap,
		SeasonCap:              f.SeasonCap,
		TotalCap:               f.TotalCap,
		MinSalary:              f.MinSalary,
		SalaryIncrement:        f.SalaryIncrement,
		RookiePrice:            f.RookiePrice,
		HittingCategories:      f.HittingCategories,
		PitchingCategories:     f.PitchingCategories,
		PositionSlots:          f.PositionSlots,
		DraftCapUsageTarget:    f.DraftCapUsageTarget,
		MinValuePlayersPercent: f.MinValuePlayersPercent,
		MaxPlayerPercentOfCap:  f.MaxPlayerPercentOfCap,
	}
	for _, t := range f.Tiers {
		cfg.TierBands = append(cfg.TierBands, domain.TierBand{
			Name:      t.Name,
			FromRank:  t.FromRank,
			ToRank:    t.ToRank,
			PoolShare: t.PoolShare,
		})
	}
	return cfg.Clone()
}

// NewLeagueFile converts cfg to the file layout.
func NewLeagueFile(cfg domain.LeagueConfig) LeagueFile {
	f := LeagueFile{
		LeagueID:               cfg.LeagueID,
		NumTeams:               cfg.NumTeams,
		RosterSize:             cfg.RosterSize,
		CapMode:                string(cfg.CapMode),
		DraftCap:               cfg.DraftCap,
		SeasonCap:              cfg.SeasonCap,
		TotalCap:               cfg.TotalCap,
		MinSalary:              cfg.MinSalary,
		SalaryIncrement:        cfg.SalaryIncrement,
		RookiePrice:            cfg.RookiePrice,
		DraftCapUsageTarget:    cfg.DraftCapUsageTarget,
		MinValuePlayersPercent: cfg.MinValuePlayersPercent,
		MaxPlayerPercentOfCap:  cfg.MaxPlayerPercentOfCap,
		HittingCategories:      cfg.HittingCategories,
		PitchingCategories:     cfg.PitchingCategories,
		PositionSlots:          cfg.PositionSlots,
	}
	for _, b := range cfg.TierBands {
		f.Tiers = append(f.Tiers, TierFile{
			Name:      b.Name,
			FromRank:  b.FromRank,
			ToRank:    b.ToRank,
			PoolShare: b.PoolShare,
		})
	}
	return f
}
