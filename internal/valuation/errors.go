package valuation

import (
	"errors"
	"fmt"
	"math"

	"fantasy-pricing-lab/internal/domain"
)

// ErrInvalidConfiguration is the sentinel behind every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid league configuration")

// ConfigurationError reports one rejected configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// knownPositions is the normalized position vocabulary accepted in PositionSlots.
var knownPositions = map[string]bool{
	domain.PosCatcher:    true,
	domain.PosFirstBase:  true,
	domain.PosSecondBase: true,
	domain.PosThirdBase:  true,
	domain.PosShortstop:  true,
	domain.PosOutfield:   true,
	domain.PosDesignated: true,
	domain.PosStarter:    true,
	domain.PosReliever:   true,
	domain.PosCloser:     true,
}

// ValidateConfig rejects a configuration the engine cannot price against.
// Nothing is defaulted: the first invalid field is reported.
func ValidateConfig(cfg domain.LeagueConfig) error {
	switch {
	case cfg.NumTeams <= 0:
		return configErr("num_teams", "must be positive, got %d", cfg.NumTeams)
	case cfg.RosterSize <= 0:
		return configErr("roster_size", "must be positive, got %d", cfg.RosterSize)
	case !cfg.CapMode.IsValid():
		return configErr("cap_mode", "unknown mode %q", cfg.CapMode)
	case cfg.DraftCap <= 0:
		return configErr("draft_cap", "must be positive, got %d", cfg.DraftCap)
	case cfg.SeasonCap < 0:
		return configErr("season_cap", "must not be negative, got %d", cfg.SeasonCap)
	}

	wantTotal := cfg.DraftCap
	if cfg.CapMode == domain.CapModeDual {
		wantTotal = cfg.DraftCap + cfg.SeasonCap
	} else if cfg.SeasonCap != 0 {
		return configErr("season_cap", "only allowed in dual cap mode")
	}
	if cfg.TotalCap != wantTotal {
		return configErr("total_cap", "must be %d for %s mode, got %d", wantTotal, cfg.CapMode, cfg.TotalCap)
	}

	switch {
	case cfg.SalaryIncrement <= 0:
		return configErr("salary_increment", "must be positive, got %d", cfg.SalaryIncrement)
	case cfg.MinSalary <= 0:
		return configErr("min_salary", "must be positive, got %d", cfg.MinSalary)
	case cfg.MinSalary%cfg.SalaryIncrement != 0:
		return configErr("min_salary", "must be a multiple of salary_increment %d", cfg.SalaryIncrement)
	case cfg.RookiePrice < 0:
		return configErr("rookie_price", "must not be negative, got %d", cfg.RookiePrice)
	}

	if err := checkFraction("draft_cap_usage_target", cfg.DraftCapUsageTarget, false); err != nil {
		return err
	}
	if err := checkFraction("max_player_percent_of_cap", cfg.MaxPlayerPercentOfCap, false); err != nil {
		return err
	}
	if err := checkFraction("min_value_players_percent", cfg.MinValuePlayersPercent, true); err != nil {
		return err
	}
	if ceiling := maxSalary(cfg); ceiling < cfg.MinSalary {
		return configErr("max_player_percent_of_cap", "salary ceiling %d is below min_salary %d", ceiling, cfg.MinSalary)
	}

	if len(cfg.HittingCategories)+len(cfg.PitchingCategories) == 0 {
		return configErr("categories", "at least one scoring category is required")
	}
	for _, field := range []struct {
		name string
		cats []string
	}{
		{"hitting_categories", cfg.HittingCategories},
		{"pitching_categories", cfg.PitchingCategories},
	} {
		seen := make(map[string]bool, len(field.cats))
		for _, c := range field.cats {
			if c == "" {
				return configErr(field.name, "empty category key")
			}
			if seen[c] {
				return configErr(field.name, "duplicate category %q", c)
			}
			seen[c] = true
		}
	}

	required := 0
	for pos, slots := range cfg.PositionSlots {
		if !knownPositions[pos] {
			return configErr("position_slots", "unknown position %q", pos)
		}
		if slots < 0 {
			return configErr("position_slots", "%s slots must not be negative", pos)
		}
		required += slots
	}
	if required == 0 {
		return configErr("position_slots", "at least one required slot is needed")
	}
	if required > cfg.RosterSize {
		return configErr("position_slots", "%d required slots exceed roster_size %d", required, cfg.RosterSize)
	}

	return validateBands(cfg.TierBands)
}

func checkFraction(field string, v float64, allowZero bool) error {
	if math.IsNaN(v) || v > 1 || v < 0 || (!allowZero && v == 0) {
		return configErr(field, "must be within (0, 1], got %v", v)
	}
	if allowZero && v == 1 {
		return configErr(field, "must be within [0, 1), got %v", v)
	}
	return nil
}

// validateBands checks caller-supplied bands. Empty means defaults.
func validateBands(bands []domain.TierBand) error {
	if len(bands) == 0 {
		return nil
	}
	next := 1
	total := 0.0
	for i, b := range bands {
		field := fmt.Sprintf("tier_bands[%d]", i)
		switch {
		case b.Name == "":
			return configErr(field, "name is required")
		case b.FromRank != next:
			return configErr(field, "must start at rank %d, got %d", next, b.FromRank)
		case b.PoolShare < 0 || math.IsNaN(b.PoolShare):
			return configErr(field, "pool share must not be negative")
		}
		last := i == len(bands)-1
		if last && b.ToRank != 0 {
			return configErr(field, "last band must be open-ended")
		}
		if !last {
			if b.ToRank < b.FromRank {
				return configErr(field, "to_rank %d before from_rank %d", b.ToRank, b.FromRank)
			}
			next = b.ToRank + 1
		}
		total += b.PoolShare
	}
	if math.Abs(total-1) > 1e-6 {
		return configErr("tier_bands", "pool shares must sum to 1, got %v", total)
	}
	return nil
}
