package pipeline

import (
	"strconv"
	"strings"
	"testing"

	"fantasy-pricing-lab/internal/fixtures"
	"fantasy-pricing-lab/internal/normalization"
)

func newChecker() *SufficiencyChecker {
	return NewSufficiencyChecker(normalization.DefaultThresholds())
}

func findCheck(t *testing.T, result *SufficiencyResult, name string) SufficiencyCheck {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return SufficiencyCheck{}
}

func TestSufficiencyChecker_SyntheticPoolPasses(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	result := newChecker().Check(pool, fixtures.StandardLeague())

	if !result.AllPass {
		t.Fatalf("expected all checks to pass, failed: %v, errors: %v", result.FailedChecks(), result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
	// duplicates + pool size + 10 positions + categories
	if len(result.Checks) != 13 {
		t.Errorf("expected 13 checks, got %d", len(result.Checks))
	}
}

func TestSufficiencyChecker_DuplicatePlayers(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	pool = append(pool, pool[0], pool[0])

	result := newChecker().Check(pool, fixtures.StandardLeague())

	check := findCheck(t, result, "Duplicate player ids")
	if check.Pass {
		t.Error("expected duplicate check to fail")
	}
	if result.AllPass {
		t.Error("expected AllPass=false")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "appears 3 times") {
		t.Errorf("expected duplicate error, got %v", result.Errors)
	}
}

func TestSufficiencyChecker_SmallPool(t *testing.T) {
	opts := fixtures.DefaultSyntheticOptions()
	opts.Hitters = 40
	opts.Starters = 20
	opts.Relievers = 10
	opts.Closers = 3
	opts.Rookies = 0
	pool := fixtures.SyntheticPool(opts)

	result := newChecker().Check(pool, fixtures.StandardLeague())

	size := findCheck(t, result, "Player pool size")
	if size.Pass {
		t.Errorf("expected pool size check to fail with %s players", size.Actual)
	}
	if size.Threshold != ">= 300" {
		t.Errorf("expected threshold >= 300, got %s", size.Threshold)
	}

	sp := findCheck(t, result, "Supply at SP")
	if sp.Pass {
		t.Error("expected SP supply check to fail")
	}
	if sp.Threshold != ">= 72" {
		t.Errorf("expected SP threshold >= 72, got %s", sp.Threshold)
	}

	failed := result.FailedChecks()
	if len(failed) < 2 {
		t.Errorf("expected at least 2 failed checks, got %v", failed)
	}
}

func TestSufficiencyChecker_DHCountsAllHitters(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	result := newChecker().Check(pool, fixtures.StandardLeague())

	hitters := 0
	for _, p := range pool {
		if !p.IsPitcher && !p.Current.IsEmpty() {
			hitters++
		}
	}

	dh := findCheck(t, result, "Supply at DH")
	if got, _ := strconv.Atoi(dh.Actual); got < hitters {
		t.Errorf("expected DH supply >= %d hitters with current stats, got %s", hitters, dh.Actual)
	}
}

func TestSufficiencyChecker_MissingCategoryContributors(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	cfg := fixtures.StandardLeague()
	cfg.HittingCategories = append(cfg.HittingCategories, "made_up_stat")

	result := newChecker().Check(pool, cfg)

	check := findCheck(t, result, "Category contributors")
	if check.Pass {
		t.Error("expected category check to fail")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "made_up_stat") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected error naming made_up_stat, got %v", result.Errors)
	}
}

func TestSufficiencyChecker_EmptyPool(t *testing.T) {
	result := newChecker().Check(nil, fixtures.StandardLeague())

	if result.AllPass {
		t.Error("expected empty pool to fail")
	}
	if check := findCheck(t, result, "Duplicate player ids"); !check.Pass {
		t.Error("expected duplicate check to pass on empty pool")
	}
}

func TestSufficiencyResult_Summary(t *testing.T) {
	result := &SufficiencyResult{
		Checks: []SufficiencyCheck{
			{Name: "a", Pass: true},
			{Name: "b", Pass: false},
		},
	}
	failed := result.FailedChecks()
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("expected one failed check b, got %v", failed)
	}
	if result.Summary() == "" {
		t.Error("expected non-empty summary")
	}
}
