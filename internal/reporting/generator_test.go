package reporting

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/valuation"
)

func testLeague() domain.LeagueConfig {
	return domain.LeagueConfig{
		LeagueID:            "league-1",
		NumTeams:            2,
		RosterSize:          3,
		CapMode:             domain.CapModeSingle,
		DraftCap:            100,
		TotalCap:            100,
		MinSalary:           1,
		SalaryIncrement:     1,
		DraftCapUsageTarget: 0.75,
		PositionSlots:       map[string]int{"C": 1, "SP": 2},
		TierBands: []domain.TierBand{
			{Name: "top", FromRank: 1, ToRank: 2, PoolShare: 0.6},
			{Name: "rest", FromRank: 3, PoolShare: 0.4},
		},
		MaxPlayerPercentOfCap: 0.5,
	}
}

func testResult() *domain.PricingResult {
	return &domain.PricingResult{
		Season: domain.SeasonContext{Year: 2025, Label: "preseason"},
		Prices: []domain.PricedPlayer{
			{PlayerID: "c1", PlayerName: "Catcher, Jr.", Position: "C", Salary: 40, Tier: "top", ImpactScore: 5},
			{PlayerID: "sp1", PlayerName: "Ace", Position: "SP", Salary: 30, Tier: "top", ImpactScore: 4},
			{PlayerID: "two", PlayerName: "Two Way", Position: "C/SP", Salary: 10, Tier: "rest", ImpactScore: 2},
			{PlayerID: "sp2", PlayerName: "Depth", Position: "SP", Salary: 1, Tier: "rest"},
			{PlayerID: "rk1", PlayerName: "Rookie", Position: "SS", Salary: 1, Tier: domain.TierRookie, IsRookie: true},
		},
		Summary:  domain.SummaryReport{TotalPlayers: 5, TotalMoney: 82},
		Warnings: []string{"pitcher category sv has 1 contributing players"},
		Success:  true,
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_Generate(t *testing.T) {
	diag := &Diagnostics{
		ReplacementLevels: map[string]float64{"C": 0.5, "SP": 1.25},
		ScarcityFactors:   map[string]float64{"C": 1.15, "SP": 1.0},
		Viability:         valuation.ViabilityReport{Trimmed: 3, FloorQuota: 1},
		Relevant:          4,
	}

	r := NewGenerator().WithClock(fixedClock).Generate(testResult(), testLeague(), diag)

	if !r.GeneratedAt.Equal(fixedClock()) {
		t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, fixedClock())
	}
	if r.League.BudgetCeiling != 150 {
		t.Errorf("BudgetCeiling = %d, want 150", r.League.BudgetCeiling)
	}
	if r.League.MaxSalary != 50 {
		t.Errorf("MaxSalary = %d, want 50", r.League.MaxSalary)
	}
	if r.League.RelevantPlayers != 4 {
		t.Errorf("RelevantPlayers = %d, want 4", r.League.RelevantPlayers)
	}
	if r.Viability.Trimmed != 3 {
		t.Errorf("Viability.Trimmed = %d, want 3", r.Viability.Trimmed)
	}

	// Positions: C (c1 + two-way primary), SP (sp1, sp2). Rookies excluded.
	if len(r.Positions) != 2 {
		t.Fatalf("Positions len = %d, want 2: %+v", len(r.Positions), r.Positions)
	}
	c := r.Positions[0]
	if c.Position != "C" || c.Priced != 2 || c.AvgSalary != 25 || c.MaxSalary != 40 || c.Demand != 2 {
		t.Errorf("C row = %+v", c)
	}
	if c.ReplacementLevel != 0.5 || c.ScarcityFactor != 1.15 {
		t.Errorf("C diagnostics = %+v", c)
	}
	sp := r.Positions[1]
	if sp.Position != "SP" || sp.Priced != 2 || sp.AvgSalary != 15.5 || sp.Demand != 4 {
		t.Errorf("SP row = %+v", sp)
	}

	// Tiers in band order with rookie last
	wantTiers := []TierRow{
		{Tier: "top", Players: 2, Money: 70, MinSalary: 30, MaxSalary: 40},
		{Tier: "rest", Players: 2, Money: 11, MinSalary: 1, MaxSalary: 10},
		{Tier: domain.TierRookie, Players: 1, Money: 1, MinSalary: 1, MaxSalary: 1},
	}
	if len(r.Tiers) != len(wantTiers) {
		t.Fatalf("Tiers len = %d, want %d", len(r.Tiers), len(wantTiers))
	}
	for i, want := range wantTiers {
		if r.Tiers[i] != want {
			t.Errorf("Tiers[%d] = %+v, want %+v", i, r.Tiers[i], want)
		}
	}

	// Percentiles over [1, 10, 30, 40]
	if r.Percentiles.P50 != 20 {
		t.Errorf("P50 = %v, want 20", r.Percentiles.P50)
	}
	if len(r.TopPlayers) != 5 || r.TopPlayers[0].PlayerID != "c1" {
		t.Errorf("TopPlayers = %+v", r.TopPlayers)
	}
}

func TestGenerator_WithoutDiagnostics(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).WithTopPlayers(2).Generate(testResult(), testLeague(), nil)

	if len(r.TopPlayers) != 2 {
		t.Errorf("TopPlayers len = %d, want 2", len(r.TopPlayers))
	}
	if r.Positions[0].ReplacementLevel != 0 {
		t.Errorf("expected no replacement level without diagnostics")
	}
	if r.Viability.Rescaled || r.League.RelevantPlayers != 0 {
		t.Errorf("expected empty viability without diagnostics")
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(testResult(), testLeague(), nil)
	r.DataQuality = DataQualitySection{
		SufficiencyChecks: []SufficiencyCheckRow{
			{Name: "Player pool size", Threshold: ">= 6", Actual: "5", Pass: false},
		},
		IntegrityErrors: []string{"duplicate player id sp1"},
	}
	r.Reproducibility = ReproducibilityMetadata{
		ReportTimestamp:  fixedClock(),
		GeneratorVersion: GeneratorVersion,
		RunID:            "run123",
		DataVersion:      "dv456",
		ReplayCommand:    "go run ./cmd/price --use-fixtures",
	}

	md := RenderMarkdown(r)

	for _, want := range []string{
		"# Pricing Report",
		"League: league-1 | Season: 2025 (preseason)",
		"| Player pool size | >= 6 | 5 | FAIL |",
		"**Some checks failed.**",
		"- duplicate player id sp1",
		"| top | 2 | 70 | 30 | 40 |",
		"| 1 | Catcher, Jr. | C | ",
		"## Warnings",
		"| Run ID | run123 |",
		"`go run ./cmd/price --use-fixtures`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderPricesCSV(t *testing.T) {
	prices := testResult().Prices
	prices[0].Stats = map[string]float64{domain.StatHomeRuns: 30, "zz_extra": 1}
	prices[1].Stats = map[string]float64{domain.StatERA: 2.85}

	out := RenderPricesCSV(prices)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != len(prices)+1 {
		t.Fatalf("rows = %d, want %d", len(records), len(prices)+1)
	}

	header := records[0]
	wantTail := []string{domain.StatHomeRuns, domain.StatERA, "zz_extra"}
	tail := header[len(PriceColumns):]
	if strings.Join(tail, ",") != strings.Join(wantTail, ",") {
		t.Errorf("stat columns = %v, want %v", tail, wantTail)
	}

	if records[1][1] != "Catcher, Jr." {
		t.Errorf("player name = %q, want quoted comma preserved", records[1][1])
	}
	if records[1][len(PriceColumns)] != "30" {
		t.Errorf("hr = %q, want 30", records[1][len(PriceColumns)])
	}
	if records[2][len(PriceColumns)] != "" {
		t.Errorf("missing stat should render empty, got %q", records[2][len(PriceColumns)])
	}
}

func TestRenderCategoriesCSV(t *testing.T) {
	out := RenderCategoriesCSV([]domain.CategoryStatistic{
		{Role: domain.RoleHitter, Category: "hr", Mean: 20, StdDev: 5, Min: 5, Max: 40, Count: 10},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[1] != "hitter,hr,10,20.000000,5.000000,5.000000,40.000000" {
		t.Errorf("row = %q", lines[1])
	}
}
