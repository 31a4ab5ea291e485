package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/fixtures"
	"fantasy-pricing-lab/internal/idhash"
	"fantasy-pricing-lab/internal/normalization"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/valuation"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPipeline(outputDir string) *PricingPipeline {
	logger := log.New(io.Discard, "", 0)
	engine := valuation.NewEngine(valuation.Options{Logger: logger})
	return NewPricingPipeline(engine, outputDir).
		WithClock(func() time.Time { return fixedTime }).
		WithLogger(logger).
		WithSufficiencyChecker(NewSufficiencyChecker(normalization.DefaultThresholds())).
		WithDataSource("fixtures")
}

func TestPricingPipeline_Run(t *testing.T) {
	dir := t.TempDir()
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	cfg := fixtures.StandardLeague()

	out, err := newTestPipeline(dir).Run(context.Background(), pool, cfg, FixtureSeason)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(out.Files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(out.Files))
	}
	for _, name := range []string{ReportFile, PricesCSVFile, CategoriesFile, ResultJSONFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	wantVersion := idhash.ComputeDataVersion(pool, cfg)
	if out.Run.DataVersion != wantVersion {
		t.Errorf("expected data version %s, got %s", wantVersion, out.Run.DataVersion)
	}
	if out.Run.RunID != idhash.ComputeRunID(cfg.LeagueID, FixtureSeason.Year, wantVersion) {
		t.Errorf("unexpected run id %s", out.Run.RunID)
	}
	if out.Run.CreatedAt != fixedTime.UnixMilli() {
		t.Errorf("expected created_at %d, got %d", fixedTime.UnixMilli(), out.Run.CreatedAt)
	}
	if out.Sufficiency == nil || !out.Sufficiency.AllPass {
		t.Errorf("expected passing sufficiency, got %+v", out.Sufficiency)
	}
	if !out.Report.DataQuality.AllChecksPassed {
		t.Error("expected report data quality to pass")
	}
	if out.Report.Reproducibility.ReplayCommand != "go run ./cmd/price --use-fixtures" {
		t.Errorf("unexpected replay command %q", out.Report.Reproducibility.ReplayCommand)
	}
}

func TestPricingPipeline_RecordsSufficiencyFailures(t *testing.T) {
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	cfg := fixtures.StandardLeague()
	cfg.RosterSize = 1000 // demand far above the synthetic pool

	out, err := newTestPipeline("").WithMetrics(metrics).
		Run(context.Background(), fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions()), cfg, FixtureSeason)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	failed := out.Sufficiency.FailedChecks()
	if len(failed) == 0 {
		t.Fatal("expected the pool size check to fail")
	}
	if got := testutil.ToFloat64(metrics.SufficiencyFailed.WithLabelValues("Player pool size")); got != 1 {
		t.Errorf("expected 1 pool size failure recorded, got %v", got)
	}
	for _, c := range out.Sufficiency.Checks {
		want := 0.0
		if !c.Pass {
			want = 1
		}
		if got := testutil.ToFloat64(metrics.SufficiencyFailed.WithLabelValues(c.Name)); got != want {
			t.Errorf("%s: recorded %v, want %v", c.Name, got, want)
		}
	}
}

func TestPricingPipeline_OutputContents(t *testing.T) {
	dir := t.TempDir()
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())

	out, err := newTestPipeline(dir).Run(context.Background(), pool, fixtures.StandardLeague(), FixtureSeason)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(md), out.Run.RunID) {
		t.Error("expected report to contain the run id")
	}

	f, err := os.Open(filepath.Join(dir, PricesCSVFile))
	if err != nil {
		t.Fatalf("open prices: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse prices: %v", err)
	}
	if len(rows)-1 != len(out.Outcome.Result.Prices) {
		t.Errorf("expected %d price rows, got %d", len(out.Outcome.Result.Prices), len(rows)-1)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ResultJSONFile))
	if err != nil {
		t.Fatalf("read result json: %v", err)
	}
	var decoded domain.PricingResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode result json: %v", err)
	}
	if decoded.Summary.TotalMoney != out.Outcome.Result.Summary.TotalMoney {
		t.Errorf("expected total money %d, got %d", out.Outcome.Result.Summary.TotalMoney, decoded.Summary.TotalMoney)
	}
}

func TestPricingPipeline_Deterministic(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
	cfg := fixtures.StandardLeague()

	dirA, dirB := t.TempDir(), t.TempDir()
	if _, err := newTestPipeline(dirA).Run(context.Background(), pool, cfg, FixtureSeason); err != nil {
		t.Fatalf("run A: %v", err)
	}
	if _, err := newTestPipeline(dirB).Run(context.Background(), pool, cfg, FixtureSeason); err != nil {
		t.Fatalf("run B: %v", err)
	}

	for _, name := range []string{ReportFile, PricesCSVFile, CategoriesFile, ResultJSONFile} {
		a, _ := os.ReadFile(filepath.Join(dirA, name))
		b, _ := os.ReadFile(filepath.Join(dirB, name))
		if string(a) != string(b) {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}

func TestPricingPipeline_NoOutputDir(t *testing.T) {
	pool := fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())

	out, err := newTestPipeline("").Run(context.Background(), pool, fixtures.StandardLeague(), FixtureSeason)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out.Files) != 0 {
		t.Errorf("expected no files, got %v", out.Files)
	}
	if out.Report == nil {
		t.Error("expected report to be built")
	}
}

func TestPricingPipeline_InvalidLeague(t *testing.T) {
	cfg := fixtures.StandardLeague()
	cfg.NumTeams = 0

	_, err := newTestPipeline(t.TempDir()).Run(context.Background(), fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions()), cfg, FixtureSeason)
	if !errors.Is(err, valuation.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestPricingPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(t.TempDir()).Run(ctx, fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions()), fixtures.StandardLeague(), FixtureSeason)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildReplayCommand_Feed(t *testing.T) {
	p := NewPricingPipeline(nil, "").WithFeedSource("data/players.json", "configs/league.toml")
	want := `go run ./cmd/price --feed "data/players.json" --league "configs/league.toml"`
	if got := p.buildReplayCommand(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
