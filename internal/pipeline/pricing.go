package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/idhash"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/reporting"
	"fantasy-pricing-lab/internal/valuation"
)

// Output file names written by PricingPipeline.Run.
const (
	ReportFile     = "PRICING_REPORT.md"
	PricesCSVFile  = "prices.csv"
	CategoriesFile = "categories.csv"
	ResultJSONFile = "pricing_result.json"
)

// PricingPipeline orchestrates sufficiency checks, pricing and report output
// for one pool.
type PricingPipeline struct {
	engine             *valuation.Engine
	reportGen          *reporting.Generator
	sufficiencyChecker *SufficiencyChecker
	outputDir          string
	clock              func() time.Time
	logger             *log.Logger
	metrics            *observability.Metrics
	dataSource         string // "fixtures" or "feed" for the replay command
	feedPath           string // for feed mode replay command
	leaguePath         string // for feed mode replay command
}

// Output is everything one pipeline run produced.
type Output struct {
	Run         *domain.PricingRun
	Outcome     *valuation.Outcome
	Sufficiency *SufficiencyResult // nil without a checker
	Report      *reporting.Report
	Files       []string // written paths
}

// NewPricingPipeline creates a new pipeline. An empty outputDir skips writing files.
func NewPricingPipeline(engine *valuation.Engine, outputDir string) *PricingPipeline {
	return &PricingPipeline{
		engine:    engine,
		reportGen: reporting.NewGenerator(),
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    log.Default(),
		metrics:   observability.DefaultMetrics,
	}
}

// WithMetrics records sufficiency findings and reports on m instead of the
// default registry.
func (p *PricingPipeline) WithMetrics(m *observability.Metrics) *PricingPipeline {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithSufficiencyChecker adds a sufficiency checker to the pipeline.
func (p *PricingPipeline) WithSufficiencyChecker(c *SufficiencyChecker) *PricingPipeline {
	p.sufficiencyChecker = c
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *PricingPipeline) WithClock(clock func() time.Time) *PricingPipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithLogger sets the logger for pipeline progress.
func (p *PricingPipeline) WithLogger(logger *log.Logger) *PricingPipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithDataSource sets the data source for reproducibility metadata.
// Use "fixtures" for fixture mode. For feed files, use WithFeedSource instead.
func (p *PricingPipeline) WithDataSource(source string) *PricingPipeline {
	p.dataSource = source
	return p
}

// WithFeedSource sets the data source to feed mode with the actual file paths.
func (p *PricingPipeline) WithFeedSource(feedPath, leaguePath string) *PricingPipeline {
	p.dataSource = "feed"
	p.feedPath = feedPath
	p.leaguePath = leaguePath
	return p
}

// Run prices pool and writes output files:
// - PRICING_REPORT.md
// - prices.csv
// - categories.csv
// - pricing_result.json
func (p *PricingPipeline) Run(ctx context.Context, pool []domain.PlayerRecord, cfg domain.LeagueConfig, season domain.SeasonContext) (*Output, error) {
	// 1. Sufficiency check FIRST (if configured); findings never block pricing
	var (
		suff        *SufficiencyResult
		dataQuality reporting.DataQualitySection
	)
	if p.sufficiencyChecker != nil {
		suff = p.sufficiencyChecker.Check(pool, cfg)
		dataQuality = convertToDataQuality(suff)
		p.logger.Printf("[pipeline] sufficiency: %s", suff.Summary())
		p.metrics.RecordSufficiencyFailures(suff.FailedChecks())
	}

	// 2. Price
	outcome, err := p.engine.Evaluate(pool, cfg, season)
	if err != nil {
		return nil, fmt.Errorf("price pool: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Identify the run
	dataVersion := idhash.ComputeDataVersion(pool, cfg)
	run := &domain.PricingRun{
		RunID:       idhash.ComputeRunID(cfg.LeagueID, season.Year, dataVersion),
		LeagueID:    cfg.LeagueID,
		Season:      season.Year,
		DataVersion: dataVersion,
		CreatedAt:   p.clock().UnixMilli(),
		Result:      *outcome.Result,
	}

	// 4. Report
	report := p.reportGen.Generate(outcome.Result, cfg, reporting.DiagnosticsFromOutcome(outcome))
	report.DataQuality = dataQuality
	report.Reproducibility = reporting.ReproducibilityMetadata{
		ReportTimestamp:  p.clock(),
		GeneratorVersion: reporting.GeneratorVersion,
		RunID:            run.RunID,
		DataVersion:      run.DataVersion,
		ReplayCommand:    p.buildReplayCommand(),
	}

	out := &Output{
		Run:         run,
		Outcome:     outcome,
		Sufficiency: suff,
		Report:      report,
	}

	if p.outputDir == "" {
		return out, nil
	}

	files, err := p.writeFiles(report, outcome.Result)
	if err != nil {
		return nil, err
	}
	out.Files = files
	p.metrics.ReportsGenerated.Inc()
	p.logger.Printf("[pipeline] run %s: %d players, $%d, wrote %d files to %s",
		run.RunID, outcome.Result.Summary.TotalPlayers, outcome.Result.Summary.TotalMoney, len(files), p.outputDir)

	return out, nil
}

func (p *PricingPipeline) writeFiles(report *reporting.Report, result *domain.PricingResult) ([]string, error) {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pricing result: %w", err)
	}

	outputs := []struct {
		name    string
		content []byte
	}{
		{ReportFile, []byte(reporting.RenderMarkdown(report))},
		{PricesCSVFile, []byte(reporting.RenderPricesCSV(result.Prices))},
		{CategoriesFile, []byte(reporting.RenderCategoriesCSV(result.Categories))},
		{ResultJSONFile, append(resultJSON, '\n')},
	}

	files := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(p.outputDir, o.name)
		if err := os.WriteFile(path, o.content, 0644); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// buildReplayCommand returns the command to reproduce this report.
func (p *PricingPipeline) buildReplayCommand() string {
	switch p.dataSource {
	case "feed":
		cmd := fmt.Sprintf("go run ./cmd/price --feed %q", p.feedPath)
		if p.leaguePath != "" {
			cmd += fmt.Sprintf(" --league %q", p.leaguePath)
		}
		return cmd
	default:
		return "go run ./cmd/price --use-fixtures"
	}
}

// convertToDataQuality converts SufficiencyResult to reporting.DataQualitySection.
func convertToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		IntegrityErrors:   result.Errors,
		AllChecksPassed:   result.AllPass,
	}
}
