// Package orchestrator provides store-backed pricing runs.
// It coordinates: load league + pool → price → persist run → salary history → publish
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/idhash"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/storage"
	"fantasy-pricing-lab/internal/valuation"
)

// ErrEmptyPool is returned when a league has no stored players for the season.
var ErrEmptyPool = errors.New("player pool is empty")

// Publisher receives every newly persisted run.
type Publisher interface {
	PublishRun(run *domain.PricingRun)
}

// Orchestrator coordinates the store-backed pricing flow.
// Flow: load → price → persist → history → publish
type Orchestrator struct {
	// Stores
	leagueStore        storage.LeagueStore
	playerStore        storage.PlayerStore
	pricingRunStore    storage.PricingRunStore
	salaryHistoryStore storage.SalaryHistoryStore

	engine    *valuation.Engine
	publisher Publisher
	metrics   *observability.Metrics
	clock     func() time.Time
	logger    *log.Logger

	// Options
	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	LeagueStore     storage.LeagueStore
	PlayerStore     storage.PlayerStore
	PricingRunStore storage.PricingRunStore

	// Optional analytics store; nil skips salary history
	SalaryHistoryStore storage.SalaryHistoryStore

	Engine    *valuation.Engine      // nil = engine with default options
	Publisher Publisher              // nil = no publishing
	Metrics   *observability.Metrics // nil = observability.DefaultMetrics
	Clock     func() time.Time       // nil = time.Now
	Logger    *log.Logger            // nil = log.Default()
	Verbose   bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = valuation.NewEngine(valuation.Options{Logger: logger})
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		leagueStore:        opts.LeagueStore,
		playerStore:        opts.PlayerStore,
		pricingRunStore:    opts.PricingRunStore,
		salaryHistoryStore: opts.SalaryHistoryStore,
		engine:             engine,
		publisher:          opts.Publisher,
		metrics:            metrics,
		clock:              clock,
		logger:             logger,
		verbose:            opts.Verbose,
	}
}

// RunResult contains the outcome of pricing one league season.
type RunResult struct {
	Run           *domain.PricingRun
	AlreadyPriced bool // an identical run was already stored; nothing was written
	SalaryPoints  int  // salary history points written
}

// Run prices one league season from the stores.
// Phases:
//  1. Load league and pool
//  2. Price
//  3. Persist the run (idempotent on run id)
//  4. Append salary history (resumed when a stored run has none)
//  5. Publish
func (o *Orchestrator) Run(ctx context.Context, leagueID string, season domain.SeasonContext) (*RunResult, error) {
	start := o.clock()

	// Phase 1: Load
	o.log("Phase 1: Loading league %s season %d...", leagueID, season.Year)
	cfg, err := o.leagueStore.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load league %s) failed: %w", leagueID, err)
	}
	pool, err := o.playerStore.GetPool(ctx, leagueID, season.Year)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load pool) failed: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("league %s season %d: %w", leagueID, season.Year, ErrEmptyPool)
	}
	o.log("  Found %d players", len(pool))

	// Phase 2: Price
	o.log("Phase 2: Pricing...")
	outcome, err := o.engine.Evaluate(pool, *cfg, season)
	if err != nil {
		status := observability.StatusError
		if errors.Is(err, valuation.ErrInvalidConfiguration) {
			status = observability.StatusInvalidConfig
		}
		o.metrics.RecordPricingRun(status, o.clock().Sub(start), observability.PricingStats{LeagueID: leagueID})
		return nil, fmt.Errorf("phase 2 (pricing) failed: %w", err)
	}

	dataVersion := idhash.ComputeDataVersion(pool, *cfg)
	run := &domain.PricingRun{
		RunID:       idhash.ComputeRunID(leagueID, season.Year, dataVersion),
		LeagueID:    leagueID,
		Season:      season.Year,
		DataVersion: dataVersion,
		CreatedAt:   o.clock().UnixMilli(),
		Result:      *outcome.Result,
	}

	// Phase 3: Persist
	o.log("Phase 3: Persisting run %s...", run.RunID)
	if err := o.pricingRunStore.Insert(ctx, run); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("phase 3 (persist run) failed: %w", err)
		}
		existing, err := o.pricingRunStore.GetByID(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("phase 3 (load existing run %s) failed: %w", run.RunID, err)
		}
		complete, err := o.historyComplete(ctx, existing)
		if err != nil {
			return nil, fmt.Errorf("phase 3 (check history of %s) failed: %w", run.RunID, err)
		}
		if complete {
			o.log("  Run %s already stored, skipping", run.RunID)
			o.metrics.RecordPricingRun(observability.StatusAlreadyPriced, o.clock().Sub(start), observability.PricingStats{LeagueID: leagueID})
			return &RunResult{Run: existing, AlreadyPriced: true}, nil
		}
		// An earlier attempt stopped after phase 3; finish it.
		o.log("  Run %s stored without salary history, resuming", run.RunID)
		run = existing
	}

	result := &RunResult{Run: run}

	// Phase 4: Salary history
	if o.salaryHistoryStore != nil {
		o.log("Phase 4: Appending salary history...")
		points := SalaryPoints(run)
		if err := o.salaryHistoryStore.InsertBulk(ctx, points); err != nil {
			return nil, fmt.Errorf("phase 4 (salary history) failed: %w", err)
		}
		result.SalaryPoints = len(points)
	} else {
		o.log("Phase 4: Skipping salary history (no store)")
	}

	// Phase 5: Publish
	if o.publisher != nil {
		o.publisher.PublishRun(run)
	}

	summary := run.Result.Summary
	o.metrics.RecordPricingRun(observability.StatusSuccess, o.clock().Sub(start), observability.PricingStats{
		LeagueID: leagueID,
		Players:  summary.TotalPlayers,
		Rookies:  summary.RookieCount,
		Warnings: summary.WarningCount,
		Money:    summary.TotalMoney,
	})

	o.log("Run completed: %s, %d players, $%d", run.RunID, summary.TotalPlayers, summary.TotalMoney)
	return result, nil
}

// BatchResult contains results from pricing every stored league.
type BatchResult struct {
	LeaguesProcessed int
	RunsCreated      int
	AlreadyPriced    int
	Skipped          int // leagues without a pool for the season
	Errors           []string
}

// RunAll prices every stored league for season. Per-league failures are
// collected, not fatal.
func (o *Orchestrator) RunAll(ctx context.Context, season domain.SeasonContext) (*BatchResult, error) {
	leagues, err := o.leagueStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	batch := &BatchResult{LeaguesProcessed: len(leagues)}
	for _, cfg := range leagues {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		res, err := o.Run(ctx, cfg.LeagueID, season)
		if err != nil {
			if errors.Is(err, ErrEmptyPool) {
				batch.Skipped++
				continue
			}
			batch.Errors = append(batch.Errors, fmt.Sprintf("price %s/%d: %v", cfg.LeagueID, season.Year, err))
			continue
		}
		if res.AlreadyPriced {
			batch.AlreadyPriced++
			continue
		}
		batch.RunsCreated++
	}

	o.log("Batch completed: %d leagues, %d runs, %d already priced, %d skipped (%d errors)",
		batch.LeaguesProcessed, batch.RunsCreated, batch.AlreadyPriced, batch.Skipped, len(batch.Errors))
	return batch, nil
}

// historyComplete reports whether phase 4 already ran for a stored run.
// Runs without priced players and setups without a history store have
// nothing to write.
func (o *Orchestrator) historyComplete(ctx context.Context, run *domain.PricingRun) (bool, error) {
	if o.salaryHistoryStore == nil || len(run.Result.Prices) == 0 {
		return true, nil
	}
	points, err := o.salaryHistoryStore.GetByRun(ctx, run.RunID)
	if err != nil {
		return false, err
	}
	return len(points) > 0, nil
}

// SalaryPoints flattens a run into one salary history point per priced player.
func SalaryPoints(run *domain.PricingRun) []domain.SalaryPoint {
	points := make([]domain.SalaryPoint, len(run.Result.Prices))
	for i, p := range run.Result.Prices {
		points[i] = domain.SalaryPoint{
			RunID:       run.RunID,
			LeagueID:    run.LeagueID,
			Season:      run.Season,
			PlayerID:    p.PlayerID,
			Position:    p.Position,
			Salary:      p.Salary,
			ImpactScore: p.ImpactScore,
			Tier:        p.Tier,
			IsRookie:    p.IsRookie,
			CreatedAt:   run.CreatedAt,
		}
	}
	return points
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
