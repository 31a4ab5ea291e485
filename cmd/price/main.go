// Package main prices one player pool and writes the report files:
// PRICING_REPORT.md, prices.csv, categories.csv and pricing_result.json.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fantasy-pricing-lab/internal/config"
	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/fixtures"
	"fantasy-pricing-lab/internal/ingestion"
	"fantasy-pricing-lab/internal/normalization"
	"fantasy-pricing-lab/internal/orchestrator"
	"fantasy-pricing-lab/internal/pipeline"
	"fantasy-pricing-lab/internal/storage"
	chstore "fantasy-pricing-lab/internal/storage/clickhouse"
	"fantasy-pricing-lab/internal/storage/migrations"
	pgstore "fantasy-pricing-lab/internal/storage/postgres"
	"fantasy-pricing-lab/internal/valuation"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading .env: %v\n", err)
		os.Exit(1)
	}

	useFixtures := flag.Bool("use-fixtures", false, "Price the synthetic demo pool instead of a feed")
	feedPath := flag.String("feed", config.GetEnv("PLAYER_FEED", ""), "Path to a JSON player feed")
	leaguePath := flag.String("league", config.GetEnv("LEAGUE_CONFIG", ""), "Path to a league TOML file (default: built-in 12-team 6x6)")
	season := flag.Int("season", config.GetEnvInt("SEASON", time.Now().Year()), "Season year of the current stat snapshot")
	outputDir := flag.String("output-dir", config.GetEnv("OUTPUT_DIR", "output"), "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", config.GetEnv("POSTGRES_DSN", ""), "PostgreSQL connection string; persists the run when set")
	clickhouseDSN := flag.String("clickhouse-dsn", config.GetEnv("CLICKHOUSE_DSN", ""), "ClickHouse connection string; records salary history when set")
	verbose := flag.Bool("verbose", config.GetEnvBool("VERBOSE", false), "Log pricing stages")
	flag.Parse()

	logger := log.New(os.Stderr, "[price] ", log.LstdFlags)

	if !*useFixtures && *feedPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --feed is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadLeague(*leaguePath, *useFixtures)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading league: %v\n", err)
		os.Exit(1)
	}

	var (
		pool      []domain.PlayerRecord
		seasonCtx = domain.SeasonContext{Year: *season}
	)
	if *useFixtures {
		pool = fixtures.SyntheticPool(fixtures.DefaultSyntheticOptions())
		seasonCtx = pipeline.FixtureSeason
	} else {
		raw, err := ingestion.LoadFeedFile(*feedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading feed: %v\n", err)
			os.Exit(1)
		}
		adapted := ingestion.NewAdapter(ingestion.AdapterOptions{Logger: logger}).WithScoring(*cfg).Adapt(raw)
		for _, w := range adapted.Warnings {
			logger.Printf("feed: %s", w)
		}
		pool = adapted.Players
	}

	engine := valuation.NewEngine(valuation.Options{Logger: logger, Verbose: *verbose})
	p := pipeline.NewPricingPipeline(engine, *outputDir).
		WithSufficiencyChecker(pipeline.NewSufficiencyChecker(normalization.DefaultThresholds())).
		WithLogger(logger)
	if *useFixtures {
		// Fixed clock for byte-identical demo output
		fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		p = p.WithDataSource("fixtures").WithClock(func() time.Time { return fixedTime })
	} else {
		p = p.WithFeedSource(*feedPath, *leaguePath)
	}

	out, err := p.Run(ctx, pool, *cfg, seasonCtx)
	if err != nil {
		var cfgErr *valuation.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Invalid league configuration: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error running pricing: %v\n", err)
		os.Exit(1)
	}

	if *postgresDSN != "" {
		if err := persist(ctx, *postgresDSN, *clickhouseDSN, cfg, pool, seasonCtx, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting run: %v\n", err)
			os.Exit(1)
		}
	}

	summary := out.Outcome.Result.Summary
	fmt.Printf("Priced %d players (%d rookies), $%d of $%d allocated\n",
		summary.TotalPlayers, summary.RookieCount, summary.TotalMoney, cfg.NumTeams*cfg.TotalCap)
	fmt.Printf("Run %s (data version %s)\n", out.Run.RunID, out.Run.DataVersion)
	if !out.Sufficiency.AllPass {
		fmt.Printf("Data sufficiency: %s\n", out.Sufficiency.Summary())
	}
	for _, f := range out.Files {
		fmt.Printf("  - %s\n", f)
	}
}

// loadLeague reads the league file, or falls back to the built-in league.
func loadLeague(path string, useFixtures bool) (*domain.LeagueConfig, error) {
	if path != "" {
		return config.LoadLeague(path)
	}
	cfg := config.DefaultLeague()
	if useFixtures {
		cfg.LeagueID = pipeline.FixtureLeagueID
	}
	return &cfg, nil
}

// persist stores the league, replaces its pool for the season and prices it
// through the orchestrator, so the run lands in the run store and salary
// history.
func persist(
	ctx context.Context,
	postgresDSN, clickhouseDSN string,
	cfg *domain.LeagueConfig,
	pool []domain.PlayerRecord,
	season domain.SeasonContext,
	logger *log.Logger,
) error {
	pgPool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pgPool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pgPool.Pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	leagues := pgstore.NewLeagueStore(pgPool)
	players := pgstore.NewPlayerStore(pgPool)

	if err := leagues.Insert(ctx, cfg); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("store league: %w", err)
	}
	if _, err := players.ReplacePool(ctx, cfg.LeagueID, season.Year, pool); err != nil {
		return fmt.Errorf("store pool: %w", err)
	}

	opts := orchestrator.Options{
		LeagueStore:     leagues,
		PlayerStore:     players,
		PricingRunStore: pgstore.NewPricingRunStore(pgPool),
		Logger:          log.New(os.Stderr, "[orchestrator] ", log.LstdFlags),
	}
	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		opts.SalaryHistoryStore = chstore.NewSalaryHistoryStore(conn)
	}

	res, err := orchestrator.New(opts).Run(ctx, cfg.LeagueID, season)
	if err != nil {
		return err
	}
	if res.AlreadyPriced {
		logger.Printf("run %s already stored", res.Run.RunID)
	} else {
		logger.Printf("stored run %s (%d salary points)", res.Run.RunID, res.SalaryPoints)
	}
	return nil
}
