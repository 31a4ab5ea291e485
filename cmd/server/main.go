// Package main provides the pricing service:
// - HTTP API: league configs, pool uploads, synchronous and queued pricing
// - WebSocket: run notifications for subscribed leagues
// - Refresh (scheduled): feed ingestion and repricing of every stored league
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fantasy-pricing-lab/internal/api"
	"fantasy-pricing-lab/internal/broadcast"
	"fantasy-pricing-lab/internal/config"
	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/ingestion"
	"fantasy-pricing-lab/internal/jobs"
	"fantasy-pricing-lab/internal/orchestrator"
	"fantasy-pricing-lab/internal/pipeline"
	"fantasy-pricing-lab/internal/storage"
	chstore "fantasy-pricing-lab/internal/storage/clickhouse"
	"fantasy-pricing-lab/internal/storage/memory"
	"fantasy-pricing-lab/internal/storage/migrations"
	pgstore "fantasy-pricing-lab/internal/storage/postgres"
	"fantasy-pricing-lab/internal/valuation"
)

// allStores holds all storage implementations.
type allStores struct {
	leagues storage.LeagueStore
	players storage.PlayerStore
	runs    storage.PricingRunStore
	history storage.SalaryHistoryStore // nil without ClickHouse
}

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("read .env: %v", err)
	}

	addr := flag.String("addr", config.GetEnv("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", config.GetEnv("POSTGRES_DSN", ""), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", config.GetEnv("CLICKHOUSE_DSN", ""), "ClickHouse connection string (optional, enables salary history)")
	useMemory := flag.Bool("use-memory", config.GetEnvBool("USE_MEMORY", false), "Use in-memory storage instead of PostgreSQL")
	useFixtures := flag.Bool("use-fixtures", false, "Seed the stores with the demo league and pool")
	feedURL := flag.String("feed-url", config.GetEnv("PLAYER_FEED_URL", ""), "Upstream feed URL; {league} and {season} are expanded")
	season := flag.Int("season", config.GetEnvInt("SEASON", time.Now().Year()), "Season repriced by the refresh loop")
	refreshInterval := flag.Duration("refresh-interval", config.GetEnvDuration("REFRESH_INTERVAL", 0), "Ingest and reprice every league on this interval (0 disables)")
	workers := flag.Int("workers", config.GetEnvInt("JOB_WORKERS", jobs.DefaultWorkers), "Concurrent pricing jobs")
	queueSize := flag.Int("queue-size", config.GetEnvInt("JOB_QUEUE_SIZE", jobs.DefaultQueueSize), "Queued pricing jobs before submissions are rejected")
	origins := flag.String("allowed-origins", config.GetEnv("ALLOWED_ORIGINS", ""), "Comma-separated CORS and WebSocket origins (empty allows any)")
	requestTimeout := flag.Duration("request-timeout", config.GetEnvDuration("REQUEST_TIMEOUT", 60*time.Second), "Per-request timeout for API routes")
	verbose := flag.Bool("verbose", config.GetEnvBool("VERBOSE", false), "Log pricing stages")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if *useFixtures {
		cfg, err := pipeline.LoadFixtures(ctx, stores.leagues, stores.players)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			logger.Println("Fixtures already loaded")
		case err != nil:
			logger.Fatalf("Failed to load fixtures: %v", err)
		default:
			logger.Printf("Loaded fixture league %s, season %d", cfg.LeagueID, pipeline.FixtureSeason.Year)
		}
	}

	allowed := splitList(*origins)
	engine := valuation.NewEngine(valuation.Options{
		Logger:  log.New(os.Stdout, "[valuation] ", log.LstdFlags),
		Verbose: *verbose,
	})
	hub := broadcast.NewHub(broadcast.Options{
		AllowedOrigins: allowed,
		Logger:         log.New(os.Stdout, "[ws] ", log.LstdFlags),
	})
	orch := orchestrator.New(orchestrator.Options{
		LeagueStore:        stores.leagues,
		PlayerStore:        stores.players,
		PricingRunStore:    stores.runs,
		SalaryHistoryStore: stores.history,
		Engine:             engine,
		Publisher:          hub,
		Logger:             log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
		Verbose:            *verbose,
	})
	manager := jobs.NewManager(jobs.Options{
		Price:     orch.Run,
		Workers:   *workers,
		QueueSize: *queueSize,
		Logger:    log.New(os.Stdout, "[jobs] ", log.LstdFlags),
	})

	router := api.NewRouter(api.Deps{
		Engine:         engine,
		Leagues:        stores.leagues,
		Players:        stores.players,
		Runs:           stores.runs,
		History:        stores.history,
		Jobs:           manager,
		Hub:            hub,
		Logger:         log.New(os.Stdout, "[api] ", log.LstdFlags),
		AllowedOrigins: allowed,
		RequestTimeout: *requestTimeout,
	})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := manager.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Printf("Starting HTTP server on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if *refreshInterval > 0 {
		var ingest *ingestion.Manager
		if *feedURL != "" {
			ingest = ingestion.NewManager(ingestion.ManagerOptions{
				Source:  ingestion.NewHTTPSource(*feedURL),
				Store:   stores.players,
				Leagues: stores.leagues,
				Logger:  log.New(os.Stdout, "[ingestion] ", log.LstdFlags),
			})
		}
		r := &refresher{
			leagues:  stores.leagues,
			ingest:   ingest,
			orch:     orch,
			season:   domain.SeasonContext{Year: *season},
			interval: *refreshInterval,
			logger:   logger,
		}
		g.Go(func() error { return r.run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			leagues: memory.NewLeagueStore(),
			players: memory.NewPlayerStore(),
			runs:    memory.NewPricingRunStore(),
			history: memory.NewSalaryHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool.Pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &allStores{
		leagues: pgstore.NewLeagueStore(pool),
		players: pgstore.NewPlayerStore(pool),
		runs:    pgstore.NewPricingRunStore(pool),
	}
	if clickhouseDSN == "" {
		return stores, pool.Close, nil
	}

	// ClickHouse (analytics)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	stores.history = chstore.NewSalaryHistoryStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
