package main

import (
	"context"
	"log"
	"time"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/ingestion"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/orchestrator"
	"fantasy-pricing-lab/internal/storage"
)

// refresher re-ingests every league's pool from the upstream feed and
// reprices all leagues on a fixed interval.
type refresher struct {
	leagues  storage.LeagueStore
	ingest   *ingestion.Manager // nil = reprice stored pools only
	orch     *orchestrator.Orchestrator
	season   domain.SeasonContext
	interval time.Duration
	logger   *log.Logger
}

func (r *refresher) run(ctx context.Context) error {
	r.logger.Printf("Starting refresh loop (interval: %v, season: %d)...", r.interval, r.season.Year)

	// Run immediately on start
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *refresher) refresh(ctx context.Context) {
	start := time.Now()

	if r.ingest != nil {
		leagues, err := r.leagues.List(ctx)
		if err != nil {
			r.logger.Printf("Refresh: list leagues: %v", err)
			return
		}
		for _, cfg := range leagues {
			res, err := r.ingest.IngestPool(ctx, cfg.LeagueID, r.season.Year, true)
			if err != nil {
				observability.RecordIngestionError("feed")
				r.logger.Printf("Refresh: ingest %s: %v", cfg.LeagueID, err)
				continue
			}
			observability.RecordPlayersIngested("feed", res.Stored)
		}
	}

	res, err := r.orch.RunAll(ctx, r.season)
	if err != nil {
		r.logger.Printf("Refresh error: %v", err)
		return
	}
	r.logger.Printf("Refresh completed in %v: %d leagues, %d new runs, %d unchanged, %d skipped, %d errors",
		time.Since(start), res.LeaguesProcessed, res.RunsCreated, res.AlreadyPriced, res.Skipped, len(res.Errors))
}
