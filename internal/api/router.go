// Package api exposes pricing over HTTP.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fantasy-pricing-lab/internal/broadcast"
	"fantasy-pricing-lab/internal/ingestion"
	"fantasy-pricing-lab/internal/jobs"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/storage"
	"fantasy-pricing-lab/internal/valuation"
)

// Deps are the components the handlers serve. History, Jobs and Hub are
// optional; their routes answer 501 when nil.
type Deps struct {
	Engine  *valuation.Engine
	Adapter *ingestion.Adapter
	Leagues storage.LeagueStore
	Players storage.PlayerStore
	Runs    storage.PricingRunStore
	History storage.SalaryHistoryStore
	Jobs    *jobs.Manager
	Hub     *broadcast.Hub
	Metrics *observability.Metrics
	Logger  *log.Logger

	AllowedOrigins []string      // CORS; empty = any origin
	RequestTimeout time.Duration // 0 = 60s
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) http.Handler {
	h := newHandler(d)

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", observability.Handler())
	if d.Hub != nil {
		r.Handle("/ws", d.Hub)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Post("/price", h.Price)

		r.Post("/leagues", h.CreateLeague)
		r.Get("/leagues", h.ListLeagues)
		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Get("/", h.GetLeague)
			r.Get("/runs", h.ListRuns)
			r.Get("/players/{playerID}/history", h.PlayerHistory)

			r.Route("/seasons/{season}", func(r chi.Router) {
				r.Put("/players", h.UploadPool)
				r.Post("/jobs", h.SubmitJob)
				r.Get("/prices", h.LatestPrices)
				r.Get("/prices/{playerID}", h.PlayerPrice)
			})
		})

		r.Get("/runs/{runID}", h.GetRun)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{jobID}", h.GetJob)
	})

	return r
}
