package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fantasy-pricing-lab/internal/broadcast"
	"fantasy-pricing-lab/internal/config"
	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/idhash"
	"fantasy-pricing-lab/internal/ingestion"
	"fantasy-pricing-lab/internal/jobs"
	"fantasy-pricing-lab/internal/lookup"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/storage"
	"fantasy-pricing-lab/internal/valuation"
)

// maxBodyBytes bounds request bodies; a full player feed is a few MB.
const maxBodyBytes = 32 << 20

type handler struct {
	engine  *valuation.Engine
	adapter *ingestion.Adapter
	leagues storage.LeagueStore
	players storage.PlayerStore
	runs    storage.PricingRunStore
	history storage.SalaryHistoryStore
	jobs    *jobs.Manager
	hub     *broadcast.Hub
	metrics *observability.Metrics
	logger  *log.Logger
}

func newHandler(d Deps) *handler {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := d.Engine
	if engine == nil {
		engine = valuation.NewEngine(valuation.Options{Logger: logger})
	}
	adapter := d.Adapter
	if adapter == nil {
		adapter = ingestion.NewAdapter(ingestion.AdapterOptions{Logger: logger})
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &handler{
		engine:  engine,
		adapter: adapter,
		leagues: d.Leagues,
		players: d.Players,
		runs:    d.Runs,
		history: d.History,
		jobs:    d.Jobs,
		hub:     d.Hub,
		metrics: metrics,
		logger:  logger,
	}
}

// Health returns service health.
func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "healthy",
		"service": "fantasy-pricing-lab",
	}
	if h.hub != nil {
		health["ws_clients"] = h.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, health)
}

// PriceRequest is the body of a synchronous pricing call.
type PriceRequest struct {
	League  json.RawMessage       `json:"league"` // config.LeagueFile keys; absent = defaults
	Season  domain.SeasonContext  `json:"season"`
	Players []ingestion.RawPlayer `json:"players"`
}

// PriceResponse is a PricingResult plus its deterministic identity.
type PriceResponse struct {
	RunID       string `json:"run_id"`
	DataVersion string `json:"data_version"`
	*domain.PricingResult
}

// Price prices an uploaded pool without touching storage.
func (h *handler) Price(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Season.Year <= 0 {
		respondError(w, http.StatusBadRequest, "season.year is required")
		return
	}

	leagueDoc := []byte(req.League)
	if len(leagueDoc) == 0 || string(leagueDoc) == "null" {
		leagueDoc = []byte("{}")
	}
	cfg, err := config.DecodeLeagueJSON(leagueDoc)
	if err != nil {
		respondErr(w, badRequest(err))
		return
	}

	adapted := h.adapter.WithScoring(*cfg).Adapt(req.Players)
	start := time.Now()
	result, err := h.engine.Run(adapted.Players, *cfg, req.Season)
	if err != nil {
		h.metrics.RecordPricingRun(statusFor(err), time.Since(start), observability.PricingStats{LeagueID: cfg.LeagueID})
		respondErr(w, err)
		return
	}
	result.Warnings = append(adapted.Warnings, result.Warnings...)
	result.Summary.WarningCount = len(result.Warnings)
	h.metrics.RecordPricingRun(observability.StatusSuccess, time.Since(start), observability.PricingStats{
		LeagueID: cfg.LeagueID,
		Players:  result.Summary.TotalPlayers,
		Rookies:  result.Summary.RookieCount,
		Warnings: result.Summary.WarningCount,
		Money:    result.Summary.TotalMoney,
	})

	dataVersion := idhash.ComputeDataVersion(adapted.Players, *cfg)
	respondJSON(w, http.StatusOK, PriceResponse{
		RunID:         idhash.ComputeRunID(cfg.LeagueID, req.Season.Year, dataVersion),
		DataVersion:   dataVersion,
		PricingResult: result,
	})
}

// CreateLeague stores a league configuration.
func (h *handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	cfg, err := config.DecodeLeagueJSON(body)
	if err != nil {
		respondErr(w, badRequest(err))
		return
	}
	if err := h.leagues.Insert(r.Context(), cfg); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, config.NewLeagueFile(*cfg))
}

// ListLeagues returns all stored leagues.
func (h *handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagues.List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	out := make([]config.LeagueFile, len(leagues))
	for i, cfg := range leagues {
		out[i] = config.NewLeagueFile(*cfg)
	}
	respondJSON(w, http.StatusOK, out)
}

// GetLeague returns one league.
func (h *handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.leagues.GetByID(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, config.NewLeagueFile(*cfg))
}

// uploadResponse reports a stored pool.
type uploadResponse struct {
	LeagueID string   `json:"league_id"`
	Season   int      `json:"season"`
	Stored   int      `json:"stored"`
	Replaced int      `json:"replaced"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// UploadPool replaces the stored pool of a league season with the body's
// raw player feed.
func (h *handler) UploadPool(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "leagueID")
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	cfg, err := h.leagues.GetByID(r.Context(), leagueID)
	if err != nil {
		respondErr(w, err)
		return
	}

	raw, err := ingestion.DecodeFeed(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid feed: %v", err))
		return
	}
	adapted := h.adapter.WithScoring(*cfg).Adapt(raw)

	replaced, err := h.players.ReplacePool(r.Context(), leagueID, season.Year, adapted.Players)
	if err != nil {
		respondErr(w, err)
		return
	}
	observability.RecordPlayersIngested("api", len(adapted.Players))

	respondJSON(w, http.StatusOK, uploadResponse{
		LeagueID: leagueID,
		Season:   season.Year,
		Stored:   len(adapted.Players),
		Replaced: replaced,
		Skipped:  adapted.Skipped,
		Warnings: adapted.Warnings,
	})
}

// SubmitJob queues an asynchronous pricing run of a stored pool.
func (h *handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusNotImplemented, "jobs are not enabled")
		return
	}
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	leagueID := chi.URLParam(r, "leagueID")
	if _, err := h.leagues.GetByID(r.Context(), leagueID); err != nil {
		respondErr(w, err)
		return
	}

	job, err := h.jobs.Submit(leagueID, season)
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/jobs/"+job.ID)
	respondJSON(w, http.StatusAccepted, job)
}

// GetJob returns one job.
func (h *handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusNotImplemented, "jobs are not enabled")
		return
	}
	job, err := h.jobs.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// ListJobs returns all jobs, newest first.
func (h *handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusNotImplemented, "jobs are not enabled")
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.List())
}

// runSummary is one entry of a run listing.
type runSummary struct {
	RunID       string               `json:"run_id"`
	Season      int                  `json:"season"`
	DataVersion string               `json:"data_version"`
	CreatedAt   int64                `json:"created_at"`
	Summary     domain.SummaryReport `json:"summary"`
}

// ListRuns returns the runs of a league, oldest first.
func (h *handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.GetByLeague(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	out := make([]runSummary, len(runs))
	for i, run := range runs {
		out[i] = runSummary{
			RunID:       run.RunID,
			Season:      run.Season,
			DataVersion: run.DataVersion,
			CreatedAt:   run.CreatedAt,
			Summary:     run.Result.Summary,
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRun returns the full result of one run.
func (h *handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetByID(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, runResponse(run))
}

func runResponse(run *domain.PricingRun) PriceResponse {
	result := run.Result
	return PriceResponse{RunID: run.RunID, DataVersion: run.DataVersion, PricingResult: &result}
}

// LatestPrices returns the newest run of a league season. With q, position,
// team, rookies or min_salary set, it returns matching players instead.
func (h *handler) LatestPrices(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	run, err := h.runs.GetLatest(r.Context(), chi.URLParam(r, "leagueID"), season.Year)
	if err != nil {
		respondErr(w, err)
		return
	}

	q := r.URL.Query()
	if !hasSearchParams(q) {
		respondJSON(w, http.StatusOK, runResponse(run))
		return
	}

	filter, limit, err := searchFilter(q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	matches := lookup.NewIndex(run.Result.Prices).Search(q.Get("q"), filter, limit)
	respondJSON(w, http.StatusOK, map[string]any{
		"run_id":  run.RunID,
		"matches": matches,
	})
}

// PlayerHistory returns a player's salary across runs, oldest first.
func (h *handler) PlayerHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusNotImplemented, "salary history is not enabled")
		return
	}
	points, err := h.history.GetByPlayer(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "playerID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if len(points) == 0 {
		respondErr(w, lookup.ErrNoMatch)
		return
	}
	change, _ := lookup.SalaryChange(points)
	resp := map[string]any{
		"points": points,
		"change": change,
	}
	if v := r.URL.Query().Get("at"); v != "" {
		target, err := parseAt(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp["at"], _ = lookup.SalaryAt(target, points)
	}
	respondJSON(w, http.StatusOK, resp)
}

// parseAt accepts Unix milliseconds or an RFC 3339 timestamp.
func parseAt(v string) (int64, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return 0, fmt.Errorf("at must be unix milliseconds or RFC 3339")
	}
	return t.UnixMilli(), nil
}

// PlayerPrice returns one player's entry in the newest run of a league season.
func (h *handler) PlayerPrice(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	run, err := h.runs.GetLatest(r.Context(), chi.URLParam(r, "leagueID"), season.Year)
	if err != nil {
		respondErr(w, err)
		return
	}
	player, err := lookup.NewIndex(run.Result.Prices).ByID(chi.URLParam(r, "playerID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"run_id": run.RunID,
		"player": player,
	})
}

func hasSearchParams(q url.Values) bool {
	for _, k := range []string{"q", "position", "team", "rookies", "min_salary", "limit"} {
		if _, ok := q[k]; ok {
			return true
		}
	}
	return false
}

func searchFilter(q url.Values) (lookup.Filter, int, error) {
	filter := lookup.Filter{
		Position: q.Get("position"),
		Team:     q.Get("team"),
	}
	if v := q.Get("min_salary"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, 0, fmt.Errorf("min_salary must be an integer")
		}
		filter.MinSalary = n
	}
	if v := q.Get("rookies"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, 0, fmt.Errorf("rookies must be a boolean")
		}
		filter.Rookies = &b
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, 0, fmt.Errorf("limit must be a non-negative integer")
		}
		limit = n
	}
	return filter, limit, nil
}

func seasonParam(w http.ResponseWriter, r *http.Request) (domain.SeasonContext, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil || year <= 0 {
		respondError(w, http.StatusBadRequest, "season must be a positive year")
		return domain.SeasonContext{}, false
	}
	return domain.SeasonContext{Year: year}, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func statusFor(err error) string {
	if errors.Is(err, valuation.ErrInvalidConfiguration) {
		return observability.StatusInvalidConfig
	}
	return observability.StatusError
}

// badRequest marks decode failures as invalid input; configuration errors
// keep their own type.
func badRequest(err error) error {
	if errors.Is(err, valuation.ErrInvalidConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
}
