// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pricing run statuses.
const (
	StatusSuccess       = "success"
	StatusAlreadyPriced = "already_priced"
	StatusInvalidConfig = "invalid_config"
	StatusError         = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pricing metrics
	PricingRunsTotal  *prometheus.CounterVec
	PricingDuration   prometheus.Histogram
	PlayersPriced     prometheus.Counter
	RookiesAssigned   prometheus.Counter
	PricingWarnings   prometheus.Counter
	MoneyAllocated    *prometheus.GaugeVec
	ReportsGenerated  prometheus.Counter
	SufficiencyFailed *prometheus.CounterVec

	// Ingestion metrics
	PlayersIngested *prometheus.CounterVec
	IngestionErrors *prometheus.CounterVec

	// Job metrics
	JobsSubmitted prometheus.Counter
	JobsRunning   prometheus.Gauge
	JobsFinished  *prometheus.CounterVec

	// Broadcast metrics
	WSClients      prometheus.Gauge
	WSMessagesSent prometheus.Counter

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fantasy_pricing_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Pricing metrics
		PricingRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "runs_total",
			Help:      "Total number of pricing runs by status",
		}, []string{"status"}),
		PricingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "duration_seconds",
			Help:      "Pricing run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		PlayersPriced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "players_priced_total",
			Help:      "Total number of players priced",
		}),
		RookiesAssigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "rookies_assigned_total",
			Help:      "Total number of rookies assigned the rookie price",
		}),
		PricingWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "warnings_total",
			Help:      "Total number of data-quality warnings raised during pricing",
		}),
		MoneyAllocated: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "money_allocated",
			Help:      "Dollars allocated by the latest run per league",
		}, []string{"league_id"}),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		SufficiencyFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "sufficiency_failures_total",
			Help:      "Total number of failed pool sufficiency checks by check name",
		}, []string{"check"}),

		// Ingestion metrics
		PlayersIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "players_total",
			Help:      "Total number of players ingested by source",
		}, []string{"source"}),
		IngestionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by source",
		}, []string{"source"}),

		// Job metrics
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "submitted_total",
			Help:      "Total number of pricing jobs submitted",
		}),
		JobsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "running",
			Help:      "Number of pricing jobs currently running",
		}),
		JobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "finished_total",
			Help:      "Total number of pricing jobs finished by status",
		}, []string{"status"}),

		// Broadcast metrics
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}),
		WSMessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "messages_sent_total",
			Help:      "Total number of messages pushed to WebSocket clients",
		}),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pricing run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// PricingStats is what one finished pricing run contributes to the metrics.
type PricingStats struct {
	LeagueID string
	Players  int
	Rookies  int
	Warnings int
	Money    int
}

// RecordPricingRun records a finished pricing run.
func (m *Metrics) RecordPricingRun(status string, duration time.Duration, stats PricingStats) {
	m.PricingRunsTotal.WithLabelValues(status).Inc()
	m.PricingDuration.Observe(duration.Seconds())
	if status != StatusSuccess {
		return
	}
	m.PlayersPriced.Add(float64(stats.Players))
	m.RookiesAssigned.Add(float64(stats.Rookies))
	m.PricingWarnings.Add(float64(stats.Warnings))
	m.MoneyAllocated.WithLabelValues(stats.LeagueID).Set(float64(stats.Money))
	m.LastSuccessfulRun.SetToCurrentTime()
}

// RecordSufficiencyFailures counts each failed sufficiency check by name.
func (m *Metrics) RecordSufficiencyFailures(checks []string) {
	for _, name := range checks {
		m.SufficiencyFailed.WithLabelValues(name).Inc()
	}
}

// RecordPlayersIngested adds n players ingested from source.
func RecordPlayersIngested(source string, n int) {
	DefaultMetrics.PlayersIngested.WithLabelValues(source).Add(float64(n))
}

// RecordIngestionError records an ingestion error for source.
func RecordIngestionError(source string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(source).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
