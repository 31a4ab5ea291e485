// Package jobs runs pricing requests asynchronously on a fixed worker pool.
// Callers submit a league season and poll the job by id.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/orchestrator"
)

// Errors returned by the manager.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrQueueFull   = errors.New("job queue is full")
	ErrStopped     = errors.New("job manager is stopped")
)

// Defaults for Options.
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 64
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is one asynchronous pricing request.
type Job struct {
	ID            string    `json:"id"`
	LeagueID      string    `json:"league_id"`
	Season        int       `json:"season"`
	Status        Status    `json:"status"`
	RunID         string    `json:"run_id,omitempty"`
	AlreadyPriced bool      `json:"already_priced,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	FinishedAt    time.Time `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j Job) Done() bool {
	return j.Status == StatusSucceeded || j.Status == StatusFailed
}

// PriceFunc prices one league season. orchestrator.Orchestrator.Run satisfies it.
type PriceFunc func(ctx context.Context, leagueID string, season domain.SeasonContext) (*orchestrator.RunResult, error)

// Options for creating a Manager.
type Options struct {
	Price     PriceFunc
	Workers   int // 0 = DefaultWorkers
	QueueSize int // 0 = DefaultQueueSize
	Metrics   *observability.Metrics
	Clock     func() time.Time
	Logger    *log.Logger
}

type request struct {
	id     string
	season domain.SeasonContext
}

// Manager queues jobs and runs them on Start's workers.
type Manager struct {
	price   PriceFunc
	workers int
	queue   chan request
	metrics *observability.Metrics
	clock   func() time.Time
	logger  *log.Logger

	mu      sync.RWMutex
	jobs    map[string]*Job
	stopped bool
}

// NewManager creates a new Manager. Jobs are accepted immediately and
// run once Start is called.
func NewManager(opts Options) *Manager {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		price:   opts.Price,
		workers: workers,
		queue:   make(chan request, queueSize),
		metrics: metrics,
		clock:   clock,
		logger:  logger,
		jobs:    make(map[string]*Job),
	}
}

// Submit queues a pricing job for leagueID and season.
func (m *Manager) Submit(leagueID string, season domain.SeasonContext) (Job, error) {
	if leagueID == "" {
		return Job{}, fmt.Errorf("submit job: empty league id")
	}

	job := &Job{
		ID:        uuid.NewString(),
		LeagueID:  leagueID,
		Season:    season.Year,
		Status:    StatusQueued,
		CreatedAt: m.clock(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return Job{}, ErrStopped
	}
	select {
	case m.queue <- request{id: job.ID, season: season}:
	default:
		return Job{}, ErrQueueFull
	}
	m.jobs[job.ID] = job
	m.metrics.JobsSubmitted.Inc()

	return *job, nil
}

// Get returns a snapshot of a job. Returns ErrJobNotFound if unknown.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// List returns snapshots of all jobs, newest first.
func (m *Manager) List() []Job {
	m.mu.RLock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// Start runs the workers until ctx is cancelled. Queued jobs that never
// started are marked failed on shutdown.
func (m *Manager) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < m.workers; i++ {
		g.Go(func() error {
			m.work(gctx)
			return nil
		})
	}
	err := g.Wait()

	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	m.drain()

	if err != nil {
		return err
	}
	return ctx.Err()
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.queue:
			m.run(ctx, req)
		}
	}
}

func (m *Manager) run(ctx context.Context, req request) {
	leagueID, ok := m.transition(req.id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = m.clock()
	})
	if !ok {
		return
	}

	m.metrics.JobsRunning.Inc()
	defer m.metrics.JobsRunning.Dec()

	res, err := m.price(ctx, leagueID, req.season)
	m.transition(req.id, func(j *Job) {
		j.FinishedAt = m.clock()
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
			return
		}
		j.Status = StatusSucceeded
		if res != nil && res.Run != nil {
			j.RunID = res.Run.RunID
			j.AlreadyPriced = res.AlreadyPriced
		}
	})

	if err != nil {
		m.logger.Printf("[jobs] job %s (%s/%d) failed: %v", req.id, leagueID, req.season.Year, err)
		m.metrics.JobsFinished.WithLabelValues(string(StatusFailed)).Inc()
		return
	}
	m.metrics.JobsFinished.WithLabelValues(string(StatusSucceeded)).Inc()
}

// transition applies fn to the job under the lock and returns its league id.
func (m *Manager) transition(id string, fn func(*Job)) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return "", false
	}
	fn(job)
	return job.LeagueID, true
}

// drain fails every job still waiting in the queue.
func (m *Manager) drain() {
	for {
		select {
		case req := <-m.queue:
			m.transition(req.id, func(j *Job) {
				j.Status = StatusFailed
				j.Error = ErrStopped.Error()
				j.FinishedAt = m.clock()
			})
			m.metrics.JobsFinished.WithLabelValues(string(StatusFailed)).Inc()
		default:
			return
		}
	}
}
