package jobs

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/observability"
	"fantasy-pricing-lab/internal/orchestrator"
)

var season = domain.SeasonContext{Year: 2026}

func newTestManager(price PriceFunc, queueSize int) *Manager {
	return NewManager(Options{
		Price:     price,
		Workers:   2,
		QueueSize: queueSize,
		Metrics:   observability.NewMetrics("test", prometheus.NewRegistry()),
		Logger:    log.New(io.Discard, "", 0),
	})
}

func okPrice(_ context.Context, leagueID string, s domain.SeasonContext) (*orchestrator.RunResult, error) {
	return &orchestrator.RunResult{Run: &domain.PricingRun{RunID: "run-" + leagueID, LeagueID: leagueID, Season: s.Year}}, nil
}

func waitDone(t *testing.T, m *Manager, id string) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.Get(id)
		return err == nil && job.Done()
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func startManager(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestManager_SubmitAndComplete(t *testing.T) {
	m := newTestManager(okPrice, 0)
	startManager(t, m)

	job, err := m.Submit("league-a", season)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.NotEmpty(t, job.ID)

	done := waitDone(t, m, job.ID)
	assert.Equal(t, StatusSucceeded, done.Status)
	assert.Equal(t, "run-league-a", done.RunID)
	assert.Equal(t, 2026, done.Season)
	assert.False(t, done.FinishedAt.IsZero())
}

func TestManager_FailedJob(t *testing.T) {
	boom := errors.New("boom")
	m := newTestManager(func(context.Context, string, domain.SeasonContext) (*orchestrator.RunResult, error) {
		return nil, boom
	}, 0)
	startManager(t, m)

	job, err := m.Submit("league-a", season)
	require.NoError(t, err)

	done := waitDone(t, m, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Equal(t, "boom", done.Error)
}

func TestManager_UniqueIDs(t *testing.T) {
	m := newTestManager(okPrice, 0)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		job, err := m.Submit("league-a", season)
		require.NoError(t, err)
		assert.False(t, seen[job.ID], "duplicate id %s", job.ID)
		seen[job.ID] = true
	}
	assert.Len(t, m.List(), 20)
}

func TestManager_QueueFull(t *testing.T) {
	m := newTestManager(okPrice, 1)

	_, err := m.Submit("league-a", season)
	require.NoError(t, err)
	_, err = m.Submit("league-b", season)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Len(t, m.List(), 1)
}

func TestManager_EmptyLeague(t *testing.T) {
	m := newTestManager(okPrice, 0)
	_, err := m.Submit("", season)
	assert.Error(t, err)
}

func TestManager_GetUnknown(t *testing.T) {
	m := newTestManager(okPrice, 0)
	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestManager_ConcurrentJobs(t *testing.T) {
	var mu sync.Mutex
	priced := make(map[string]int)
	m := newTestManager(func(ctx context.Context, leagueID string, s domain.SeasonContext) (*orchestrator.RunResult, error) {
		mu.Lock()
		priced[leagueID]++
		mu.Unlock()
		return okPrice(ctx, leagueID, s)
	}, 0)
	startManager(t, m)

	leagues := []string{"a", "b", "c", "d", "e", "f"}
	ids := make([]string, 0, len(leagues))
	for _, l := range leagues {
		job, err := m.Submit(l, season)
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	for _, id := range ids {
		assert.Equal(t, StatusSucceeded, waitDone(t, m, id).Status)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, l := range leagues {
		assert.Equal(t, 1, priced[l], "league %s", l)
	}
}

func TestManager_StopFailsQueuedJobs(t *testing.T) {
	m := newTestManager(okPrice, 0)

	job, err := m.Submit("league-a", season)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	// A worker may have picked the job before observing cancellation.
	assert.True(t, got.Done())

	_, err = m.Submit("league-b", season)
	assert.ErrorIs(t, err, ErrStopped)
}
