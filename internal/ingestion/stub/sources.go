package stub

import (
	"context"

	"fantasy-pricing-lab/internal/ingestion"
)

// StubPlayerSource returns a fixed in-memory feed for testing.
// Implements ingestion.PlayerSource interface.
type StubPlayerSource struct {
	players []ingestion.RawPlayer
	err     error
	calls   int
}

// NewStubPlayerSource creates a new stub player source with the given feed.
func NewStubPlayerSource(players []ingestion.RawPlayer) *StubPlayerSource {
	return &StubPlayerSource{players: players}
}

// NewFailingPlayerSource creates a stub source that always returns err.
func NewFailingPlayerSource(err error) *StubPlayerSource {
	return &StubPlayerSource{err: err}
}

// Fetch returns a copy of the feed so callers cannot mutate the fixture.
func (s *StubPlayerSource) Fetch(_ context.Context, _ string, _ int) ([]ingestion.RawPlayer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	result := make([]ingestion.RawPlayer, len(s.players))
	copy(result, s.players)
	return result, nil
}

// Calls returns how many times Fetch was invoked.
func (s *StubPlayerSource) Calls() int {
	return s.calls
}
