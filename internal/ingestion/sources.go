package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// PlayerSource provides a raw player feed for one league season.
type PlayerSource interface {
	// Fetch returns the raw feed. Entry order is preserved downstream.
	Fetch(ctx context.Context, leagueID string, season int) ([]RawPlayer, error)
}

// FileSource reads a feed from a fixed JSON file. League and season are ignored.
type FileSource struct {
	Path string
}

// Fetch implements PlayerSource.
func (s FileSource) Fetch(ctx context.Context, _ string, _ int) ([]RawPlayer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFeedFile(s.Path)
}

// HTTPSource fetches a feed from an upstream stats endpoint.
// The URL may contain "{league}" and "{season}" placeholders.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTP feed source with a bounded client timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements PlayerSource.
func (s *HTTPSource) Fetch(ctx context.Context, leagueID string, season int) ([]RawPlayer, error) {
	url := expandFeedURL(s.URL, leagueID, season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}
	return DecodeFeed(resp.Body)
}

func expandFeedURL(template, leagueID string, season int) string {
	r := strings.NewReplacer("{league}", leagueID, "{season}", strconv.Itoa(season))
	return r.Replace(template)
}
