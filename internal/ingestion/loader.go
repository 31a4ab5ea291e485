package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// feedEnvelope is the object form of a player feed.
type feedEnvelope struct {
	Players []RawPlayer `json:"players"`
}

// DecodeFeed reads a player feed. Both a bare JSON array and an object with a
// "players" array are accepted.
func DecodeFeed(r io.Reader) ([]RawPlayer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty feed", ErrMalformedEntry)
	}

	if trimmed[0] == '[' {
		var players []RawPlayer
		if err := json.Unmarshal(trimmed, &players); err != nil {
			return nil, fmt.Errorf("decode feed array: %w", err)
		}
		return players, nil
	}

	var env feedEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode feed object: %w", err)
	}
	return env.Players, nil
}

// LoadFeedFile reads a player feed from disk.
func LoadFeedFile(path string) ([]RawPlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", path, err)
	}
	defer f.Close()

	return DecodeFeed(f)
}
