package broadcast

import (
	"time"

	"fantasy-pricing-lab/internal/domain"
)

// Message types.
const (
	MessageTypeRunCompleted = "run_completed"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeError        = "error"

	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
)

// ServerMessage is pushed to clients.
type ServerMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is received from clients.
type ClientMessage struct {
	Type    string   `json:"type"`
	Leagues []string `json:"leagues,omitempty"` // subscribe filter; empty = all
}

// RunNotice announces a completed pricing run.
type RunNotice struct {
	RunID        string                `json:"run_id"`
	LeagueID     string                `json:"league_id"`
	Season       int                   `json:"season"`
	DataVersion  string                `json:"data_version"`
	TotalPlayers int                   `json:"total_players"`
	TotalMoney   int                   `json:"total_money"`
	RookieCount  int                   `json:"rookie_count"`
	Top          []domain.PricedPlayer `json:"top"`
}

// TopPlayersInNotice is how many players a RunNotice carries.
const TopPlayersInNotice = 10

// NewRunNotice summarizes run for clients.
func NewRunNotice(run *domain.PricingRun) RunNotice {
	n := len(run.Result.Prices)
	if n > TopPlayersInNotice {
		n = TopPlayersInNotice
	}
	top := make([]domain.PricedPlayer, n)
	copy(top, run.Result.Prices[:n])

	return RunNotice{
		RunID:        run.RunID,
		LeagueID:     run.LeagueID,
		Season:       run.Season,
		DataVersion:  run.DataVersion,
		TotalPlayers: run.Result.Summary.TotalPlayers,
		TotalMoney:   run.Result.Summary.TotalMoney,
		RookieCount:  run.Result.Summary.RookieCount,
		Top:          top,
	}
}
