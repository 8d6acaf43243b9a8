// Package playbot plays the game against a running server over HTTP and
// checks that every result and the leaderboard obey the scoring rules.
package playbot

import (
	"errors"
	"time"
)

// Defaults used when a Config field is left at its zero value.
const (
	DefaultBaseURL   = "http://localhost:9080"
	DefaultPlayers   = 20
	DefaultWorkers   = 4
	DefaultMissRatio = 0.2
	DefaultTimeout   = 10 * time.Second
	DefaultPoll      = 200 * time.Millisecond
)

var (
	ErrUnhealthy      = errors.New("playbot: service is not healthy")
	ErrStatus         = errors.New("playbot: unexpected status")
	ErrScoreMismatch  = errors.New("playbot: score does not follow the rules")
	ErrBoardUnordered = errors.New("playbot: leaderboard out of order")
	ErrNoSessions     = errors.New("playbot: no session finished")
)

// Config controls one bot run.
type Config struct {
	BaseURL string
	// Players is the number of sessions to play.
	Players int
	Workers int
	// MissRatio is the chance, per planned tap, of aiming at empty stage.
	MissRatio float64
	Seed      uint64
	Timeout   time.Duration
	// Poll is how often a waiting player checks whether its countdown ended.
	Poll       time.Duration
	ReportFile string
	Verbose    bool
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Players <= 0 {
		out.Players = DefaultPlayers
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.MissRatio < 0 {
		out.MissRatio = 0
	}
	if out.MissRatio > 1 {
		out.MissRatio = 1
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Poll <= 0 {
		out.Poll = DefaultPoll
	}
	return out
}

// Stats summarises a run.
type Stats struct {
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
	Players     int           `json:"players"`
	Finished    int           `json:"finished"`
	Failed      int           `json:"failed"`
	Perfect     int           `json:"perfect"`
	Taps        int           `json:"taps"`
	Hits        int           `json:"hits"`
	Recorded    int           `json:"recorded"`
	BestScore   int           `json:"best_score"`
	BoardSize   int           `json:"board_size"`
	Mismatches  []string      `json:"mismatches,omitempty"`
	Profile     string        `json:"profile"`
	TapsPerGame float64       `json:"taps_per_game"`
}
