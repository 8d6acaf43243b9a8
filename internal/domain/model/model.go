// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownStatus is returned when decoding a status name that does not exist.
var ErrUnknownStatus = errors.New("unknown session status")

// Hotspot is one findable defect region on the stage. Coordinates are
// percentages of the stage size, in [0,100].
type Hotspot struct {
	ID int     `json:"id" koanf:"id"`
	X  float64 `json:"x" koanf:"x"`
	Y  float64 `json:"y" koanf:"y"`
	W  float64 `json:"w" koanf:"w"`
	H  float64 `json:"h" koanf:"h"`
}

// Center returns the middle of the hotspot rectangle.
func (h Hotspot) Center() Point {
	return Point{X: h.X + h.W/2, Y: h.Y + h.H/2}
}

// Point is a tap position in stage percentages.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the player's display name and contact email.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsZero reports whether no identity was captured.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// Status is the lifecycle state of a game session.
type Status int

// Session states. No transition leaves StatusEnded.
const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "not_started":
		*s = StatusNotStarted
	case "running":
		*s = StatusRunning
	case "ended":
		*s = StatusEnded
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, b)
	}
	return nil
}

// Cause records why a session ended.
type Cause string

// End causes.
const (
	CauseNone          Cause = ""
	CauseTimeExpired   Cause = "time_expired"
	CauseTapsExhausted Cause = "taps_exhausted"
	CauseAllFound      Cause = "all_found"
	CauseAbandoned     Cause = "abandoned"
)

// Snapshot is the frozen terminal state of a session.
type Snapshot struct {
	SessionID        string    `json:"session_id"`
	Cause            Cause     `json:"cause"`
	TotalValid       int       `json:"total_valid"`
	FoundIDs         []int     `json:"found_ids"`
	SecondsRemaining int       `json:"seconds_remaining"`
	TapsRemaining    int       `json:"taps_remaining"`
	MaxTaps          int       `json:"max_taps"`
	MaxSeconds       int       `json:"max_seconds"`
	CompletionTimeMs int64     `json:"completion_time_ms"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	Identity         Identity  `json:"identity"`
}

// ResultRecord is the immutable record of one finished play. It is what the
// leaderboard stores and what result sinks receive.
type ResultRecord struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	IssuesFound          int    `json:"issuesFound"`
	TimeRemainingSeconds int    `json:"timeRemaining"`
	TotalScore           int    `json:"totalScore"`
	CompletionTimeMs     int64  `json:"completionTimeMs"`
	Timestamp            string `json:"timestamp"`
}
