package session

import (
	"time"

	"github.com/okian/spotcheck/internal/domain/model"
)

// Default limits match the leaderboard profile.
const (
	DefaultMaxTaps      = 13
	DefaultMaxSeconds   = 90
	defaultTickInterval = time.Second
)

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithLimits sets the tap and time budget. Non-positive values are ignored.
func WithLimits(maxTaps, maxSeconds int) Option {
	return func(s *Session) {
		if maxTaps > 0 {
			s.maxTaps = maxTaps
		}
		if maxSeconds > 0 {
			s.maxSeconds = maxSeconds
		}
	}
}

// WithIdentity attaches the player's identity to the session.
func WithIdentity(id model.Identity) Option {
	return func(s *Session) {
		s.identity = id
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithNow sets the time source used for start and completion timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers a callback for session events. It runs after the
// session lock is released.
func WithObserver(fn func(Event)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// WithTickInterval sets how often the clock ticks. One tick is one second of
// game time regardless of the interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}
