package repository

import "github.com/okian/spotcheck/pkg/logger"

// Defaults for a leaderboard.
const (
	DefaultCapacity  = 50
	DefaultKey       = "leaderboard"
	DefaultListLimit = 20
)

// Option applies a configuration option to the Leaderboard.
type Option func(*Leaderboard)

// WithCapacity bounds the number of retained entries.
func WithCapacity(n int) Option {
	return func(l *Leaderboard) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithKey sets the backend key the board is stored under.
func WithKey(key string) Option {
	return func(l *Leaderboard) {
		if key != "" {
			l.key = key
		}
	}
}

// WithDefaultLimit sets the page size List uses when no limit is given.
func WithDefaultLimit(n int) Option {
	return func(l *Leaderboard) {
		if n > 0 {
			l.defaultLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Leaderboard) {
		if log != nil {
			l.log = log
		}
	}
}
