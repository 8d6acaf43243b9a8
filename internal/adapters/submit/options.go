package submit

import (
	"time"

	"github.com/okian/spotcheck/internal/domain/dedupe"
	"github.com/okian/spotcheck/pkg/logger"
)

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Submitter) {
		if log != nil {
			s.log = log
		}
	}
}

// WithQueueSize bounds the number of pending deliveries.
func WithQueueSize(n int) Option {
	return func(s *Submitter) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(n int) Option {
	return func(s *Submitter) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout bounds a single delivery.
func WithTimeout(d time.Duration) Option {
	return func(s *Submitter) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDeduper replaces the delivery ledger.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Submitter) {
		if d != nil {
			s.seen = d
		}
	}
}
