package service

import (
	"time"

	"github.com/okian/spotcheck/internal/adapters/repository"
	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/clock"
	"github.com/okian/spotcheck/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithCatalog sets the hotspot catalog.
func WithCatalog(cat catalog.Catalog) Option {
	return func(s *Service) {
		if cat.Size() > 0 {
			s.catalog = cat
		}
	}
}

// WithProfile sets the rule profile.
func WithProfile(p Profile) Option {
	return func(s *Service) {
		if p.Name != "" {
			s.profile = p
		}
	}
}

// WithLimits overrides the profile's tap and time budgets. Non-positive
// values keep the profile value.
func WithLimits(maxTaps, maxSeconds int) Option {
	return func(s *Service) {
		if maxTaps > 0 {
			s.maxTaps = maxTaps
		}
		if maxSeconds > 0 {
			s.maxSeconds = maxSeconds
		}
	}
}

// WithStore sets the leaderboard store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSubmitter sets where recorded results are forwarded.
func WithSubmitter(sub ResultSubmitter) Option {
	return func(s *Service) {
		if sub != nil {
			s.submitter = sub
		}
	}
}

// WithClockFactory sets how session clocks are made.
func WithClockFactory(f clock.Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.newClock = f
		}
	}
}

// WithCountdown sets the pause between creating a session and starting
// play. Zero starts play at once.
func WithCountdown(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.countdown = d
		}
	}
}

// WithNow sets the time source.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionTTL sets how long ended sessions stay readable.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}
