package api

import (
	"net/http"

	"github.com/okian/spotcheck/pkg/logger"
)

const (
	defaultMaxLimit  = 50
	defaultPublicURL = "http://localhost:9080/"
	defaultQRSize    = 256
)

type options struct {
	maxLimit  int
	publicURL string
	qrSize    int
	stream    http.Handler
	log       logger.Logger
}

// Option configures the Server.
type Option func(*options)

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithPublicURL sets the address encoded in the share code.
func WithPublicURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.publicURL = url
		}
	}
}

// WithQRSize sets the share code edge in pixels.
func WithQRSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.qrSize = px
		}
	}
}

// WithStream mounts h at GET /sessions/{id}/stream.
func WithStream(h http.Handler) Option {
	return func(o *options) {
		o.stream = h
	}
}

// WithLogger sets the handler logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
