package stream

import (
	"time"

	"github.com/okian/spotcheck/pkg/logger"
)

const (
	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithKeepalive sets how long a silent client is kept and how often it is
// pinged. A ping period outside (0, pongWait) becomes 90% of pongWait.
func WithKeepalive(pongWait, pingPeriod time.Duration) Option {
	return func(h *Handler) {
		if pongWait > 0 {
			h.pongWait = pongWait
		}
		h.pingPeriod = pingPeriod
	}
}

// WithWriteWait bounds each write.
func WithWriteWait(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.writeWait = d
		}
	}
}
