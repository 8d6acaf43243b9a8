// Package clock provides the countdown timer that drives a game session.
//
// A Clock fires onTick once per interval and, after the configured number of
// ticks, onExpire exactly once. Cancel never waits for a callback in flight, so
// callers may cancel while holding their own locks.
package clock

import (
	"sync"
	"time"
)

// Clock is a cancellable countdown.
type Clock interface {
	// Start begins ticking, cancelling any countdown already running.
	Start(interval time.Duration, ticks int, onTick, onExpire func())
	// Cancel stops the countdown. Safe to call repeatedly.
	Cancel()
}

// Factory builds a fresh Clock for each session.
type Factory func() Clock

// Ticker is a Clock backed by time.Ticker.
type Ticker struct {
	mu   sync.Mutex
	stop chan struct{}
}

// NewTicker returns a real-time Clock.
func NewTicker() *Ticker {
	return &Ticker{}
}

// TickerFactory builds real-time clocks.
func TickerFactory() Clock { return NewTicker() }

// Start implements Clock.
func (t *Ticker) Start(interval time.Duration, ticks int, onTick, onExpire func()) {
	t.mu.Lock()
	t.cancelLocked()
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go run(stop, interval, ticks, onTick, onExpire)
}

// Cancel implements Clock.
func (t *Ticker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

func (t *Ticker) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func run(stop <-chan struct{}, interval time.Duration, ticks int, onTick, onExpire func()) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for fired := 0; fired < ticks; {
		select {
		case <-stop:
			return
		case <-tk.C:
		}
		// A cancel racing the tick wins.
		select {
		case <-stop:
			return
		default:
		}
		fired++
		if onTick != nil {
			onTick()
		}
	}
	select {
	case <-stop:
		return
	default:
	}
	if onExpire != nil {
		onExpire()
	}
}
