package clock

import (
	"sync"
	"time"
)

// Manual is a Clock driven by Advance. Tests and simulations use it to step
// sessions through time without sleeping.
type Manual struct {
	mu       sync.Mutex
	gen      int
	active   bool
	left     int
	interval time.Duration
	onTick   func()
	onExpire func()
	starts   int
}

// NewManual returns an idle manual clock.
func NewManual() *Manual {
	return &Manual{}
}

// Start implements Clock.
func (m *Manual) Start(interval time.Duration, ticks int, onTick, onExpire func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.active = true
	m.left = ticks
	m.interval = interval
	m.onTick = onTick
	m.onExpire = onExpire
	m.starts++
}

// Cancel implements Clock.
func (m *Manual) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

// Advance fires up to n ticks and returns how many fired. Callbacks run on
// the caller's goroutine with no clock lock held. Expiry is skipped when the
// final tick cancelled the clock.
func (m *Manual) Advance(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		m.mu.Lock()
		if !m.active || m.left <= 0 {
			m.mu.Unlock()
			break
		}
		m.left--
		gen := m.gen
		tick, expire := m.onTick, m.onExpire
		last := m.left == 0
		m.mu.Unlock()

		fired++
		if tick != nil {
			tick()
		}
		if !last {
			continue
		}

		m.mu.Lock()
		fire := m.active && m.gen == gen
		if fire {
			m.active = false
		}
		m.mu.Unlock()
		if fire && expire != nil {
			expire()
		}
	}
	return fired
}

// Active reports whether a countdown is running.
func (m *Manual) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Starts counts how many times Start was called.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Interval returns the interval passed to the last Start.
func (m *Manual) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}
