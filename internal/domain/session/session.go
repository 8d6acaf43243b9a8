// Package session implements the game session state machine.
//
// A Session moves NotStarted -> Running -> Ended and never leaves Ended.
// Clock ticks spend seconds, taps spend attempts, and whichever budget runs
// out first (or finding every hotspot) ends the play. Every operation holds
// the session lock for its whole read-modify-write, so a tick and a tap that
// arrive together each see a consistent state. Operations that do not apply
// to the current state are ignored, never reported as errors.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/clock"
	"github.com/okian/spotcheck/internal/domain/hittest"
	"github.com/okian/spotcheck/internal/domain/model"
)

// EventType names a session event.
type EventType string

// Session events.
const (
	EventStarted EventType = "started"
	EventTick    EventType = "tick"
	EventTap     EventType = "tap"
	EventEnded   EventType = "ended"
)

// Event is emitted after every state change.
type Event struct {
	Type     EventType       `json:"type"`
	State    State           `json:"state"`
	Tap      *TapOutcome     `json:"tap,omitempty"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
}

// State is a read-only view of a session.
type State struct {
	ID               string         `json:"id"`
	Status           model.Status   `json:"status"`
	TapsRemaining    int            `json:"taps_remaining"`
	SecondsRemaining int            `json:"seconds_remaining"`
	TotalValid       int            `json:"total_valid"`
	FoundIDs         []int          `json:"found_ids"`
	MaxTaps          int            `json:"max_taps"`
	MaxSeconds       int            `json:"max_seconds"`
	MaxCorrect       int            `json:"max_correct"`
	StartedAt        time.Time      `json:"started_at"`
	Cause            model.Cause    `json:"cause,omitempty"`
	Identity         model.Identity `json:"identity"`
}

// TapOutcome is the feedback for one accepted tap.
type TapOutcome struct {
	Hit           bool        `json:"hit"`
	HotspotID     int         `json:"hotspot_id,omitempty"`
	Point         model.Point `json:"point"`
	TapsRemaining int         `json:"taps_remaining"`
	TotalValid    int         `json:"total_valid"`
	Ended         bool        `json:"ended"`
}

// Session is one timed play attempt.
type Session struct {
	mu sync.Mutex

	id           string
	hotspots     []model.Hotspot
	maxCorrect   int
	clk          clock.Clock
	now          func() time.Time
	observer     func(Event)
	identity     model.Identity
	maxTaps      int
	maxSeconds   int
	tickInterval time.Duration

	status           model.Status
	tapsRemaining    int
	secondsRemaining int
	found            map[int]struct{}
	foundOrder       []int
	startedAt        time.Time
	cause            model.Cause
	snapshot         *model.Snapshot
}

// New builds a session over cat, driven by clk.
func New(cat catalog.Catalog, clk clock.Clock, opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		hotspots:     cat.Hotspots(),
		maxCorrect:   cat.Size(),
		clk:          clk,
		now:          time.Now,
		maxTaps:      DefaultMaxTaps,
		maxSeconds:   DefaultMaxSeconds,
		tickInterval: defaultTickInterval,
		status:       model.StatusNotStarted,
		found:        make(map[int]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.tapsRemaining = s.maxTaps
	s.secondsRemaining = s.maxSeconds
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Start begins play and starts the clock.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != model.StatusNotStarted {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.tapsRemaining = s.maxTaps
	s.secondsRemaining = s.maxSeconds
	s.found = make(map[int]struct{})
	s.foundOrder = nil
	s.startedAt = s.now()
	s.status = model.StatusRunning
	s.clk.Start(s.tickInterval, s.maxSeconds, s.Tick, s.expire)
	ev := Event{Type: EventStarted, State: s.stateLocked()}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Tick spends one second. At zero the session ends with CauseTimeExpired.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.status != model.StatusRunning {
		s.mu.Unlock()
		return
	}
	if s.secondsRemaining > 0 {
		s.secondsRemaining--
	}
	events := []Event{{Type: EventTick, State: s.stateLocked()}}
	if s.secondsRemaining == 0 {
		if ev, ok := s.endLocked(model.CauseTimeExpired); ok {
			events = append(events, ev)
		}
	}
	s.mu.Unlock()

	s.emit(events...)
}

// Tap spends one attempt at p. The boolean is false when the tap was ignored
// because the session is not running or a budget is already spent.
func (s *Session) Tap(p model.Point) (TapOutcome, bool) {
	s.mu.Lock()
	if s.status != model.StatusRunning || s.tapsRemaining <= 0 || s.secondsRemaining <= 0 {
		s.mu.Unlock()
		return TapOutcome{}, false
	}

	s.tapsRemaining--
	out := TapOutcome{Point: p}
	if h, ok := hittest.Test(p, s.hotspots, s.found); ok {
		s.found[h.ID] = struct{}{}
		s.foundOrder = append(s.foundOrder, h.ID)
		out.Hit = true
		out.HotspotID = h.ID
	}
	out.TapsRemaining = s.tapsRemaining
	out.TotalValid = len(s.found)

	var end *Event
	switch {
	case len(s.found) >= s.maxCorrect:
		if ev, ok := s.endLocked(model.CauseAllFound); ok {
			end = &ev
		}
	case s.tapsRemaining == 0:
		if ev, ok := s.endLocked(model.CauseTapsExhausted); ok {
			end = &ev
		}
	}
	out.Ended = s.status == model.StatusEnded

	tapOut := out
	events := []Event{{Type: EventTap, State: s.stateLocked(), Tap: &tapOut}}
	if end != nil {
		events = append(events, *end)
	}
	s.mu.Unlock()

	s.emit(events...)
	return out, true
}

// End finishes the session with cause. Only the first call has an effect;
// it reports whether this call ended the session.
func (s *Session) End(cause model.Cause) bool {
	s.mu.Lock()
	ev, ok := s.endLocked(cause)
	s.mu.Unlock()

	if ok {
		s.emit(ev)
	}
	return ok
}

// State returns a consistent view of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Result returns the terminal snapshot once the session has ended.
func (s *Session) Result() (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return model.Snapshot{}, false
	}
	snap := *s.snapshot
	snap.FoundIDs = append([]int(nil), s.snapshot.FoundIDs...)
	return snap, true
}

func (s *Session) expire() {
	s.End(model.CauseTimeExpired)
}

func (s *Session) endLocked(cause model.Cause) (Event, bool) {
	if s.status == model.StatusEnded {
		return Event{}, false
	}
	s.clk.Cancel()
	s.status = model.StatusEnded
	s.cause = cause

	ended := s.now()
	var elapsed int64
	if !s.startedAt.IsZero() {
		elapsed = ended.Sub(s.startedAt).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}
	}
	snap := model.Snapshot{
		SessionID:        s.id,
		Cause:            cause,
		TotalValid:       len(s.found),
		FoundIDs:         s.sortedFound(),
		SecondsRemaining: s.secondsRemaining,
		TapsRemaining:    s.tapsRemaining,
		MaxTaps:          s.maxTaps,
		MaxSeconds:       s.maxSeconds,
		CompletionTimeMs: elapsed,
		StartedAt:        s.startedAt,
		EndedAt:          ended,
		Identity:         s.identity,
	}
	s.snapshot = &snap

	evSnap := snap
	return Event{Type: EventEnded, State: s.stateLocked(), Snapshot: &evSnap}, true
}

func (s *Session) stateLocked() State {
	return State{
		ID:               s.id,
		Status:           s.status,
		TapsRemaining:    s.tapsRemaining,
		SecondsRemaining: s.secondsRemaining,
		TotalValid:       len(s.found),
		FoundIDs:         s.sortedFound(),
		MaxTaps:          s.maxTaps,
		MaxSeconds:       s.maxSeconds,
		MaxCorrect:       s.maxCorrect,
		StartedAt:        s.startedAt,
		Cause:            s.cause,
		Identity:         s.identity,
	}
}

func (s *Session) sortedFound() []int {
	ids := make([]int, len(s.foundOrder))
	copy(ids, s.foundOrder)
	sort.Ints(ids)
	return ids
}

func (s *Session) emit(events ...Event) {
	if s.observer == nil {
		return
	}
	for _, ev := range events {
		s.observer(ev)
	}
}
