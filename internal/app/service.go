// Package service wires sessions, scoring, the leaderboard and result
// submission into the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/spotcheck/internal/adapters/repository"
	"github.com/okian/spotcheck/internal/adapters/repository/kv"
	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/clock"
	"github.com/okian/spotcheck/internal/domain/identity"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/scoring"
	"github.com/okian/spotcheck/internal/domain/session"
	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/okian/spotcheck/pkg/metrics"
)

const (
	defaultCountdown   = 3 * time.Second
	defaultSessionTTL  = 10 * time.Minute
	subscriberBuffer   = 32
	janitorMinInterval = time.Second
)

// ResultSubmitter forwards a recorded result to remote sinks. Submit must
// not block.
type ResultSubmitter interface {
	Submit(ctx context.Context, rec model.ResultRecord)
}

// entry is the service's bookkeeping around one session.
type entry struct {
	sess      *session.Session
	createdAt time.Time
	startsAt  time.Time
	timer     *time.Timer

	finalize sync.Once

	mu      sync.Mutex
	result  *types.ResultView
	endedAt time.Time
	subs    map[int]chan session.Event
	nextSub int
	closed  bool
}

// Service implements the game operations.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	catalog    catalog.Catalog
	profile    Profile
	maxTaps    int
	maxSeconds int
	store      repository.Store
	submitter  ResultSubmitter
	newClock   clock.Factory
	countdown  time.Duration
	now        func() time.Time
	sessionTTL time.Duration

	started  atomic.Int64
	ended    atomic.Int64
	bootTime time.Time

	running bool
	stopCh  chan struct{}
	stopped atomic.Bool

	logger logger.Logger
}

// New constructs a Service. Without WithStore a leaderboard profile keeps
// its board in memory.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:   make(map[string]*entry),
		catalog:    catalog.Default(),
		profile:    ProfileLeaderboard,
		newClock:   clock.TickerFactory,
		countdown:  defaultCountdown,
		now:        time.Now,
		sessionTTL: defaultSessionTTL,
		stopCh:     make(chan struct{}),
		logger:     logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxTaps <= 0 {
		s.maxTaps = s.profile.MaxTaps
	}
	if s.maxSeconds <= 0 {
		s.maxSeconds = s.profile.MaxSeconds
	}
	if s.store == nil && s.profile.Leaderboard {
		s.store = repository.NewLeaderboard(context.Background(), kv.NewMemory(), repository.WithLogger(s.logger))
	}
	s.bootTime = s.now()
	return s
}

// Start launches the background eviction of ended sessions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.stopped.Load() {
		return ErrStopped
	}
	s.running = true

	interval := s.sessionTTL / 2
	if interval < janitorMinInterval {
		interval = janitorMinInterval
	}
	go s.janitor(ctx, interval)

	s.logger.Info(ctx, "game service started",
		logger.String("profile", s.profile.Name),
		logger.Int("max_taps", s.maxTaps),
		logger.Int("max_seconds", s.maxSeconds),
		logger.Int("hotspots", s.catalog.Size()),
		logger.Duration("countdown", s.countdown),
	)
	return nil
}

func (s *Service) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.EvictExpired(); n > 0 {
				s.logger.Debug(ctx, "evicted ended sessions", logger.Int("count", n))
			}
		}
	}
}

// Stop abandons live sessions, drains pending submissions and closes the
// store. The service cannot be restarted.
func (s *Service) Stop(ctx context.Context) error {
	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopCh)

	s.mu.Lock()
	live := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		live = append(live, e)
	}
	s.running = false
	s.mu.Unlock()

	for _, e := range live {
		if e.timer != nil {
			e.timer.Stop()
		}
		e.sess.End(model.CauseAbandoned)
	}

	var errs []error
	if closer, ok := s.submitter.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.Info(ctx, "game service stopped", logger.Int("abandoned", len(live)))
	return errors.Join(errs...)
}

// StartSession creates a session for the player. When the profile requires
// identity the details are validated first and no session is created on
// failure. Play begins after the countdown.
func (s *Service) StartSession(ctx context.Context, name, email string) (types.SessionView, error) {
	if s.stopped.Load() {
		return types.SessionView{}, ErrStopped
	}

	var who model.Identity
	if s.profile.RequireIdentity {
		id, err := identity.Validate(name, email)
		if err != nil {
			return types.SessionView{}, err
		}
		who = id
	}

	id := uuid.NewString()
	now := s.now()
	e := &entry{createdAt: now, subs: make(map[int]chan session.Event)}
	e.sess = session.New(s.catalog, s.newClock(),
		session.WithID(id),
		session.WithLimits(s.maxTaps, s.maxSeconds),
		session.WithIdentity(who),
		session.WithNow(s.now),
		session.WithObserver(func(ev session.Event) { s.onEvent(e, ev) }),
	)

	s.mu.Lock()
	s.sessions[id] = e
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateActiveSessions(active)

	if s.countdown > 0 {
		e.startsAt = now.Add(s.countdown)
		e.timer = time.AfterFunc(s.countdown, func() { s.begin(context.Background(), e) })
	} else {
		s.begin(ctx, e)
	}

	s.logger.Info(ctx, "session created",
		logger.String("session_id", id),
		logger.String("player", who.Name),
		logger.Duration("countdown", s.countdown),
	)
	return s.view(e), nil
}

func (s *Service) begin(ctx context.Context, e *entry) {
	if err := e.sess.Start(); err != nil {
		// discarded during the countdown
		s.logger.Debug(ctx, "session not started", logger.String("session_id", e.sess.ID()), logger.Error(err))
		return
	}
	s.started.Add(1)
	metrics.RecordSessionStarted()
}

// Tap applies one tap to a session.
func (s *Service) Tap(ctx context.Context, id string, req types.TapRequest) (types.TapResponse, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.TapResponse{}, err
	}

	p, err := resolvePoint(req)
	if err != nil {
		return types.TapResponse{}, err
	}

	out, ok := e.sess.Tap(p)
	resp := types.TapResponse{Accepted: ok, Point: p}
	switch {
	case !ok:
		metrics.RecordTap("ignored")
		st := e.sess.State()
		resp.TapsRemaining = st.TapsRemaining
		resp.TotalValid = st.TotalValid
		resp.Ended = st.Status == model.StatusEnded
	case out.Hit:
		metrics.RecordTap("hit")
	default:
		metrics.RecordTap("miss")
	}
	if ok {
		resp.Hit = out.Hit
		resp.HotspotID = out.HotspotID
		resp.TapsRemaining = out.TapsRemaining
		resp.TotalValid = out.TotalValid
		resp.Ended = out.Ended
	}
	resp.Session = s.view(e)

	s.logger.Debug(ctx, "tap",
		logger.String("session_id", id),
		logger.Bool("accepted", ok),
		logger.Bool("hit", resp.Hit),
		logger.Float64("x", p.X),
		logger.Float64("y", p.Y),
	)
	return resp, nil
}

func resolvePoint(req types.TapRequest) (model.Point, error) {
	var p model.Point
	switch {
	case req.X != nil && req.Y != nil:
		p = model.Point{X: *req.X, Y: *req.Y}
	case req.ClientX != nil && req.ClientY != nil && req.Stage != nil:
		np, err := catalog.Normalize(*req.ClientX, *req.ClientY, catalog.Rect{
			Left:   req.Stage.Left,
			Top:    req.Stage.Top,
			Width:  req.Stage.Width,
			Height: req.Stage.Height,
		})
		if err != nil {
			return model.Point{}, err
		}
		p = np
	default:
		return model.Point{}, ErrInvalidTap
	}
	if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
		return model.Point{}, fmt.Errorf("%w: (%.2f, %.2f)", ErrOutsideStage, p.X, p.Y)
	}
	return p, nil
}

// Session returns the current view of a session.
func (s *Service) Session(_ context.Context, id string) (types.SessionView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.SessionView{}, err
	}
	return s.view(e), nil
}

// Result returns the scored outcome of an ended session.
func (s *Service) Result(ctx context.Context, id string) (types.ResultView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.ResultView{}, err
	}
	if _, ended := e.sess.Result(); !ended {
		return types.ResultView{}, ErrNotEnded
	}
	s.finish(ctx, e)

	e.mu.Lock()
	defer e.mu.Unlock()
	res := *e.result
	res.FoundIDs = append([]int(nil), e.result.FoundIDs...)
	return res, nil
}

// Discard abandons a session and forgets it. Abandoned plays are never
// recorded.
func (s *Service) Discard(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	active := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	metrics.UpdateActiveSessions(active)

	if e.timer != nil {
		e.timer.Stop()
	}
	e.sess.End(model.CauseAbandoned)
	e.closeSubscribers()

	s.logger.Info(ctx, "session discarded", logger.String("session_id", id))
	return nil
}

// EvictExpired drops sessions that ended more than the TTL ago. It returns
// the number evicted.
func (s *Service) EvictExpired() int {
	cutoff := s.now().Add(-s.sessionTTL)

	s.mu.Lock()
	var evicted []*entry
	for id, e := range s.sessions {
		e.mu.Lock()
		expired := !e.endedAt.IsZero() && e.endedAt.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			evicted = append(evicted, e)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for _, e := range evicted {
		e.closeSubscribers()
	}
	if len(evicted) > 0 {
		metrics.UpdateActiveSessions(active)
	}
	return len(evicted)
}

// Leaderboard returns the top limit entries. Without a store it is empty.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if s.store == nil {
		return []types.LeaderboardEntry{}, nil
	}
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = types.LeaderboardEntry{
			Rank:             e.Rank,
			Name:             e.Name,
			IssuesFound:      e.IssuesFound,
			TimeRemaining:    e.TimeRemainingSeconds,
			TotalScore:       e.TotalScore,
			CompletionTimeMs: e.CompletionTimeMs,
			Timestamp:        e.Timestamp,
		}
	}
	return out, nil
}

// Catalog describes the stage and the rules in force.
func (s *Service) Catalog() types.CatalogView {
	return types.CatalogView{
		Profile:    s.profile.Name,
		Debug:      s.catalog.Debug(),
		MaxTaps:    s.maxTaps,
		MaxSeconds: s.maxSeconds,
		MaxCorrect: s.catalog.Size(),
		Countdown:  int(s.countdown / time.Second),
		Identity:   s.profile.RequireIdentity,
		Hotspots:   s.catalog.Hotspots(),
	}
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() types.Stats {
	s.mu.RLock()
	active := len(s.sessions)
	running := 0
	for _, e := range s.sessions {
		if e.sess.State().Status == model.StatusRunning {
			running++
		}
	}
	s.mu.RUnlock()

	st := types.Stats{
		Profile:         s.profile.Name,
		ActiveSessions:  active,
		RunningSessions: running,
		SessionsStarted: s.started.Load(),
		SessionsEnded:   s.ended.Load(),
		Uptime:          s.now().Sub(s.bootTime).Round(time.Second).String(),
	}
	if s.store != nil {
		st.LeaderboardSize = s.store.Count(context.Background())
	}
	if p, ok := s.submitter.(interface{ Pending() int }); ok {
		st.SubmitQueueDepth = p.Pending()
	}
	metrics.UpdateActiveSessions(active)
	return st
}

// Subscribe streams the events of a session. The channel is closed when the
// session is discarded or evicted, or when cancel is called. Slow readers
// miss events rather than stall the game.
func (s *Service) Subscribe(id string) (<-chan session.Event, func(), error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan session.Event, subscriberBuffer)
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, nil, ErrSessionNotFound
	}
	key := e.nextSub
	e.nextSub++
	e.subs[key] = ch
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[key]; ok {
			delete(e.subs, key)
			close(c)
		}
	}
	return ch, cancel, nil
}

func (s *Service) onEvent(e *entry, ev session.Event) {
	if ev.Type == session.EventEnded {
		s.ended.Add(1)
		metrics.RecordSessionEnded(string(ev.State.Cause))
		s.finish(context.Background(), e)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		offer(ch, ev)
	}
}

// offer delivers ev without blocking. A full buffer drops ev, except for the
// final event which evicts the oldest pending one instead.
func offer(ch chan session.Event, ev session.Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	if ev.Type != session.EventEnded {
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

// finish scores an ended session once and, when the rules allow, records
// and forwards the result.
func (s *Service) finish(ctx context.Context, e *entry) {
	e.finalize.Do(func() {
		snap, ok := e.sess.Result()
		if !ok {
			return
		}
		res := scoring.Compute(snap, s.catalog.Size())
		view := types.ResultView{
			SessionID:        snap.SessionID,
			Cause:            snap.Cause,
			IssuesFound:      res.IssuesFound,
			MaxCorrect:       res.MaxCorrect,
			TimeRemaining:    res.TimeRemainingSeconds,
			TimeBonus:        res.TimeBonus,
			TotalScore:       res.TotalScore,
			Verdict:          string(res.Verdict),
			Headline:         res.Headline,
			CompletionTimeMs: snap.CompletionTimeMs,
			FoundIDs:         snap.FoundIDs,
		}
		if snap.Cause != model.CauseAbandoned {
			metrics.RecordFinalScore(res.TotalScore)
		}

		if s.shouldRecord(snap, res) {
			rec := model.ResultRecord{
				ID:                   snap.SessionID,
				Name:                 snap.Identity.Name,
				Email:                snap.Identity.Email,
				IssuesFound:          res.IssuesFound,
				TimeRemainingSeconds: res.TimeRemainingSeconds,
				TotalScore:           res.TotalScore,
				CompletionTimeMs:     snap.CompletionTimeMs,
				Timestamp:            snap.EndedAt.UTC().Format(time.RFC3339),
			}
			rank, err := s.store.Record(ctx, rec)
			if err != nil {
				s.logger.Error(ctx, "record result", logger.String("session_id", rec.ID), logger.Error(err))
			}
			view.Rank = rank
			view.Recorded = rank > 0
			if s.submitter != nil {
				s.submitter.Submit(ctx, rec)
			}
		}

		e.mu.Lock()
		e.result = &view
		e.endedAt = s.now()
		e.mu.Unlock()

		s.logger.Info(ctx, "session ended",
			logger.String("session_id", snap.SessionID),
			logger.String("cause", string(snap.Cause)),
			logger.Int("found", res.IssuesFound),
			logger.Int("score", res.TotalScore),
			logger.Int("rank", view.Rank),
		)
	})
}

func (s *Service) shouldRecord(snap model.Snapshot, res scoring.Result) bool {
	return s.profile.Leaderboard &&
		s.store != nil &&
		snap.Cause != model.CauseAbandoned &&
		!snap.Identity.IsZero() &&
		res.TotalScore > 0
}

func (s *Service) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

func (s *Service) view(e *entry) types.SessionView {
	st := e.sess.State()
	v := types.SessionView{
		ID:               st.ID,
		Status:           st.Status,
		TapsRemaining:    st.TapsRemaining,
		SecondsRemaining: st.SecondsRemaining,
		TotalValid:       st.TotalValid,
		FoundIDs:         st.FoundIDs,
		MaxTaps:          st.MaxTaps,
		MaxSeconds:       st.MaxSeconds,
		MaxCorrect:       st.MaxCorrect,
		Cause:            st.Cause,
		Player:           st.Identity.Name,
	}
	if st.Status == model.StatusNotStarted && !e.startsAt.IsZero() {
		t := e.startsAt
		v.StartsAt = &t
	}
	if !st.StartedAt.IsZero() {
		t := st.StartedAt
		v.StartedAt = &t
	}
	return v
}

func (e *entry) closeSubscribers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for k, ch := range e.subs {
		delete(e.subs, k)
		close(ch)
	}
}
