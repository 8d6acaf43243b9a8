package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/spotcheck/internal/adapters/repository/kv"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/okian/spotcheck/pkg/metrics"
)

// Leaderboard is a bounded, score-ordered list of results persisted as one
// JSON payload under a fixed backend key.
//
// Ordering: TotalScore DESC; equal scores keep insertion order, so an
// earlier result outranks a later one with the same score.
type Leaderboard struct {
	mu           sync.RWMutex
	backend      kv.Backend
	key          string
	capacity     int
	defaultLimit int
	log          logger.Logger
	entries      []model.ResultRecord
	closed       bool
}

var _ Store = (*Leaderboard)(nil)

// NewLeaderboard loads the board stored in backend. A missing or unreadable
// payload yields an empty board; it is logged, never returned.
func NewLeaderboard(ctx context.Context, backend kv.Backend, opts ...Option) *Leaderboard {
	l := &Leaderboard{
		backend:      backend,
		key:          DefaultKey,
		capacity:     DefaultCapacity,
		defaultLimit: DefaultListLimit,
		log:          logger.Get().Named("leaderboard"),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.entries = l.load(ctx)
	metrics.UpdateLeaderboardSize(len(l.entries))
	return l
}

func (l *Leaderboard) load(ctx context.Context) []model.ResultRecord {
	raw, ok, err := l.backend.Get(ctx, l.key)
	if err != nil {
		l.log.Warn(ctx, "leaderboard unreadable, starting empty", logger.String("key", l.key), logger.Error(err))
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}

	var entries []model.ResultRecord
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.log.Warn(ctx, "leaderboard payload corrupt, starting empty", logger.String("key", l.key), logger.Error(err))
		return nil
	}

	sortEntries(entries)
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	l.log.Info(ctx, "leaderboard loaded", logger.Int("entries", len(entries)))
	return entries
}

// Record inserts rec, keeps the best capacity entries and writes the board
// back. On a write failure the in-memory board keeps the new entry and the
// rank is returned together with an error wrapping ErrPersist.
func (l *Leaderboard) Record(ctx context.Context, rec model.ResultRecord) (int, error) {
	if rec.ID == "" {
		return 0, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}

	for i := range l.entries {
		if l.entries[i].ID == rec.ID {
			return i + 1, nil
		}
	}

	next := make([]model.ResultRecord, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	next = append(next, rec)
	sortEntries(next)
	if len(next) > l.capacity {
		next = next[:l.capacity]
	}

	rank := 0
	for i := range next {
		if next[i].ID == rec.ID {
			rank = i + 1
			break
		}
	}

	l.entries = next
	metrics.RecordLeaderboardRecord()
	metrics.UpdateLeaderboardSize(len(next))

	if err := l.persistLocked(ctx); err != nil {
		metrics.RecordLeaderboardPersistError()
		l.log.Error(ctx, "leaderboard persist failed", logger.String("key", l.key), logger.Error(err))
		return rank, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return rank, nil
}

func (l *Leaderboard) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(l.entries)
	if err != nil {
		return err
	}
	return l.backend.Put(ctx, l.key, payload)
}

// List returns up to limit entries with their ranks.
func (l *Leaderboard) List(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = l.defaultLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Entry, limit)
	for i := 0; i < limit; i++ {
		out[i] = Entry{Rank: i + 1, ResultRecord: l.entries[i]}
	}
	return out, nil
}

// Count returns the number of retained entries.
func (l *Leaderboard) Count(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close closes the backend. Further writes fail with ErrClosed.
func (l *Leaderboard) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.backend.Close()
}

func sortEntries(entries []model.ResultRecord) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
}
