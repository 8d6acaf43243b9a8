// Package submit forwards finished results to remote sinks.
//
// Delivery is fire-and-forget: Submit queues one job per sink and returns at
// once, a worker pool performs the requests, and failures are logged and
// counted but never retried or surfaced to the player.
package submit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/spotcheck/internal/adapters/mq/queue"
	"github.com/okian/spotcheck/internal/adapters/mq/worker"
	"github.com/okian/spotcheck/internal/domain/dedupe"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/okian/spotcheck/pkg/metrics"
)

const (
	defaultQueueSize = 64
	defaultWorkers   = 2
	defaultTimeout   = 10 * time.Second
)

// Submission outcomes as reported to metrics.
const (
	OutcomeSent      = "sent"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
	OutcomeDuplicate = "duplicate"
)

// Submitter fans results out to its sinks.
type Submitter struct {
	sinks map[string]Sink
	names []string

	queue *queue.InMemoryQueue
	pool  *worker.Pool
	seen  dedupe.Deduper

	queueSize int
	workers   int
	timeout   time.Duration
	log       logger.Logger

	mu     sync.RWMutex
	closed bool
}

// New builds a Submitter and starts its workers. With no sinks the
// submitter starts nothing and Submit is a no-op.
func New(sinks []Sink, opts ...Option) *Submitter {
	s := &Submitter{
		sinks:     make(map[string]Sink, len(sinks)),
		queueSize: defaultQueueSize,
		workers:   defaultWorkers,
		timeout:   defaultTimeout,
		log:       logger.Get().Named("submit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seen == nil {
		s.seen = dedupe.NewInMemoryDeduper()
	}

	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if _, dup := s.sinks[sink.Name()]; dup {
			s.log.Warn(context.Background(), "duplicate sink name ignored", logger.String("sink", sink.Name()))
			continue
		}
		s.sinks[sink.Name()] = sink
		s.names = append(s.names, sink.Name())
	}
	if len(s.sinks) == 0 {
		return s
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workers, s.queue, worker.HandlerFunc(s.deliver), worker.WithLogger(s.log))
	s.pool.Start(context.Background())
	return s
}

// Sinks returns the configured sink names in registration order.
func (s *Submitter) Sinks() []string {
	return append([]string(nil), s.names...)
}

// Pending returns the number of queued deliveries.
func (s *Submitter) Pending() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Len(context.Background())
}

// Submit queues rec for every sink. It never blocks and never fails: a
// delivery that was already attempted is skipped, and a full queue drops
// the delivery.
func (s *Submitter) Submit(ctx context.Context, rec model.ResultRecord) {
	if len(s.sinks) == 0 {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn(ctx, "submit after close", logger.String("result_id", rec.ID))
		return
	}

	// the caller's ctx may end with its request
	enqueueCtx := context.WithoutCancel(ctx)
	for _, name := range s.names {
		key := dedupe.Key(rec.ID, name)
		if s.seen.SeenAndRecord(ctx, key) {
			metrics.RecordSubmission(name, OutcomeDuplicate)
			s.log.Debug(ctx, "result already submitted", logger.String("key", key))
			continue
		}

		err := s.queue.Enqueue(enqueueCtx, queue.Job{Record: rec, Sink: name})
		if err != nil {
			s.seen.Unrecord(ctx, key)
			metrics.RecordSubmission(name, OutcomeDropped)
			s.log.Warn(ctx, "result dropped", logger.String("key", key), logger.Error(err))
		}
	}
}

func (s *Submitter) deliver(ctx context.Context, j queue.Job) error {
	sink, ok := s.sinks[j.Sink]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSink, j.Sink)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := sink.Send(ctx, j.Record)
	metrics.RecordDeliveryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSubmission(j.Sink, OutcomeFailed)
		return fmt.Errorf("send %s: %w", j.Key(), err)
	}

	metrics.RecordSubmission(j.Sink, OutcomeSent)
	s.log.Debug(ctx, "result delivered",
		logger.String("key", j.Key()),
		logger.Duration("queued", start.Sub(j.EnqueuedAt)),
	)
	return nil
}

// Close stops accepting results and waits for pending deliveries until ctx
// is done.
func (s *Submitter) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.pool == nil {
		return nil
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("drain deliveries: %w", err)
	}
	return nil
}
