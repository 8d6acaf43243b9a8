// Package dedupe tracks which result deliveries have already been attempted.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records delivery keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the write are one atomic step.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key. Used when a delivery was reserved but never
	// handed to a worker, so a later submit may try again.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// Key builds the delivery key for one result and one sink.
func Key(resultID, sink string) string {
	return resultID + "/" + sink
}

// inMemoryDeduper keeps the most recent maxSize keys. The oldest key is
// evicted first once the window is full; maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> slot in order
	order   []string       // ring of keys, oldest at head
	head    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper. The default window is 4096 keys.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 4096,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	if len(d.order) < d.maxSize {
		d.seen[key] = len(d.order)
		d.order = append(d.order, key)
		return false
	}

	// full: overwrite the oldest slot
	slot := d.head
	if old := d.order[slot]; old != "" {
		delete(d.seen, old)
	}
	d.order[slot] = key
	d.seen[key] = slot
	d.head = (d.head + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if slot >= 0 {
		// leave a hole; the slot is reused when the ring wraps
		d.order[slot] = ""
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
