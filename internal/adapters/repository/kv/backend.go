// Package kv provides the small key/value persistence the leaderboard sits
// on. A Backend stores opaque payloads under string keys.
package kv

import (
	"context"
	"errors"
)

// Sentinel kinds for backend errors.
var (
	ErrClosed            = errors.New("kv backend closed")
	ErrUnsupportedEngine = errors.New("unsupported store engine")
	ErrEmptyKey          = errors.New("empty key")
)

// Backend persists payloads by key.
type Backend interface {
	// Get returns the payload for key. The boolean is false when nothing is
	// stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put replaces the payload under key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
