// Package repository holds the leaderboard of finished plays.
package repository

import (
	"context"

	"github.com/okian/spotcheck/internal/domain/model"
)

// Entry is a leaderboard row: a stored result plus its 1-based rank.
type Entry struct {
	Rank int
	model.ResultRecord
}

// Store provides read/write access to the leaderboard.
type Store interface {
	// Record inserts rec and persists the board. It returns rec's 1-based
	// rank, or 0 when rec fell outside the retained capacity.
	Record(ctx context.Context, rec model.ResultRecord) (int, error)

	// List returns the top limit entries ordered by score desc. A limit <= 0
	// selects the default page size.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Count returns the number of retained entries.
	Count(ctx context.Context) int

	Close() error
}
