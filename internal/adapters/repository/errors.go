package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrInvalidRecord = errors.New("invalid result record")
	ErrPersist       = errors.New("leaderboard persist failed")
	ErrClosed        = errors.New("leaderboard closed")
)
