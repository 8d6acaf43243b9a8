package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotEnded        = errors.New("session has not ended")
	ErrInvalidTap      = errors.New("tap needs x,y or client coordinates with a stage")
	ErrOutsideStage    = errors.New("tap outside the stage")
	ErrStopped         = errors.New("service stopped")
)
