package session

import "errors"

// Sentinel kinds for session errors. Taps and ticks outside a running session
// are ignored rather than reported.
var (
	ErrAlreadyStarted = errors.New("session already started")
)
