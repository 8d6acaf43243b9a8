package submit

import "errors"

// Sentinel kinds for submission errors.
var (
	ErrUnknownSink = errors.New("unknown sink")
	ErrSinkStatus  = errors.New("sink rejected result")
)
