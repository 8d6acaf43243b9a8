package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/identity"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrShare      = errors.New("share code unavailable")
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// opError tags err with the handler that produced it.
func opError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps a service error onto a status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrInvalidIdentity):
		return http.StatusBadRequest, "invalid_identity"
	case errors.Is(err, catalog.ErrDegenerateStage):
		return http.StatusBadRequest, "degenerate_stage"
	case errors.Is(err, service.ErrOutsideStage):
		return http.StatusBadRequest, "outside_stage"
	case errors.Is(err, service.ErrInvalidTap), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotEnded):
		return http.StatusConflict, "not_ended"
	case errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
