package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
)

const maxBodyBytes = 4 << 10

// createSessionRequest is the body of POST /sessions.
type createSessionRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionsHandler serves the session lifecycle.
type SessionsHandler struct {
	game Game
	log  logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(game Game, log logger.Logger) *SessionsHandler {
	return &SessionsHandler{game: game, log: log}
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"

	var req createSessionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", opError(op, err))
		return
	}

	view, err := h.game.StartSession(r.Context(), req.Name, req.Email)
	if err != nil {
		writeServiceError(w, opError(op, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"

	view, err := h.game.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, opError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"

	if err := h.game.Discard(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, opError(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTap handles POST /sessions/{id}/taps.
func (h *SessionsHandler) HandleTap(w http.ResponseWriter, r *http.Request) {
	const op = "api.tap"

	var req types.TapRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", opError(op, err))
		return
	}

	resp, err := h.game.Tap(r.Context(), r.PathValue("id"), req)
	if err != nil {
		status, _ := classify(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "tap failed", logger.String("session_id", r.PathValue("id")), logger.Error(err))
		}
		writeServiceError(w, opError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleResult handles GET /sessions/{id}/result.
func (h *SessionsHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_result"

	res, err := h.game.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, opError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
