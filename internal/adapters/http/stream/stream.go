// Package stream pushes live session events to WebSocket clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/session"
	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/okian/spotcheck/pkg/metrics"
)

// Envelope types besides the session event types.
const (
	TypeState = "state"
)

// Envelope is one message on the wire.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Source is what the handler needs from the game service.
type Source interface {
	Session(ctx context.Context, id string) (types.SessionView, error)
	Subscribe(id string) (<-chan session.Event, func(), error)
}

// Handler upgrades GET /sessions/{id}/stream and forwards the session's
// events until it ends or the client goes away.
type Handler struct {
	src      Source
	upgrader websocket.Upgrader
	clients  atomic.Int64

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
	log        logger.Logger
}

// NewHandler creates a stream handler over src.
func NewHandler(src Source, opts ...Option) *Handler {
	h := &Handler{
		src:       src,
		writeWait: defaultWriteWait,
		pongWait:  defaultPongWait,
		log:       logger.Get().Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// kiosk pages are served from other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pingPeriod <= 0 || h.pingPeriod >= h.pongWait {
		h.pingPeriod = (h.pongWait * 9) / 10
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Handler) Clients() int {
	return int(h.clients.Load())
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// subscribe before reading the state so no event falls in between
	events, cancel, err := h.src.Subscribe(id)
	if err != nil {
		replyError(w, err)
		return
	}
	defer cancel()

	view, err := h.src.Session(r.Context(), id)
	if err != nil {
		replyError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		h.log.Warn(r.Context(), "ws upgrade failed", logger.String("session_id", id), logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.UpdateStreamClients(int(h.clients.Add(1)))
	defer func() { metrics.UpdateStreamClients(int(h.clients.Add(-1))) }()

	gone := make(chan struct{})
	go h.readPump(conn, gone)

	h.log.Debug(r.Context(), "stream opened", logger.String("session_id", id))
	h.writePump(r.Context(), conn, view, events, gone)
	h.log.Debug(r.Context(), "stream closed", logger.String("session_id", id))
}

// readPump only services control frames. It closes gone when the client
// disconnects.
func (h *Handler) readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, view types.SessionView, events <-chan session.Event, gone <-chan struct{}) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	if err := h.send(conn, Envelope{Type: TypeState, Data: view}); err != nil {
		return
	}
	if view.Status == model.StatusEnded {
		h.close(conn, "session ended")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				h.close(conn, "session closed")
				return
			}
			if err := h.send(conn, Envelope{Type: string(ev.Type), Data: ev}); err != nil {
				return
			}
			if ev.Type == session.EventEnded {
				h.close(conn, "session ended")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		h.log.Error(context.Background(), "marshal envelope", logger.String("type", env.Type), logger.Error(err))
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Handler) close(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
}

func replyError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}
