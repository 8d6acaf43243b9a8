// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
)

// Game is the set of service operations the HTTP handlers need.
type Game interface {
	StartSession(ctx context.Context, name, email string) (types.SessionView, error)
	Tap(ctx context.Context, id string, req types.TapRequest) (types.TapResponse, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	Result(ctx context.Context, id string) (types.ResultView, error)
	Discard(ctx context.Context, id string) error
	Leaderboard(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)
	Catalog() types.CatalogView
	Stats() types.Stats
}

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
	catalogHandler     *CatalogHandler
	shareHandler       *ShareHandler
	stream             http.Handler
	log                logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(game Game, opts ...Option) *Server {
	cfg := options{
		maxLimit:  defaultMaxLimit,
		publicURL: defaultPublicURL,
		qrSize:    defaultQRSize,
		log:       logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(game),
		sessionsHandler:    NewSessionsHandler(game, cfg.log),
		leaderboardHandler: NewLeaderboardHandler(game, cfg.maxLimit),
		catalogHandler:     NewCatalogHandler(game),
		shareHandler:       NewShareHandler(cfg.publicURL, cfg.qrSize),
		stream:             cfg.stream,
		log:                cfg.log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions_create"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions_get"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "sessions_delete"))
	mux.HandleFunc("POST /sessions/{id}/taps", MetricsMiddleware(s.sessionsHandler.HandleTap, "sessions_tap"))
	mux.HandleFunc("GET /sessions/{id}/result", MetricsMiddleware(s.sessionsHandler.HandleResult, "sessions_result"))
	if s.stream != nil {
		// upgraded connections must not be wrapped
		mux.Handle("GET /sessions/{id}/stream", s.stream)
	}

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
	mux.HandleFunc("GET /share.png", MetricsMiddleware(s.shareHandler.HandleShare, "share"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError renders err with the status its kind maps to.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
