package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/spotcheck/internal/adapters/http/api"
	"github.com/okian/spotcheck/internal/adapters/http/stream"
	"github.com/okian/spotcheck/internal/adapters/http/swagger"
	"github.com/okian/spotcheck/internal/adapters/repository"
	"github.com/okian/spotcheck/internal/adapters/repository/kv"
	"github.com/okian/spotcheck/internal/adapters/submit"
	app "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/config"
	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/okian/spotcheck/pkg/metrics"
)

// application is the assembled process: the game service and the routes in
// front of it.
type application struct {
	svc       *app.Service
	submitter *submit.Submitter
	stream    *stream.Handler
	mux       *http.ServeMux
}

// build assembles every component from cfg.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	profile, ok := app.ProfileByName(cfg.Profile)
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q", config.ErrInvalidConfig, cfg.Profile)
	}

	cat, err := catalog.Load(ctx, cfg.CatalogPath, cfg.Debug)
	if err != nil {
		return nil, err
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithCatalog(cat),
		app.WithProfile(profile),
		app.WithLimits(cfg.MaxTaps, cfg.MaxSeconds),
		app.WithCountdown(time.Duration(cfg.CountdownSeconds) * time.Second),
		app.WithSessionTTL(time.Duration(cfg.SessionTTLSeconds) * time.Second),
	}

	var sub *submit.Submitter
	if profile.Leaderboard {
		backend, err := kv.NewByEngine(cfg.StoreEngine, cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open leaderboard store: %w", err)
		}
		store := repository.NewLeaderboard(ctx, backend,
			repository.WithCapacity(cfg.LeaderboardCapacity),
			repository.WithDefaultLimit(cfg.LeaderboardDefaultLimit),
			repository.WithLogger(log.Named("leaderboard")),
		)
		sub = submit.New(buildSinks(cfg),
			submit.WithLogger(log.Named("submit")),
			submit.WithQueueSize(cfg.SubmitQueueSize),
			submit.WithWorkers(cfg.SubmitWorkers),
			submit.WithTimeout(time.Duration(cfg.SubmitTimeoutMS)*time.Millisecond),
		)
		opts = append(opts, app.WithStore(store), app.WithSubmitter(sub))
	}

	svc := app.New(opts...)
	events := stream.NewHandler(svc, stream.WithLogger(log.Named("stream")))

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithLogger(log.Named("api")),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithPublicURL(cfg.PublicURL),
		api.WithStream(events),
	).Register(ctx, mux)

	return &application{svc: svc, submitter: sub, stream: events, mux: mux}, nil
}

// buildSinks returns the result sinks enabled by cfg. None is valid.
func buildSinks(cfg *config.Config) []submit.Sink {
	client := &http.Client{Timeout: time.Duration(cfg.SubmitTimeoutMS) * time.Millisecond}

	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgent()
	}

	var sinks []submit.Sink
	if cfg.ScoreEndpointURL != "" {
		sinks = append(sinks, submit.NewScoreEndpoint(cfg.ScoreEndpointURL, client, submit.WithUserAgent(ua)))
	}
	if cfg.FormEndpointURL != "" {
		sinks = append(sinks, submit.NewFormSink(cfg.FormEndpointURL, submit.FormFieldsFromMap(cfg.FormFields), client, submit.WithUserAgent(ua)))
	}
	return sinks
}

func userAgent() string { return "spotcheck/" + version }

func (rt *application) updateMetrics() {
	st := rt.svc.Stats()
	metrics.UpdateActiveSessions(st.ActiveSessions)
	metrics.UpdateLeaderboardSize(st.LeaderboardSize)
	metrics.UpdateStreamClients(rt.stream.Clients())
	if rt.submitter != nil {
		metrics.UpdateQueueSize(rt.submitter.Pending())
	}
}
