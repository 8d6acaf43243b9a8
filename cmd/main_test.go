package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/spotcheck/internal/config"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.StorePath = filepath.Join(t.TempDir(), "board.db")
	cfg.CountdownSeconds = 0
	return cfg
}

func request(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestBuild(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		app, err := build(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = app.svc.Stop(ctx) }()

		convey.Convey("Then every route is mounted", func() {
			convey.So(request(app.mux, http.MethodGet, "/catalog", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/leaderboard", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/stats", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/share.png", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(request(app.mux, http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the leaderboard profile asks for player details", func() {
			w := request(app.mux, http.MethodPost, "/sessions", `{}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "invalid_identity")
		})

		convey.Convey("Then the sampled gauges refresh without a submitter endpoint", func() {
			convey.So(app.submitter, convey.ShouldNotBeNil)
			convey.So(app.submitter.Sinks(), convey.ShouldBeEmpty)
			convey.So(func() { app.updateMetrics() }, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given the classic profile with overridden limits", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Profile = "classic"
		cfg.MaxTaps = 4

		app, err := build(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = app.svc.Stop(ctx) }()

		convey.Convey("Then anonymous play is allowed and nothing is submitted", func() {
			convey.So(app.submitter, convey.ShouldBeNil)
			w := request(app.mux, http.MethodPost, "/sessions", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			var view types.SessionView
			convey.So(json.Unmarshal(w.Body.Bytes(), &view), convey.ShouldBeNil)
			convey.So(view.TapsRemaining, convey.ShouldEqual, 4)
			convey.So(view.SecondsRemaining, convey.ShouldEqual, 60)
		})
	})

	convey.Convey("Given a catalog file that does not exist", t, func() {
		cfg := testConfig(t)
		cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an unknown store engine", t, func() {
		cfg := testConfig(t)
		cfg.StoreEngine = "redis"

		_, err := build(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestBuildSinks(t *testing.T) {
	convey.Convey("Given both endpoints configured", t, func() {
		var mu sync.Mutex
		var agents []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			agents = append(agents, r.Header.Get("User-Agent"))
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg := config.New()
		cfg.ScoreEndpointURL = srv.URL + "/score"
		cfg.FormEndpointURL = srv.URL + "/form"
		cfg.UserAgent = "kiosk/7"

		sinks := buildSinks(cfg)

		convey.Convey("Then one sink per endpoint is built with the agent", func() {
			convey.So(len(sinks), convey.ShouldEqual, 2)
			convey.So(sinks[0].Name(), convey.ShouldEqual, "score")
			convey.So(sinks[1].Name(), convey.ShouldEqual, "form")

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			for _, s := range sinks {
				convey.So(s.Send(ctx, resultFixture()), convey.ShouldBeNil)
			}
			mu.Lock()
			defer mu.Unlock()
			convey.So(agents, convey.ShouldResemble, []string{"kiosk/7", "kiosk/7"})
		})
	})

	convey.Convey("Given a score endpoint and no configured agent", t, func() {
		got := make(chan string, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.URL.Query().Get("userAgent")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg := config.New()
		cfg.ScoreEndpointURL = srv.URL

		convey.Convey("Then the stamped build version is reported", func() {
			sinks := buildSinks(cfg)
			convey.So(sinks, convey.ShouldHaveLength, 1)
			convey.So(sinks[0].Send(context.Background(), resultFixture()), convey.ShouldBeNil)
			convey.So(<-got, convey.ShouldEqual, "spotcheck/"+version)
		})
	})

	convey.Convey("Given no endpoints", t, func() {
		convey.So(buildSinks(config.New()), convey.ShouldBeEmpty)
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a built application", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		app, err := build(ctx, testConfig(t), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = app.svc.Stop(context.Background()) }()

		convey.Convey("Then the updater returns when the context ends", func() {
			convey.So(func() { startServiceMetricsUpdater(ctx, app) }, convey.ShouldNotPanic)
		})
	})
}

func resultFixture() model.ResultRecord {
	return model.ResultRecord{
		ID:          "r1",
		Name:        "Ada",
		Email:       "ada@example.com",
		IssuesFound: 10,
		TotalScore:  60,
		Timestamp:   "2025-01-01T12:00:00Z",
	}
}
