package stream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/spotcheck/internal/adapters/http/stream"
	service "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/domain/clock"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func read(conn *websocket.Conn) (message, error) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m message
	err := conn.ReadJSON(&m)
	return m, err
}

func x(v float64) *float64 { return &v }

func TestHandler(t *testing.T) {
	convey.Convey("Given a stream over a running session", t, func() {
		manual := clock.NewManual()
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithCountdown(0),
			service.WithProfile(service.ProfileClassic),
			service.WithClockFactory(func() clock.Clock { return manual }),
		)
		h := stream.NewHandler(svc, stream.WithLogger(logger.Nop()))

		mux := http.NewServeMux()
		mux.Handle("GET /sessions/{id}/stream", h)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		ctx := context.Background()
		view, err := svc.StartSession(ctx, "", "")
		convey.So(err, convey.ShouldBeNil)
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + view.ID + "/stream"

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = conn.Close() }()

		first, err := read(conn)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the current state comes first", func() {
			convey.So(first.Type, convey.ShouldEqual, stream.TypeState)
			var v types.SessionView
			convey.So(json.Unmarshal(first.Data, &v), convey.ShouldBeNil)
			convey.So(v.ID, convey.ShouldEqual, view.ID)
			convey.So(v.SecondsRemaining, convey.ShouldEqual, 60)
			convey.So(h.Clients(), convey.ShouldEqual, 1)
		})

		convey.Convey("When the session ticks and is tapped", func() {
			manual.Advance(1)
			_, err := svc.Tap(ctx, view.ID, types.TapRequest{X: x(1), Y: x(1)})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then each event arrives in its envelope", func() {
				tick, err := read(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(tick.Type, convey.ShouldEqual, "tick")
				convey.So(string(tick.Data), convey.ShouldContainSubstring, `"seconds_remaining":59`)

				tap, err := read(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(tap.Type, convey.ShouldEqual, "tap")
				convey.So(string(tap.Data), convey.ShouldContainSubstring, `"hit":false`)
			})
		})

		convey.Convey("When the clock runs out", func() {
			manual.Advance(60)

			convey.Convey("Then the ended event is followed by a normal close", func() {
				var ended message
				for {
					m, err := read(conn)
					convey.So(err, convey.ShouldBeNil)
					if m.Type != "tick" {
						ended = m
						break
					}
				}
				convey.So(ended.Type, convey.ShouldEqual, "ended")
				convey.So(string(ended.Data), convey.ShouldContainSubstring, string(model.CauseTimeExpired))

				_, err := read(conn)
				convey.So(websocket.IsCloseError(err, websocket.CloseNormalClosure), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the session is discarded", func() {
			convey.So(svc.Discard(ctx, view.ID), convey.ShouldBeNil)

			convey.Convey("Then the stream closes after the abandon event", func() {
				m, err := read(conn)
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Type, convey.ShouldEqual, "ended")
				_, err = read(conn)
				convey.So(websocket.IsCloseError(err, websocket.CloseNormalClosure), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a stream request for an unknown session", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))
		mux := http.NewServeMux()
		mux.Handle("GET /sessions/{id}/stream", stream.NewHandler(svc, stream.WithLogger(logger.Nop())))
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/sessions/nope/stream", nil)

		convey.Convey("Then the upgrade is refused with 404", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(resp, convey.ShouldNotBeNil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}
