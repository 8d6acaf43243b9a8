package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	service "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/adapters/repository"
	"github.com/okian/spotcheck/internal/adapters/repository/kv"
	"github.com/okian/spotcheck/internal/adapters/submit"
	"github.com/okian/spotcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service backed by SQLite and a score endpoint", t, func() {
		var mu sync.Mutex
		var names []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			names = append(names, r.URL.Query().Get("name"))
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		received := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), names...)
		}

		path := filepath.Join(t.TempDir(), "board.db")
		backend, err := kv.NewSQLite(path)
		So(err, ShouldBeNil)
		store := repository.NewLeaderboard(ctx, backend, repository.WithLogger(logger.Nop()))
		sub := submit.New([]submit.Sink{submit.NewScoreEndpoint(srv.URL, srv.Client())}, submit.WithLogger(logger.Nop()))

		clk := &clocks{}
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithClockFactory(clk.factory),
			service.WithCountdown(0),
			service.WithStore(store),
			service.WithSubmitter(sub),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When three players finish with different scores", func() {
			players := []struct {
				name, email string
				hits        int
				seconds     int
			}{
				{"Ada", "ada@example.com", 3, 90},
				{"Grace", "grace@example.com", 10, 30},
				{"Linus", "linus@example.com", 6, 90},
			}
			for _, p := range players {
				view, err := svc.StartSession(ctx, p.name, p.email)
				So(err, ShouldBeNil)
				m := clk.last()
				if p.hits == 10 {
					m.Advance(p.seconds)
				}
				for id := 1; id <= p.hits; id++ {
					_, err := svc.Tap(ctx, view.ID, centerOf(id))
					So(err, ShouldBeNil)
				}
				if p.hits < 10 {
					m.Advance(p.seconds)
				}
			}

			Convey("Then the board is ordered by score", func() {
				board, err := svc.Leaderboard(ctx, 0)
				So(err, ShouldBeNil)
				So(len(board), ShouldEqual, 3)
				So(board[0].Name, ShouldEqual, "Grace")
				So(board[0].TotalScore, ShouldEqual, 70)
				So(board[1].Name, ShouldEqual, "Linus")
				So(board[2].Name, ShouldEqual, "Ada")
				So(board[2].Rank, ShouldEqual, 3)
			})

			Convey("And every result reaches the endpoint", func() {
				cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				So(svc.Stop(cctx), ShouldBeNil)
				So(received(), ShouldHaveLength, 3)
				So(received(), ShouldContain, "Grace")
			})

			Convey("And the board survives a restart", func() {
				So(svc.Stop(ctx), ShouldBeNil)

				reopened, err := kv.NewSQLite(path)
				So(err, ShouldBeNil)
				again := repository.NewLeaderboard(ctx, reopened, repository.WithLogger(logger.Nop()))
				defer func() { _ = again.Close() }()

				entries, err := again.List(ctx, 0)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].Name, ShouldEqual, "Grace")
				So(entries[0].Email, ShouldEqual, "grace@example.com")
			})
		})

		Reset(func() {
			_ = svc.Stop(ctx)
		})
	})
}
