package playbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/spotcheck/internal/adapters/http/api"
	service "github.com/okian/spotcheck/internal/app"
	"github.com/okian/spotcheck/internal/domain/catalog"
	"github.com/okian/spotcheck/internal/domain/hittest"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newGameServer(opts ...service.Option) (*httptest.Server, *service.Service) {
	svc := service.New(append([]service.Option{service.WithLogger(logger.Nop())}, opts...)...)
	mux := http.NewServeMux()
	api.NewServer(svc, api.WithLogger(logger.Nop())).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func TestVerifyResult(t *testing.T) {
	Convey("Given scored results", t, func() {
		perfect := types.ResultView{
			SessionID: "s1", IssuesFound: 3, MaxCorrect: 3, TimeRemaining: 40,
			TimeBonus: 40, TotalScore: 43, Verdict: "perfect", FoundIDs: []int{1, 2, 3},
		}
		partial := types.ResultView{
			SessionID: "s2", IssuesFound: 2, MaxCorrect: 10, TimeRemaining: 40,
			TotalScore: 2, Verdict: "try_again", FoundIDs: []int{4, 7},
		}

		Convey("Then rule-abiding results pass", func() {
			So(verifyResult(perfect, 3), ShouldBeNil)
			So(verifyResult(partial, 2), ShouldBeNil)
		})

		Convey("Then a partial run with a bonus fails", func() {
			partial.TimeBonus = 40
			partial.TotalScore = 42
			So(errors.Is(verifyResult(partial, 2), ErrScoreMismatch), ShouldBeTrue)
		})

		Convey("Then a perfect run without its bonus fails", func() {
			perfect.TimeBonus = 0
			perfect.TotalScore = 3
			So(errors.Is(verifyResult(perfect, 3), ErrScoreMismatch), ShouldBeTrue)
		})

		Convey("Then disagreeing with the player's hit count fails", func() {
			So(errors.Is(verifyResult(partial, 3), ErrScoreMismatch), ShouldBeTrue)
		})

		Convey("Then a wrong verdict fails", func() {
			partial.Verdict = "good"
			So(errors.Is(verifyResult(partial, 2), ErrScoreMismatch), ShouldBeTrue)
		})
	})
}

func TestVerifyLeaderboard(t *testing.T) {
	Convey("Given leaderboards", t, func() {
		Convey("Then descending dense ranks pass", func() {
			board := []types.LeaderboardEntry{
				{Rank: 1, Name: "a", TotalScore: 70},
				{Rank: 2, Name: "b", TotalScore: 70},
				{Rank: 3, Name: "c", TotalScore: 6},
			}
			So(verifyLeaderboard(board), ShouldBeNil)
			So(verifyLeaderboard(nil), ShouldBeNil)
		})

		Convey("Then a rising score fails", func() {
			board := []types.LeaderboardEntry{
				{Rank: 1, Name: "a", TotalScore: 6},
				{Rank: 2, Name: "b", TotalScore: 70},
			}
			So(errors.Is(verifyLeaderboard(board), ErrBoardUnordered), ShouldBeTrue)
		})

		Convey("Then a skipped rank fails", func() {
			board := []types.LeaderboardEntry{{Rank: 2, Name: "a", TotalScore: 6}}
			So(errors.Is(verifyLeaderboard(board), ErrBoardUnordered), ShouldBeTrue)
		})
	})
}

func TestMissPoint(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		hotspots := catalog.Default().Hotspots()
		p, ok := missPoint(hotspots)

		Convey("Then the miss point lies in no hotspot", func() {
			So(ok, ShouldBeTrue)
			for _, h := range hotspots {
				So(hittest.Contains(h, p), ShouldBeFalse)
			}
		})
	})

	Convey("Given a hotspot covering the whole stage", t, func() {
		_, ok := missPoint([]model.Hotspot{{ID: 1, X: 0, Y: 0, W: 100, H: 100}})
		So(ok, ShouldBeFalse)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a leaderboard server without countdown", t, func() {
		srv, svc := newGameServer(service.WithCountdown(0))
		defer srv.Close()
		defer func() { _ = svc.Stop(context.Background()) }()

		report := filepath.Join(t.TempDir(), "run.json")
		cfg := &Config{
			BaseURL:    srv.URL,
			Players:    6,
			Workers:    3,
			MissRatio:  0.3,
			Seed:       7,
			ReportFile: report,
		}

		Convey("When the bot plays", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every check passes and the report is written", func() {
				So(err, ShouldBeNil)
				So(stats.Finished, ShouldEqual, 6)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Profile, ShouldEqual, "leaderboard")
				So(stats.Mismatches, ShouldBeEmpty)
				So(stats.BoardSize, ShouldEqual, stats.Recorded)

				raw, err := os.ReadFile(report)
				So(err, ShouldBeNil)
				var saved Stats
				So(json.Unmarshal(raw, &saved), ShouldBeNil)
				So(saved.Finished, ShouldEqual, 6)
			})
		})

		Convey("When the bot never misses", func() {
			cfg.MissRatio = 0
			cfg.Players = 2
			stats, err := Run(context.Background(), cfg)

			Convey("Then every game is perfect", func() {
				So(err, ShouldBeNil)
				So(stats.Perfect, ShouldEqual, 2)
				So(stats.Hits, ShouldEqual, 2*catalog.Default().Size())
			})
		})
	})

	Convey("Given a classic server with a short countdown", t, func() {
		srv, svc := newGameServer(
			service.WithProfile(service.ProfileClassic),
			service.WithCountdown(300*time.Millisecond),
		)
		defer srv.Close()
		defer func() { _ = svc.Stop(context.Background()) }()

		stats, err := Run(context.Background(), &Config{
			BaseURL:   srv.URL,
			Players:   2,
			Workers:   2,
			MissRatio: 1,
			Poll:      50 * time.Millisecond,
		})

		Convey("Then players wait out the countdown and nothing is recorded", func() {
			So(err, ShouldBeNil)
			So(stats.Finished, ShouldEqual, 2)
			So(stats.Hits, ShouldEqual, 0)
			So(stats.Taps, ShouldEqual, 2*service.ProfileClassic.MaxTaps)
			So(stats.Recorded, ShouldEqual, 0)
			So(stats.BoardSize, ShouldEqual, 0)
		})
	})

	Convey("Given nothing listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}
