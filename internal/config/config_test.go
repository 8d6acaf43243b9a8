package config_test

import (
	"errors"
	"testing"

	"github.com/okian/spotcheck/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Profile, convey.ShouldEqual, "leaderboard")
			convey.So(cfg.CountdownSeconds, convey.ShouldEqual, 3)
			convey.So(cfg.StoreEngine, convey.ShouldEqual, "sqlite")
			convey.So(cfg.LeaderboardCapacity, convey.ShouldEqual, 50)
			convey.So(cfg.LeaderboardDefaultLimit, convey.ShouldEqual, 20)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = " " },
			"unknown profile":  func(c *config.Config) { c.Profile = "arcade" },
			"unknown engine":   func(c *config.Config) { c.StoreEngine = "redis" },
			"unknown level":    func(c *config.Config) { c.LogLevel = "loud" },
			"negative taps":    func(c *config.Config) { c.MaxTaps = -1 },
			"zero capacity":    func(c *config.Config) { c.LeaderboardCapacity = 0 },
			"zero limit cap":   func(c *config.Config) { c.MaxLeaderboardLimit = 0 },
			"negative seconds": func(c *config.Config) { c.CountdownSeconds = -3 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a profile name with odd casing", t, func() {
		cfg := config.New()
		cfg.Profile = " Classic "

		convey.Convey("Then it is normalized", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Profile, convey.ShouldEqual, "classic")
		})
	})
}
