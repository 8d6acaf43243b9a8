package playbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/okian/spotcheck/internal/domain/types"
	"github.com/okian/spotcheck/pkg/logger"
)

const reportFilePermission = 0o600

// Run plays cfg.Players sessions and verifies every result and the
// leaderboard. A non-nil error is returned when any check failed; the
// stats are returned either way once play has begun.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	conf := cfg.withDefaults()
	log := logger.Named("playbot")
	c := newClient(conf.BaseURL, conf.Timeout)
	stats := &Stats{StartTime: time.Now(), Players: conf.Players}

	log.Info(ctx, "checking service health", logger.String("url", conf.BaseURL))
	if err := c.healthy(ctx); err != nil {
		return nil, err
	}

	var cat types.CatalogView
	if err := c.get(ctx, "/catalog", &cat); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	stats.Profile = cat.Profile
	log.Info(ctx, "catalog loaded",
		logger.String("profile", cat.Profile),
		logger.Int("hotspots", len(cat.Hotspots)),
		logger.Int("max_taps", cat.MaxTaps),
		logger.Int("countdown_seconds", cat.Countdown))

	outcomes, failures := playAll(ctx, c, cat, conf, log)
	var errs []error
	errs = append(errs, failures...)
	stats.Failed = len(failures)

	best := 0
	for _, o := range outcomes {
		stats.Finished++
		stats.Taps += o.Taps
		stats.Hits += o.Hits
		if o.Result.Verdict == "perfect" {
			stats.Perfect++
		}
		if o.Result.Recorded {
			stats.Recorded++
			best = max(best, o.Result.TotalScore)
		}
		stats.BestScore = max(stats.BestScore, o.Result.TotalScore)
		if err := verifyResult(o.Result, o.Hits); err != nil {
			errs = append(errs, err)
			stats.Mismatches = append(stats.Mismatches, err.Error())
		}
	}
	if stats.Finished > 0 {
		stats.TapsPerGame = float64(stats.Taps) / float64(stats.Finished)
	} else {
		errs = append(errs, ErrNoSessions)
	}

	var board []types.LeaderboardEntry
	if err := c.get(ctx, "/leaderboard", &board); err != nil {
		errs = append(errs, fmt.Errorf("fetch leaderboard: %w", err))
	} else {
		stats.BoardSize = len(board)
		if err := verifyLeaderboard(board); err != nil {
			errs = append(errs, err)
			stats.Mismatches = append(stats.Mismatches, err.Error())
		}
		if best > 0 && (len(board) == 0 || board[0].TotalScore < best) {
			err := fmt.Errorf("%w: recorded score %d missing from the top", ErrBoardUnordered, best)
			errs = append(errs, err)
			stats.Mismatches = append(stats.Mismatches, err.Error())
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if conf.ReportFile != "" {
		if err := saveReport(conf.ReportFile, stats); err != nil {
			errs = append(errs, err)
		}
	}
	displayFinalStats(ctx, log, stats)
	return stats, errors.Join(errs...)
}

// playAll fans the players out over a fixed set of workers.
func playAll(ctx context.Context, c *client, cat types.CatalogView, conf Config, log logger.Logger) ([]outcome, []error) {
	p := newPlayer(c, cat, conf.MissRatio, conf.Poll)
	seed := conf.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	jobs := make(chan int, conf.Workers*2)
	var (
		mu       sync.Mutex
		outcomes []outcome
		failures []error
		wg       sync.WaitGroup
	)
	for w := 0; w < conf.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, uint64(worker)))
			for n := range jobs {
				o, err := p.play(ctx, n, rng)
				mu.Lock()
				if err != nil {
					failures = append(failures, fmt.Errorf("%s: %w", o.Name, err))
				} else {
					outcomes = append(outcomes, o)
				}
				mu.Unlock()
				if err != nil {
					log.Warn(ctx, "session failed", logger.String("player", o.Name), logger.Error(err))
					continue
				}
				if conf.Verbose {
					log.Info(ctx, "session finished",
						logger.String("player", o.Name),
						logger.String("session_id", o.SessionID),
						logger.String("cause", string(o.Result.Cause)),
						logger.Int("taps", o.Taps),
						logger.Int("total_score", o.Result.TotalScore))
				}
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for n := 1; n <= conf.Players; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()
	wg.Wait()
	return outcomes, failures
}

func saveReport(path string, stats *Stats) error {
	buf, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, buf, reportFilePermission); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, s *Stats) {
	log.Info(ctx, "run completed",
		logger.String("profile", s.Profile),
		logger.Int("players", s.Players),
		logger.Int("finished", s.Finished),
		logger.Int("failed", s.Failed),
		logger.Int("perfect", s.Perfect),
		logger.Int("recorded", s.Recorded),
		logger.Int("best_score", s.BestScore),
		logger.Int("board_size", s.BoardSize),
		logger.Float64("taps_per_game", s.TapsPerGame),
		logger.Int("mismatches", len(s.Mismatches)),
		logger.Duration("duration", s.Duration))
}
