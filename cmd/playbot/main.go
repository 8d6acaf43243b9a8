// Command playbot plays spotcheck over HTTP and verifies the scores.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/spotcheck/internal/playbot"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL   = flag.String("url", playbot.DefaultBaseURL, "Base URL of the service")
		players   = flag.Int("players", playbot.DefaultPlayers, "Number of sessions to play")
		workers   = flag.Int("workers", playbot.DefaultWorkers, "Number of concurrent players")
		missRatio = flag.Float64("miss", playbot.DefaultMissRatio, "Chance of aiming at empty stage per tap")
		seed      = flag.Uint64("seed", 0, "Random seed, 0 picks one from the clock")
		timeout   = flag.Duration("timeout", playbot.DefaultTimeout, "HTTP request timeout")
		report    = flag.String("report", "", "Write the run summary as JSON to this file")
		logFile   = flag.String("log", "", "Also write logs to this file")
		verbose   = flag.Bool("verbose", false, "Log every finished session")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playbot.ShowHelp()
		return 0
	}

	closeLog, err := playbot.SetupLogging(*logFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if _, err := playbot.Run(ctx, &playbot.Config{
		BaseURL:    *baseURL,
		Players:    *players,
		Workers:    *workers,
		MissRatio:  *missRatio,
		Seed:       *seed,
		Timeout:    *timeout,
		ReportFile: *report,
		Verbose:    *verbose,
	}); err != nil {
		_, _ = os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
