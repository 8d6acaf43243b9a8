package playbot

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/spotcheck/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging points the global logger at stdout and, when logFile is
// set, at that file too. The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		if err := logger.Init(); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		return func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage for the playbot command.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`spotcheck playbot
=================

Plays the game against a running server and checks every score and the
leaderboard.

Usage:
  playbot [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of sessions to play (default 20)
  -workers int
        Number of concurrent players (default 4)
  -miss float
        Chance of aiming at empty stage per tap, 0 to 1 (default 0.2)
  -seed uint
        Random seed; 0 picks one from the clock
  -timeout duration
        HTTP request timeout (default 10s)
  -report string
        Write the run summary as JSON to this file
  -log string
        Also write logs to this file
  -verbose
        Log every finished session
  -help
        Show this help message

Examples:
  # A quick perfect-play run
  playbot -players 5 -miss 0

  # Many sloppy players in parallel
  playbot -players 200 -workers 16 -miss 0.6 -report run.json
`)
}
