package testevents

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/surfelo/pkg/logger"
)

// SetupLogging configures logging to stderr and a file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "test_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the generator.
func ShowHelp(w io.Writer) {
	fmt.Fprint(w, `Synthetic match history generator
=================================

Writes yearly match files and a rankings feed in the dataset CSV layout,
drawing results from hidden player strengths, and optionally rates them to
check the ratings recover those strengths.

Usage:
  go run ./cmd/test-events [options]

Options:
  -out string         output directory (default "synthetic")
  -players int        number of players (default 64)
  -seasons int        number of yearly files (default 3)
  -matches int        matches per season (default 1500)
  -start-year int     first season (default 2021)
  -seed int           generator seed (default 1)
  -verify             rate the history and check rank correlation
  -min-corr float     minimum Spearman correlation for -verify (default 0.6)
  -log string         log file (default: test_log_TIMESTAMP.log)
  -verbose            debug logging
  -help               show this help

Examples:
  go run ./cmd/test-events -out data/synthetic -verify
  go run ./cmd/test-events -players 500 -seasons 10 -matches 20000
`)
}
