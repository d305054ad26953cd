package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/surfelo/internal/testevents"
)

func main() {
	var (
		outDir    = flag.String("out", "synthetic", "Output directory for generated files")
		players   = flag.Int("players", testevents.DefaultPlayers, "Number of players")
		seasons   = flag.Int("seasons", testevents.DefaultSeasons, "Number of yearly files")
		matches   = flag.Int("matches", testevents.DefaultMatchesPerSeason, "Matches per season")
		startYear = flag.Int("start-year", testevents.DefaultStartYear, "First season")
		seed      = flag.Int64("seed", 1, "Generator seed")
		verify    = flag.Bool("verify", false, "Rate the history and check rank correlation")
		minCorr   = flag.Float64("min-corr", testevents.DefaultMinCorrelation, "Minimum Spearman correlation for -verify")
		logFile   = flag.String("log", "", "Log file (default: test_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp(os.Stdout)
		return
	}

	if err := testevents.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := testevents.Run(ctx, &testevents.Config{
		OutputDir:        *outDir,
		Players:          *players,
		Seasons:          *seasons,
		MatchesPerSeason: *matches,
		StartYear:        *startYear,
		Seed:             *seed,
		Verify:           *verify,
		MinCorrelation:   *minCorr,
		Verbose:          *verbose,
	})
	testevents.PrintStats(os.Stdout, stats)
	if err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
