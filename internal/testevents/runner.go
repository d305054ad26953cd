package testevents

import (
	"context"
	"fmt"
	"io"
	"time"

	service "github.com/okian/surfelo/internal/app"
	"github.com/okian/surfelo/internal/config"
	"github.com/okian/surfelo/pkg/logger"
)

// Run generates the synthetic history and, when cfg.Verify is set, rates it
// and checks the ratings against the hidden strengths.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	applyDefaults(cfg)
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("testevents")

	log.Info(ctx, "generating synthetic match history",
		logger.String("dir", cfg.OutputDir),
		logger.Int("players", cfg.Players),
		logger.Int("seasons", cfg.Seasons),
		logger.Int("matchesPerSeason", cfg.MatchesPerSeason),
		logger.Any("seed", cfg.Seed),
	)

	players, _, err := generateHistory(ctx, cfg, &stats)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}

	if cfg.Verify {
		svc, err := service.New(ratingConfig(cfg), service.WithLogger(log.Named("service")))
		if err != nil {
			return stats, err
		}
		if _, err := svc.Run(ctx); err != nil {
			return stats, fmt.Errorf("rating run failed: %w", err)
		}
		rho, err := verifyRatings(cfg, players, svc.Result().Roster)
		stats.Correlation = rho
		if err != nil {
			return stats, err
		}
		log.Info(ctx, "ratings track hidden strength", logger.Float64("spearman", rho))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats, nil
}

// ratingConfig rates the generated directory with default parameters and
// no outputs.
func ratingConfig(cfg *Config) *config.Config {
	rc := config.New()
	rc.Input.DataDir = cfg.OutputDir
	rc.Input.Pattern = "atp_matches_*.csv"
	rc.Input.RankingsFile = ""
	rc.Output = config.Output{}
	rc.ProgressFrequency = 0
	return rc
}

func applyDefaults(cfg *Config) {
	if cfg.Players < 2 {
		cfg.Players = DefaultPlayers
	}
	if cfg.Seasons <= 0 {
		cfg.Seasons = DefaultSeasons
	}
	if cfg.MatchesPerSeason <= 0 {
		cfg.MatchesPerSeason = DefaultMatchesPerSeason
	}
	if cfg.StartYear <= 0 {
		cfg.StartYear = DefaultStartYear
	}
	if cfg.SkillSpread <= 0 {
		cfg.SkillSpread = DefaultSkillSpread
	}
	if cfg.MinCorrelation <= 0 {
		cfg.MinCorrelation = DefaultMinCorrelation
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "synthetic"
	}
}

// PrintStats writes a human summary of a run.
func PrintStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Files:    %d\n", s.Files)
	fmt.Fprintf(w, "Matches:  %d\n", s.Matches)
	fmt.Fprintf(w, "Players:  %d\n", s.Players)
	if s.Correlation != 0 {
		fmt.Fprintf(w, "Spearman: %.3f\n", s.Correlation)
	}
	fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
}
