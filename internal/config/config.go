// Package config defines the rating run configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, tees logs into a rotated file.
	LogFile string `koanf:"log_file"`

	// ProgressFrequency logs progress every N processed matches (0 disables).
	ProgressFrequency int `koanf:"progress_frequency"`

	Rating  Rating  `koanf:"rating"`
	Decay   Decay   `koanf:"decay"`
	Input   Input   `koanf:"input"`
	Ranking Ranking `koanf:"ranking"`
	Output  Output  `koanf:"output"`
}

// Rating holds the per-match update parameters.
type Rating struct {
	// StartingRating seeds every surface of a new player.
	StartingRating float64 `koanf:"starting_rating"`

	// Surfaces lists the valid surfaces; matches on anything else are skipped.
	Surfaces []string `koanf:"surfaces"`

	// TournamentWeights maps tournament level codes to K multipliers.
	TournamentWeights map[string]float64 `koanf:"tournament_weights"`

	// KBase, KOffset and KShape shape the dynamic K-factor
	// KBase / (matches + KOffset) ^ KShape.
	KBase   float64 `koanf:"k_base"`
	KOffset float64 `koanf:"k_offset"`
	KShape  float64 `koanf:"k_shape"`

	Penalty Penalty `koanf:"penalty"`

	// MaxRatingChange flags updates larger than this many points (0 disables).
	MaxRatingChange float64 `koanf:"max_rating_change"`
}

// Penalty configures the experience penalty curve.
type Penalty struct {
	// Strategy is one of plateau, linear, logarithmic, none.
	Strategy   string  `koanf:"strategy"`
	Threshold  int     `koanf:"threshold"`
	Scale      float64 `koanf:"scale"`
	MaxExtra   float64 `koanf:"max_extra"`
	Cap        float64 `koanf:"cap"`
	LinearRate float64 `koanf:"linear_rate"`
}

// Decay configures inactivity decay.
type Decay struct {
	Rate                float64 `koanf:"rate"`
	StrongRate          float64 `koanf:"strong_rate"`
	ThresholdDays       int     `koanf:"threshold_days"`
	StrongThresholdDays int     `koanf:"strong_threshold_days"`
	// Frequency applies decay every N processed matches (0 disables).
	Frequency int     `koanf:"frequency"`
	Baseline  float64 `koanf:"baseline"`
}

// Input locates match and ranking files.
type Input struct {
	DataDir      string   `koanf:"data_dir"`
	Pattern      string   `koanf:"pattern"`
	ExtraFiles   []string `koanf:"extra_files"`
	RankingsFile string   `koanf:"rankings_file"`
	// SortEvents stable-sorts the combined events by tournament date.
	SortEvents bool `koanf:"sort_events"`
	// DedupeSize bounds duplicate match detection (0 = unbounded, -1 disables).
	DedupeSize int `koanf:"dedupe_size"`
}

// Ranking configures the leaderboard views.
type Ranking struct {
	TopN                 int                `koanf:"top_n"`
	SurfaceTopN          int                `koanf:"surface_top_n"`
	DisplaySurfaces      []string           `koanf:"display_surfaces"`
	MinMatchesRanking    int                `koanf:"min_matches_ranking"`
	MinMatchesActive     int                `koanf:"min_matches_active"`
	ActiveMonths         int                `koanf:"active_months"`
	SurfaceWeights       map[string]float64 `koanf:"surface_weights"`
	SpecialistMinMatches int                `koanf:"specialist_min_matches"`
	SpecialistAdvantage  float64            `koanf:"specialist_advantage"`
	RisingMonths         int                `koanf:"rising_months"`
	RisingMinMatches     int                `koanf:"rising_min_matches"`
	RisingThreshold      float64            `koanf:"rising_threshold"`
}

// Output names the sinks written after a run. Empty paths are skipped.
type Output struct {
	JSONPath        string `koanf:"json_path"`
	RankingsPath    string `koanf:"rankings_path"`
	SQLitePath      string `koanf:"sqlite_path"`
	ParquetPath     string `koanf:"parquet_path"`
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		ProgressFrequency: 5000,
		Rating: Rating{
			StartingRating: 1300,
			Surfaces:       []string{"Hard", "Clay", "Grass", "Carpet"},
			TournamentWeights: map[string]float64{
				"G": 1.5,  // Grand Slam
				"M": 1.25, // Masters 1000
				"A": 1.0,  // ATP 500/250
				"D": 1.0,  // Davis Cup
			},
			KBase:   250,
			KOffset: 5,
			KShape:  0.4,
			Penalty: Penalty{
				Strategy:   "plateau",
				Threshold:  150,
				Scale:      400,
				MaxExtra:   0.15,
				Cap:        1.2,
				LinearRate: 0.0005,
			},
			MaxRatingChange: 200,
		},
		Decay: Decay{
			Rate:                0.92,
			StrongRate:          0.85,
			ThresholdDays:       365,
			StrongThresholdDays: 730,
			Frequency:           1000,
			Baseline:            1300,
		},
		Input: Input{
			DataDir:      "data",
			Pattern:      "atp_matches_*.csv",
			RankingsFile: "atp_rankings_current.csv",
			SortEvents:   true,
		},
		Ranking: Ranking{
			TopN:              20,
			SurfaceTopN:       10,
			DisplaySurfaces:   []string{"Hard", "Clay", "Grass"},
			MinMatchesRanking: 50,
			MinMatchesActive:  20,
			ActiveMonths:      18,
			SurfaceWeights: map[string]float64{
				"Hard":   0.5,
				"Clay":   0.3,
				"Grass":  0.1,
				"Carpet": 0.1,
			},
			SpecialistMinMatches: 30,
			SpecialistAdvantage:  100,
			RisingMonths:         6,
			RisingMinMatches:     10,
			RisingThreshold:      1400,
		},
		Output: Output{
			JSONPath:     "tennis_elo_ratings.json",
			RankingsPath: "current_rankings.json",
		},
	}
}

// Validate rejects configurations the rating algorithms cannot run with.
func (c *Config) Validate() error {
	switch {
	case len(c.Rating.Surfaces) == 0:
		return fmt.Errorf("%w: rating.surfaces must not be empty", ErrInvalidConfig)
	case c.Rating.KOffset <= 0:
		return fmt.Errorf("%w: rating.k_offset must be positive", ErrInvalidConfig)
	case c.Rating.KBase <= 0:
		return fmt.Errorf("%w: rating.k_base must be positive", ErrInvalidConfig)
	case c.Rating.KShape <= 0:
		return fmt.Errorf("%w: rating.k_shape must be positive", ErrInvalidConfig)
	case c.Rating.Penalty.Cap < 1:
		return fmt.Errorf("%w: rating.penalty.cap must be at least 1", ErrInvalidConfig)
	case c.Decay.Rate <= 0 || c.Decay.Rate > 1:
		return fmt.Errorf("%w: decay.rate must be in (0, 1]", ErrInvalidConfig)
	case c.Decay.StrongRate <= 0 || c.Decay.StrongRate > 1:
		return fmt.Errorf("%w: decay.strong_rate must be in (0, 1]", ErrInvalidConfig)
	case c.Decay.StrongRate > c.Decay.Rate:
		return fmt.Errorf("%w: decay.strong_rate must not exceed decay.rate", ErrInvalidConfig)
	case c.Decay.StrongThresholdDays < c.Decay.ThresholdDays:
		return fmt.Errorf("%w: decay.strong_threshold_days must not be below decay.threshold_days", ErrInvalidConfig)
	}
	for _, s := range c.Rating.Surfaces {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: rating.surfaces contains an empty name", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Rating.Penalty.Strategy)) {
	case "plateau", "linear", "logarithmic", "none":
	default:
		return fmt.Errorf("%w: unknown rating.penalty.strategy %q", ErrInvalidConfig, c.Rating.Penalty.Strategy)
	}
	return nil
}
