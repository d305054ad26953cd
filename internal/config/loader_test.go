package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/surfelo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Rating.StartingRating, convey.ShouldEqual, 1300)
				convey.So(cfg.Decay.Frequency, convey.ShouldEqual, 1000)
				convey.So(cfg.Rating.Surfaces, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SURFELO_LOG_LEVEL", "debug")
			_ = os.Setenv("SURFELO_DECAY__RATE", "0.9")
			_ = os.Setenv("SURFELO_DECAY__FREQUENCY", "250")
			_ = os.Setenv("SURFELO_RATING__K_BASE", "300")
			_ = os.Setenv("SURFELO_RATING__PENALTY__STRATEGY", "linear")
			_ = os.Setenv("SURFELO_INPUT__DATA_DIR", "/srv/atp")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Decay.Rate, convey.ShouldEqual, 0.9)
				convey.So(cfg.Decay.Frequency, convey.ShouldEqual, 250)
				convey.So(cfg.Rating.KBase, convey.ShouldEqual, 300)
				convey.So(cfg.Rating.Penalty.Strategy, convey.ShouldEqual, "linear")
				convey.So(cfg.Input.DataDir, convey.ShouldEqual, "/srv/atp")
				// Untouched sections keep their defaults.
				convey.So(cfg.Decay.StrongRate, convey.ShouldEqual, 0.85)
				convey.So(cfg.Rating.TournamentWeights["G"], convey.ShouldEqual, 1.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: warn
rating:
  starting_rating: 1500
  surfaces: [Hard, Clay]
  tournament_weights:
    G: 2.0
    F: 1.4
decay:
  baseline: 1450
  threshold_days: 300
  strong_threshold_days: 600
output:
  sqlite_path: ratings.db
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SURFELO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.Rating.StartingRating, convey.ShouldEqual, 1500)
				convey.So(cfg.Decay.Baseline, convey.ShouldEqual, 1450)
				convey.So(cfg.Decay.ThresholdDays, convey.ShouldEqual, 300)
				convey.So(cfg.Output.SQLitePath, convey.ShouldEqual, "ratings.db")
			})

			convey.Convey("And lists and maps replace the defaults", func() {
				convey.So(cfg.Rating.Surfaces, convey.ShouldResemble, []string{"Hard", "Clay"})
				convey.So(cfg.Rating.TournamentWeights, convey.ShouldResemble, map[string]float64{"G": 2.0, "F": 1.4})
			})

			convey.Convey("And fields missing from the file keep defaults", func() {
				convey.So(cfg.Rating.KOffset, convey.ShouldEqual, 5)
				convey.So(cfg.Decay.Rate, convey.ShouldEqual, 0.92)
				convey.So(cfg.Output.JSONPath, convey.ShouldEqual, "tennis_elo_ratings.json")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
decay:
  frequency: 500
  rate: 0.95
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SURFELO_CONFIG", tmpFile)
			_ = os.Setenv("SURFELO_DECAY__FREQUENCY", "2000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Decay.Frequency, convey.ShouldEqual, 2000) // Overridden by env
				convey.So(cfg.Decay.Rate, convey.ShouldEqual, 0.95)      // From file
			})
		})

		convey.Convey("When a list is supplied through the environment", func() {
			_ = os.Setenv("SURFELO_RANKING__DISPLAY_SURFACES", "Clay,Grass")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is split on commas", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Ranking.DisplaySurfaces, convey.ShouldResemble, []string{"Clay", "Grass"})
			})
		})

		convey.Convey("When a tournament weight is overridden through the environment", func() {
			_ = os.Setenv("SURFELO_RATING__TOURNAMENT_WEIGHTS__G", "2.0")
			_ = os.Setenv("SURFELO_RATING__TOURNAMENT_WEIGHTS__F", "1.4")

			cfg, err := config.Load(ctx)

			convey.Convey("Then only that entry changes and new levels are added", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Rating.TournamentWeights, convey.ShouldResemble, map[string]float64{
					"G": 2.0, "M": 1.25, "A": 1.0, "D": 1.0, "F": 1.4,
				})
			})
		})

		convey.Convey("When a surface weight is overridden in another case", func() {
			_ = os.Setenv("SURFELO_RANKING__SURFACE_WEIGHTS__HARD", "0.7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it lands on the configured surface spelling", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Ranking.SurfaceWeights, convey.ShouldResemble, map[string]float64{
					"Hard": 0.7, "Clay": 0.3, "Grass": 0.1, "Carpet": 0.1,
				})
			})
		})

		convey.Convey("When the file sets a map and the environment overrides one entry", func() {
			tmpFile := createTempConfigFile(`
rating:
  tournament_weights:
    G: 1.8
    M: 1.3
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SURFELO_CONFIG", tmpFile)
			_ = os.Setenv("SURFELO_RATING__TOURNAMENT_WEIGHTS__M", "1.1")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the entry merges into the file's map", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Rating.TournamentWeights, convey.ShouldResemble, map[string]float64{"G": 1.8, "M": 1.1})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SURFELO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SURFELO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SURFELO_DECAY__FREQUENCY", "often")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the loaded values fail validation", func() {
			_ = os.Setenv("SURFELO_RATING__K_OFFSET", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "k_offset")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				key := kv[:i]
				if len(key) >= len(config.EnvPrefix) && key[:len(config.EnvPrefix)] == config.EnvPrefix {
					_ = os.Unsetenv(key)
				}
				break
			}
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "surfelo-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
