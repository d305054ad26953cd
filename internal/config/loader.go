package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names understood by Load.
const (
	EnvPrefix     = "SURFELO_"
	EnvConfigFile = "SURFELO_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SURFELO_CONFIG is set
//  3. env (prefix SURFELO_); a double underscore descends into a section,
//     e.g. SURFELO_DECAY__RATE -> decay.rate
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Env entries for a map merge into the file's map or, without one, into
	// the defaults.
	for path, defaults := range mapDefaults(base) {
		if k.Exists(path) {
			continue
		}
		if err := k.Set(path, defaults); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envKey(k))
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	// Lists and file maps replace the defaults rather than merging
	// element-wise into them.
	cfg := *base
	uc := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, uc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mapDefaults returns the map-valued keys with their default entries.
func mapDefaults(base *Config) map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"rating.tournament_weights": toAnyMap(base.Rating.TournamentWeights),
		"ranking.surface_weights":   toAnyMap(base.Ranking.SurfaceWeights),
	}
}

func toAnyMap(m map[string]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for key, v := range m {
		out[key] = v
	}
	return out
}

// envKey maps an env var name to a config path. Section and field names are
// lowercased. A segment naming a map entry is matched case-insensitively
// against the keys already loaded and the configured surfaces; unmatched
// entries keep the env spelling.
func envKey(k *koanf.Koanf) func(string) string {
	return func(name string) string {
		parts := strings.Split(strings.TrimPrefix(name, EnvPrefix), "__")
		for i := range parts {
			if i > 0 {
				if field := strings.Join(parts[:i], "."); isMapField(field) {
					parts[i] = canonicalKey(parts[i], mapKeyCandidates(k, field))
					continue
				}
			}
			parts[i] = strings.ToLower(parts[i])
		}
		return strings.Join(parts, ".")
	}
}

func isMapField(path string) bool {
	return path == "rating.tournament_weights" || path == "ranking.surface_weights"
}

func mapKeyCandidates(k *koanf.Koanf, field string) []string {
	keys := k.MapKeys(field)
	if field == "ranking.surface_weights" {
		if k.Exists("rating.surfaces") {
			keys = append(keys, k.Strings("rating.surfaces")...)
		} else {
			keys = append(keys, New().Rating.Surfaces...)
		}
	}
	return keys
}

func canonicalKey(key string, candidates []string) string {
	for _, c := range candidates {
		if strings.EqualFold(c, key) {
			return c
		}
	}
	return key
}
