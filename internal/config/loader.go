package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "SPOTCHECK_"
	envFile   = "SPOTCHECK_CONFIG"
)

var (
	profiles = map[string]struct{}{"leaderboard": {}, "classic": {}}
	engines  = map[string]struct{}{"sqlite": {}, "json": {}, "memory": {}}
	levels   = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SPOTCHECK_CONFIG is set
//  3. env (prefix SPOTCHECK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SPOTCHECK_STORE_ENGINE -> store_engine. Underscores are kept to match
	// the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// the file location is not a config key
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	c.StoreEngine = strings.ToLower(strings.TrimSpace(c.StoreEngine))

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !known(profiles, c.Profile):
		return fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, c.Profile)
	case c.StoreEngine != "" && !known(engines, c.StoreEngine):
		return fmt.Errorf("%w: unknown store_engine %q", ErrInvalidConfig, c.StoreEngine)
	case !known(levels, strings.ToLower(c.LogLevel)):
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case c.MaxTaps < 0 || c.MaxSeconds < 0 || c.CountdownSeconds < 0:
		return fmt.Errorf("%w: budgets must not be negative", ErrInvalidConfig)
	case c.LeaderboardCapacity <= 0:
		return fmt.Errorf("%w: leaderboard_capacity must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

func known(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}
