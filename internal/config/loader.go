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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if HEATBOARD_CONFIG is set
//  3. env (prefix HEATBOARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("HEATBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HEATBOARD_ADDR, HEATBOARD_TASK_ID, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("HEATBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "heatboard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SnapshotChunkSize < 1:
		return fmt.Errorf("%w: snapshot_chunk_size must be positive", ErrInvalidConfig)
	case c.SnapshotTTLHours < 1:
		return fmt.Errorf("%w: snapshot_ttl_hours must be positive", ErrInvalidConfig)
	case c.PollIntervalS < 0:
		return fmt.Errorf("%w: poll_interval_s must not be negative", ErrInvalidConfig)
	case c.SheetURL != "" && !strings.HasSuffix(c.SheetURL, "/"):
		return fmt.Errorf("%w: sheet_url must end with a slash", ErrInvalidConfig)
	}
	return nil
}
