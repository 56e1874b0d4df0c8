package config

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the service's environment variables.
const envPrefix = "SCOREBOARD_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCOREBOARD_CONFIG is set
//  3. env (prefix SCOREBOARD_), with a local .env loaded first if present
func Load(_ context.Context) (*Config, error) {
	// A .env file, when present, feeds the env provider below. Missing
	// files are fine.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, WrapKind("config.load_file", ErrLoad, err)
		}
	}

	// SCOREBOARD_ADMIN_PASSWORD -> admin_password, etc. Underscores are
	// preserved to match the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, WrapKind("config.load_env", ErrLoad, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, WrapKind("config.unmarshal", ErrLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return NewKind("config.validate", ErrInvalid)
	case len(c.Houses) == 0:
		return NewKind("config.validate", ErrInvalid)
	case len(c.Categories) == 0:
		return NewKind("config.validate", ErrInvalid)
	case c.ScrollSpeed <= 0 || c.ScrollTolerance <= 0:
		return NewKind("config.validate", ErrInvalid)
	case c.ScrollStallFrames <= 0 || c.FrameRate <= 0:
		return NewKind("config.validate", ErrInvalid)
	case c.CarouselIntervalMS <= 0:
		return NewKind("config.validate", ErrInvalid)
	}
	return nil
}
