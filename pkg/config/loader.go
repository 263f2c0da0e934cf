package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env`
// tags. Defaults come from `envDefault`; list values split on the tag's
// `envSeparator`.
//
// Example:
//
//	type Config struct {
//	    HTTPPort           int    `env:"HTTP_PORT" envDefault:"8000"`
//	    AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET"`
//	    RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`
//	}
//
// Cross-field validation (secret strength, port ranges) belongs to the
// caller; Load only maps the environment onto the struct.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
