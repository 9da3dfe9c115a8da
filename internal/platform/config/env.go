// Package config loads runtime configuration from the process environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Prefix is the environment namespace shared by every aurora-runner binary.
const Prefix = "AURORA_RUNNER_"

// ParseEnv loads configuration from environment variables.
//
// Struct tags name fully qualified variables (`env:"AURORA_RUNNER_LOCALE"`).
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvPrefixed loads configuration whose struct tags are relative to prefix.
// A blank prefix falls back to Prefix.
func ParseEnvPrefixed(target any, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = Prefix
	}
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env %s*: %w", prefix, err)
	}
	return nil
}
