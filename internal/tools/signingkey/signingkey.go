// Package signingkey generates the shared secret the runner signs telemetry
// posts with and the collector verifies them against.
package signingkey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
)

// Env variables that must carry the same secret.
const (
	RunnerEnv    = "AURORA_RUNNER_TELEMETRY_SIGNING_KEY"
	CollectorEnv = "AURORA_RUNNER_COLLECTOR_SIGNING_KEY"
)

// MinBytes is the smallest key accepted for HS256.
const MinBytes = 32

// Config holds configuration for key generation.
type Config struct {
	Bytes int
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: MinBytes}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates one key and writes it to out as runner and collector env
// assignments.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < MinBytes {
		return fmt.Errorf("bytes must be at least %d", MinBytes)
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(buf)
	_, err := fmt.Fprintf(out, "%s=%s\n%s=%s\n", RunnerEnv, key, CollectorEnv, key)
	return err
}
