// Package collector parses collector flags and launches the service.
package collector

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/louisbranch/aurora-runner/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/aurora-runner/internal/platform/grpc"
	"github.com/louisbranch/aurora-runner/internal/platform/timeouts"
	server "github.com/louisbranch/aurora-runner/internal/services/collector/app"
)

// Config holds collector command configuration.
type Config struct {
	Port           int    `env:"AURORA_RUNNER_COLLECTOR_PORT" envDefault:"8095"`
	GRPCPort       int    `env:"AURORA_RUNNER_COLLECTOR_GRPC_PORT" envDefault:"8096"`
	DBPath         string `env:"AURORA_RUNNER_COLLECTOR_DB_PATH" envDefault:"data/collector.db"`
	SigningKey     string `env:"AURORA_RUNNER_COLLECTOR_SIGNING_KEY"`
	MaxConnections int    `env:"AURORA_RUNNER_COLLECTOR_MAX_CONNECTIONS" envDefault:"256"`
	// Probe checks the gRPC health of a running collector and exits.
	Probe bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The collector HTTP port")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "The collector gRPC health port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the collector SQLite database")
	fs.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "Maximum concurrent HTTP connections (0 for unlimited)")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check the gRPC health of a running collector and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.MaxConnections < 0 {
		return Config{}, fmt.Errorf("max connections must not be negative")
	}
	return cfg, nil
}

// Run starts the collector, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		addr := fmt.Sprintf("127.0.0.1:%d", cfg.GRPCPort)
		if err := platformgrpc.Probe(ctx, addr, timeouts.GRPCDial, log.Printf); err != nil {
			return fmt.Errorf("probe %s: %w", addr, err)
		}
		log.Printf("collector at %s is serving", addr)
		return nil
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCollector, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:       fmt.Sprintf(":%d", cfg.Port),
			GRPCAddr:       fmt.Sprintf(":%d", cfg.GRPCPort),
			DBPath:         cfg.DBPath,
			SigningKey:     cfg.SigningKey,
			MaxConnections: cfg.MaxConnections,
		})
	})
}
