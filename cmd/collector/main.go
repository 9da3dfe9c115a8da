// Package main starts the telemetry collector process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	collectorcmd "github.com/louisbranch/aurora-runner/internal/cmd/collector"
	entrypoint "github.com/louisbranch/aurora-runner/internal/platform/cmd"
)

func main() {
	cfg, err := collectorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceCollector))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := collectorcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("collector: %v", err)
	}
}
