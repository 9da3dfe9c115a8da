package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	runnercmd "github.com/louisbranch/aurora-runner/internal/cmd/runner"
	entrypoint "github.com/louisbranch/aurora-runner/internal/platform/cmd"
)

func main() {
	cfg, err := runnercmd.ParseConfig()
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceRunner))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runnercmd.Execute(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("runner: %v", err)
	}
}
