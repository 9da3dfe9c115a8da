// Package grpc holds small helpers for the collector's gRPC health surface.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = time.Second
)

// WaitForHealth blocks until the gRPC health check reports SERVING or the context ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := initialBackoff
	for {
		callCtx, cancel := context.WithTimeout(ctx, maxBackoff)
		response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			logf("waiting for gRPC health: %v", err)
		case response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			logf("gRPC health check is SERVING")
			return nil
		default:
			logf("waiting for gRPC health: status %s", response.GetStatus().String())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Probe connects to addr and waits until its health service reports SERVING
// within timeout. The connection is always closed before returning.
func Probe(ctx context.Context, addr string, timeout time.Duration, logf func(string, ...any)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := gogrpc.NewClient(addr,
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	return WaitForHealth(ctx, conn, "", logf)
}
