// Package timeouts defines shared timeout constants used across binaries.
package timeouts

import "time"

// TelemetryDelivery bounds one session-record POST from the runner to the
// collector. The request is aborted once it elapses.
const TelemetryDelivery = 2500 * time.Millisecond

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
