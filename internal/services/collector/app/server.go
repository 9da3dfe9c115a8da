// Package server wires the collector HTTP API, its gRPC health endpoint and
// the storage lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/aurora-runner/internal/platform/timeouts"
	"github.com/louisbranch/aurora-runner/internal/services/collector/api"
	collectorsqlite "github.com/louisbranch/aurora-runner/internal/services/collector/storage/sqlite"
)

// HealthService is the gRPC health service name reported alongside "".
const HealthService = "aurora.collector.SessionRecords"

// Config describes the collector listeners and storage.
type Config struct {
	HTTPAddr string
	GRPCAddr string
	DBPath   string
	// SigningKey enables bearer token verification on ingest.
	SigningKey string
	// MaxConnections caps concurrent HTTP connections. Zero means unlimited.
	MaxConnections int
}

// Server hosts the collector HTTP API and gRPC health service.
type Server struct {
	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	health       *health.Server
	store        *collectorsqlite.Store
}

// New opens storage and binds both listeners.
func New(cfg Config) (*Server, error) {
	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		dbPath = filepath.Join("data", "collector.db")
	}
	store, err := openCollectorStore(dbPath)
	if err != nil {
		return nil, err
	}

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = httpListener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	if cfg.MaxConnections > 0 {
		httpListener = netutil.LimitListener(httpListener, cfg.MaxConnections)
	}

	handler := api.NewRouter(api.Options{
		Store:    store,
		Verifier: api.NewVerifier(cfg.SigningKey),
		Ping:     store.Ping,
	})
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		httpListener: httpListener,
		grpcListener: grpcListener,
		httpServer:   httpServer,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
	}, nil
}

// HTTPAddr returns the bound HTTP listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run creates and serves a collector until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs both listeners until ctx ends or either one fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("collector http listening at %v", s.httpListener.Addr())
	log.Printf("collector grpc health listening at %v", s.grpcListener.Addr())

	httpErr := make(chan error, 1)
	grpcErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()
	go func() {
		grpcErr <- s.grpcServer.Serve(s.grpcListener)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-httpErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve http: %w", err)
		}
	case err := <-grpcErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr = fmt.Errorf("serve gRPC: %w", err)
		}
	}

	s.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown http server: %w", err)
	}
	s.grpcServer.GracefulStop()
	return serveErr
}

// Close releases collector resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close collector store: %v", err)
		}
	}
}

func openCollectorStore(path string) (*collectorsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := collectorsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collector sqlite store: %w", err)
	}
	return store, nil
}
