// Package mcpserver exposes a runner session as MCP tools so an agent can
// drive a run command by command.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/aurora-runner/internal/services/runner/app"
)

const (
	serverName    = "Aurora Runner MCP"
	serverVersion = "0.1.0"
)

// Server hosts the MCP tools for one runtime.
type Server struct {
	mcpServer *mcp.Server
}

// New registers the session tools for rt.
func New(rt *app.Runtime) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, rt.Session, rt.Labels)
	return &Server{mcpServer: mcpServer}
}

// Run serves rt over stdio until ctx ends.
func Run(ctx context.Context, rt *app.Runtime) error {
	return New(rt).Serve(ctx, &mcp.StdioTransport{})
}

// Serve runs the server on transport. Context cancellation is a clean stop.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
