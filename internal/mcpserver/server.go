// Package mcpserver exposes the wasm-core operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/domain/errors"
)

// Name is the MCP server name announced to clients.
const Name = "wasm-core"

// Server serves add, sum_f32 and hello over MCP. Every tool is backed by the
// same Operations, so the native and wasm implementations are
// interchangeable.
type Server struct {
	mcpServer *server.MCPServer
	ops       wasmcore.Operations
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server and registers its tools.
func New(ops wasmcore.Operations, opts ...Option) *Server {
	s := &Server{ops: ops, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		Name,
		wasmcore.Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the input is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// toolResult renders a response as JSON text, or an operation error as a
// tool error. Operation failures never surface as Go errors.
func (s *Server) toolResult(ctx context.Context, operation string, resp any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		s.logger.WarnContext(ctx, "mcp: tool failed", "tool", operation, "error", err)
		detail := errors.ToErrorDetail(err)
		return mcp.NewToolResultError(detail.Error()), nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
