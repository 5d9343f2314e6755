// Package mcp exposes the transformer to editors as an MCP stdio server.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/esmshift/pkg/mcplog"
	"github.com/gnana997/esmshift/pkg/transform"
)

const serverName = "esmshift"

// Server implements the MCP server with the convert_selection and
// inspect_module tools.
type Server struct {
	mcpServer   *server.MCPServer
	transformer *transform.Transformer
	calls       *mcplog.Logger // nil disables the call log
	logger      *slog.Logger
}

// NewServer creates a server that converts through tr. calls may be nil.
func NewServer(tr *transform.Transformer, version string, calls *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{transformer: tr, calls: calls, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if calls != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer(serverName, version, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: convertSelectionTool(), Handler: s.handleConvertSelection},
		server.ServerTool{Tool: inspectModuleTool(), Handler: s.handleInspectModule},
	)

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio", "tools", len(ToolNames()))
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
