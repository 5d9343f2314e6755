package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/esmshift/pkg/mcplog"
)

// loggingMiddleware writes one mcplog entry per tool call. A failed log
// write never changes the call result.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			args := req.GetArguments()
			entry := mcplog.Entry{
				Ts:          start.UTC().Format(time.RFC3339),
				Tool:        req.Params.Name,
				Params:      mcplog.SanitizeParams(args),
				DurationMs:  mcplog.Now().Sub(start).Milliseconds(),
				InputBytes:  mcplog.InputBytes(args),
				OutputBytes: mcplog.OutputBytes(result),
				IsError:     result != nil && result.IsError,
			}
			if err != nil {
				msg := err.Error()
				entry.Error = &msg
			}
			if werr := s.calls.Write(entry); werr != nil {
				s.logger.Warn("failed to write MCP call log", "error", werr)
			}

			return result, err
		}
	}
}
