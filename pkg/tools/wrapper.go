package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
)

// WrapToolHandler wraps a tool handler to record call metrics and log the outcome.
func WrapToolHandler[In, Out any](
	logger zerolog.Logger,
	m *metrics.Metrics,
	toolName string,
	handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		startTime := time.Now()

		result, output, err := handler(ctx, req, input)

		duration := time.Since(startTime)
		m.ToolCall(toolName, err, duration)

		sessionID := ""
		if req != nil && req.Session != nil {
			sessionID = req.Session.ID()
		}

		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.
			Str("tool", toolName).
			Str("session_id", sessionID).
			Dur("duration", duration).
			Msg("tool call")

		return result, output, err
	}
}
