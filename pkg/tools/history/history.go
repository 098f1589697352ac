package history

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
)

const defaultLimit = 10

type Input struct {
	Action string `json:"action" validate:"required,oneof=list clear"`
	Limit  int    `json:"limit,omitempty" validate:"min=0,max=100"`
	Offset int    `json:"offset,omitempty" validate:"min=0"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	workflow  *moderation.Workflow
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Workflow() == nil {
		return fmt.Errorf("history: workflow is not configured")
	}

	tool := &mcp.Tool{
		Name:        "history",
		Description: "Browse the moderation audit log, newest first. Actions: list (paginated), clear (all).",
	}

	t.workflow = srv.Workflow()

	mcp.AddTool(&srv.Server, tool, t.HistoryHandler)
	t.logger.Debug().Msg("history tool registered")

	return nil
}

func (t *Tool) HistoryHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	switch input.Action {
	case "list":
		limit := input.Limit
		if limit == 0 {
			limit = defaultLimit
		}
		events, total := t.workflow.History(ctx, limit, input.Offset)
		result, err := tools.JSONResult(map[string]any{
			"total":  total,
			"limit":  limit,
			"offset": input.Offset,
			"events": events,
		})
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil

	default:
		if !t.workflow.ClearHistory(ctx) {
			return nil, nil, fmt.Errorf("failed to clear moderation history")
		}
		return tools.TextResult("Moderation history cleared"), nil, nil
	}
}

func New(logger zerolog.Logger) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", "history").Logger(),
		validator: validator.New(),
	}
}
