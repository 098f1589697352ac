package ask

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/ranking"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const toolName = "ask"

type Input struct {
	Question   string `json:"question" validate:"required,max=2000"`
	Department string `json:"department" validate:"required,department"` // Marketing, Customer Success, HR, Product, General
	// Bypass the answer cache and rank the current catalog.
	Fresh bool `json:"fresh,omitempty"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	responder *ranking.Responder
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Responder() == nil {
		return fmt.Errorf("%s: responder is not configured", toolName)
	}

	tool := &mcp.Tool{
		Name: toolName,
		Description: "Recommend curated AI tools for a department question. Returns the ranked answer, " +
			"or no_curated_data=true when no approved tools exist yet for the department.",
	}

	t.responder = srv.Responder()

	wrappedHandler := tools.WrapToolHandler(t.logger, srv.Metrics(), toolName, t.AskHandler)
	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msg("ask tool registered")

	return nil
}

func (t *Tool) AskHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}
	department, err := types.ParseDepartment(input.Department)
	if err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	var resp ranking.Response
	if input.Fresh {
		resp = t.responder.Answer(ctx, input.Question, department)
	} else {
		resp = t.responder.Ask(ctx, input.Question, department)
	}

	result, err := tools.JSONResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

func New(logger zerolog.Logger) tools.Tool {
	return &Tool{
		logger:    logger.With().Str("tool", toolName).Logger(),
		validator: tools.NewValidator(),
	}
}
