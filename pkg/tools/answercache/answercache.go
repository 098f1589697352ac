package answercache

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const toolName = "answer_cache"

type Input struct {
	Action     string `json:"action" validate:"required,oneof=get put"`
	Question   string `json:"question" validate:"required,max=2000"`
	Department string `json:"department" validate:"required,department"`
	Answer     string `json:"answer,omitempty"` // stored as given by put, empty allowed
}

// Output distinguishes a miss (Found=false) from a stored empty answer.
type Output struct {
	Action string  `json:"action"`
	Found  bool    `json:"found"`
	Stored bool    `json:"stored"`
	Answer *string `json:"answer"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	answers   *cache.Cache
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Answers() == nil {
		return fmt.Errorf("%s: answer cache is not configured", toolName)
	}

	tool := &mcp.Tool{
		Name:        toolName,
		Description: "Read or write memoized answers keyed by department and normalized question. Actions: get, put.",
	}

	t.answers = srv.Answers()

	wrappedHandler := tools.WrapToolHandler(t.logger, srv.Metrics(), toolName, t.CacheHandler)
	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Bool("enabled", t.answers.Enabled()).Msg("answer_cache tool registered")

	return nil
}

func (t *Tool) CacheHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}
	department, err := types.ParseDepartment(input.Department)
	if err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	out := Output{Action: input.Action}

	switch input.Action {
	case "get":
		if answer, ok := t.answers.Get(ctx, input.Question, department); ok {
			out.Found = true
			out.Answer = &answer
		}
	case "put":
		out.Stored = t.answers.Put(ctx, input.Question, department, input.Answer)
	}

	result, err := tools.JSONResult(out)
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
