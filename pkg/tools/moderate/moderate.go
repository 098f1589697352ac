package moderate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const (
	toolName     = "moderate"
	defaultActor = "admin"
)

type Input struct {
	Action     string `json:"action" validate:"required,oneof=list_pending list_approved approve reject revoke stats purge"`
	ID         string `json:"id,omitempty" validate:"max=64"`
	Department string `json:"department,omitempty" validate:"omitempty,department"`
	ApprovedBy string `json:"approved_by,omitempty" validate:"max=100"` // defaults to "admin"
	Confirm    bool   `json:"confirm,omitempty"`                        // required for purge
}

// TransitionResult reports a moderation transition. Applied is false when the
// candidate is missing or not in the required state.
type TransitionResult struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	Applied bool   `json:"applied"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	workflow  *moderation.Workflow
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Workflow() == nil {
		return fmt.Errorf("%s: workflow is not configured", toolName)
	}

	tool := &mcp.Tool{
		Name: toolName,
		Description: "Moderate curated tool candidates. Actions: list_pending, list_approved (optional department), " +
			"approve (id, approved_by), reject (id), revoke (id), stats (optional department), purge (confirm=true).",
	}

	t.workflow = srv.Workflow()

	wrappedHandler := tools.WrapToolHandler(t.logger, srv.Metrics(), toolName, t.ModerateHandler)
	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Msg("moderate tool registered")

	return nil
}

func (t *Tool) ModerateHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	var department types.Department
	if input.Department != "" {
		department = types.MustParseDepartment(input.Department)
	}
	actor := input.ApprovedBy
	if actor == "" {
		actor = defaultActor
	}

	var payload any

	switch input.Action {
	case "list_pending":
		candidates := t.workflow.ListPending(ctx)
		payload = map[string]any{
			"total":      len(candidates),
			"candidates": candidates,
		}

	case "list_approved":
		var candidates []models.ToolCandidate
		if department != "" {
			candidates = t.workflow.ListApproved(ctx, department)
		} else {
			candidates = t.workflow.ListAllApproved(ctx)
		}
		payload = map[string]any{
			"total":      len(candidates),
			"department": department,
			"candidates": candidates,
		}

	case "approve", "reject", "revoke":
		if input.ID == "" {
			return nil, nil, fmt.Errorf("validation error: id is required for %s action", input.Action)
		}
		var applied bool
		switch input.Action {
		case "approve":
			applied = t.workflow.Approve(ctx, input.ID, actor)
		case "reject":
			applied = t.workflow.Reject(ctx, input.ID)
		case "revoke":
			applied = t.workflow.Revoke(ctx, input.ID)
		}
		payload = TransitionResult{ID: input.ID, Action: input.Action, Applied: applied}

	case "stats":
		if department != "" {
			payload = t.workflow.DepartmentStats(ctx, department)
		} else {
			payload = t.workflow.Stats(ctx)
		}

	case "purge":
		if !input.Confirm {
			return nil, nil, errors.New("validation error: purge requires confirm=true")
		}
		deleted, ok := t.workflow.Purge(ctx, actor)
		payload = map[string]any{
			"deleted": deleted,
			"applied": ok,
		}
	}

	result, err := tools.JSONResult(payload)
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
