package ingest

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/catalog"
	"github.com/tb0hdan/kmu-curator/pkg/extraction"
	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/server"
	"github.com/tb0hdan/kmu-curator/pkg/tools"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const toolName = "ingest"

type Input struct {
	Action         string `json:"action" validate:"required,oneof=single extraction seed mentions"`
	Query          string `json:"query,omitempty" validate:"max=500"`
	Department     string `json:"department,omitempty" validate:"omitempty,department"`
	Description    string `json:"description,omitempty" validate:"max=4000"`
	ProvenanceNote string `json:"provenance_note,omitempty" validate:"max=255"`
	ToolName       string `json:"tool_name,omitempty"` // truncated to 60 characters
	SourceURL      string `json:"source_url,omitempty" validate:"omitempty,url"`
	// Language-model output with "TOOL: <name> | DESC: <description>" lines.
	ExtractionText string                    `json:"extraction_text,omitempty"`
	Results        []extraction.SearchResult `json:"results,omitempty" validate:"max=20"`
	KnownTools     []string                  `json:"known_tools,omitempty"`
}

// Result lists the ids of the pending candidates that were created.
type Result struct {
	Action  string   `json:"action"`
	Created int      `json:"created"`
	IDs     []string `json:"ids"`
}

type Tool struct {
	logger    zerolog.Logger
	validator *validator.Validate
	workflow  *moderation.Workflow
	catalog   *catalog.Catalog
}

func (t *Tool) Register(srv *server.Server) error {
	if srv.Workflow() == nil {
		return fmt.Errorf("%s: workflow is not configured", toolName)
	}
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("%s: %w", toolName, err)
	}

	tool := &mcp.Tool{
		Name: toolName,
		Description: "Add pending tool candidates for moderation. Actions: single (query, department, description, " +
			"provenance_note, tool_name, source_url), extraction (query, department, extraction_text, results), " +
			"seed (curated starter catalogue), mentions (count known tool names in results).",
	}

	t.workflow = srv.Workflow()
	t.catalog = cat

	wrappedHandler := tools.WrapToolHandler(t.logger, srv.Metrics(), toolName, t.IngestHandler)
	mcp.AddTool(&srv.Server, tool, wrappedHandler)
	t.logger.Debug().Int("catalog_size", cat.Len()).Msg("ingest tool registered")

	return nil
}

func (t *Tool) IngestHandler(ctx context.Context, _ *mcp.CallToolRequest, input Input) (*mcp.CallToolResult, any, error) {
	if err := t.validator.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}

	var department types.Department
	if input.Department != "" {
		department = types.MustParseDepartment(input.Department)
	}
	if (input.Action == "single" || input.Action == "extraction") && (input.Query == "" || department == "") {
		return nil, nil, fmt.Errorf("validation error: query and department are required for %s action", input.Action)
	}

	var ids []string

	switch input.Action {
	case "single":
		provenance := input.ProvenanceNote
		if provenance == "" {
			provenance = types.ProvenanceManualEntry
		}
		id, ok := t.workflow.Ingest(ctx, moderation.IngestRequest{
			Query:          input.Query,
			Department:     department,
			Description:    input.Description,
			ProvenanceNote: provenance,
			ToolName:       input.ToolName,
			SourceURL:      input.SourceURL,
		})
		if ok {
			ids = append(ids, id)
		}

	case "extraction":
		reqs := extraction.Plan(input.Query, department, input.ExtractionText, input.Results)
		ids = t.workflow.IngestAll(ctx, reqs)

	case "seed":
		ids = t.catalog.Seed(ctx, t.workflow)

	case "mentions":
		result, err := tools.JSONResult(map[string]any{
			"action":   input.Action,
			"mentions": extraction.CountMentions(input.Results, input.KnownTools),
		})
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil
	}

	if ids == nil {
		ids = []string{}
	}
	result, err := tools.JSONResult(Result{Action: input.Action, Created: len(ids), IDs: ids})
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
