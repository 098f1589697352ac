// Package ranking answers a department question from the curated tool catalog.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/cache"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/relevance"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

const (
	topPickThreshold   = 0.5
	relevantThreshold  = 0.4
	relevantRankCutoff = 3
)

// Catalog supplies the approved candidates of a department. Implementations
// return an empty slice when the store is unavailable.
type Catalog interface {
	ListApproved(ctx context.Context, department types.Department) []models.ToolCandidate
}

// RankedTool is one scored entry of a response.
type RankedTool struct {
	Rank        int     `json:"rank"`
	ID          string  `json:"id"`
	ToolName    string  `json:"tool_name"`
	SourceURL   string  `json:"source_url,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
}

// Response is the outcome of answering a question. NoCuratedData with a nil
// Answer tells the caller to fall back to direct synthesis.
type Response struct {
	Answer        *string      `json:"answer"`
	Curated       bool         `json:"curated"`
	ToolCount     int          `json:"tool_count"`
	NoCuratedData bool         `json:"no_curated_data"`
	Message       string       `json:"message,omitempty"`
	Cached        bool         `json:"cached"`
	Ranked        []RankedTool `json:"ranked,omitempty"`
}

type Responder struct {
	catalog Catalog
	scorer  *relevance.Scorer
	answers *cache.Cache
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewResponder wires the ranking pipeline. answers may be nil, in which case
// Ask behaves like Answer.
func NewResponder(catalog Catalog, scorer *relevance.Scorer, answers *cache.Cache, logger zerolog.Logger, m *metrics.Metrics) *Responder {
	return &Responder{
		catalog: catalog,
		scorer:  scorer,
		answers: answers,
		logger:  logger.With().Str("component", "ranking").Logger(),
		metrics: m,
	}
}

// Answer ranks the approved tools of department against question. It has no
// side effects.
func (r *Responder) Answer(ctx context.Context, question string, department types.Department) Response {
	approved := r.catalog.ListApproved(ctx, department)
	if len(approved) == 0 {
		r.metrics.Answer(department.String(), metrics.OutcomeNoData)
		return Response{
			NoCuratedData: true,
			Message: fmt.Sprintf(
				"Noch keine empfohlenen Tools für %s verfügbar. Bitte wenden Sie sich an den Administrator.", department),
		}
	}

	ranked := r.Rank(question, approved)
	text := Render(department, ranked, len(approved))

	r.metrics.Answer(department.String(), metrics.OutcomeCurated)
	r.logger.Debug().
		Str("department", department.String()).
		Int("tools", len(approved)).
		Float64("top_score", ranked[0].Score).
		Msg("ranked curated tools")

	return Response{
		Answer:    &text,
		Curated:   true,
		ToolCount: len(approved),
		Ranked:    ranked,
	}
}

// Ask serves from the answer cache when possible, otherwise ranks and caches
// curated answers. No-data responses are never cached. Cache hits carry the
// stored answer and tool count but no Ranked entries; the cache is kept in
// step with moderation through Workflow.InvalidateOnChange.
func (r *Responder) Ask(ctx context.Context, question string, department types.Department) Response {
	if r.answers != nil {
		if hit, ok := r.answers.Lookup(ctx, question, department); ok {
			r.metrics.Answer(department.String(), metrics.OutcomeCached)
			return Response{Answer: &hit.Answer, Curated: true, ToolCount: hit.ToolCount, Cached: true}
		}
	}

	resp := r.Answer(ctx, question, department)
	if resp.Answer != nil && r.answers != nil {
		r.answers.PutRanked(ctx, question, department, *resp.Answer, resp.ToolCount)
	}
	return resp
}

// Rank scores every tool and stable-sorts by descending score, so ties keep
// fetch order.
func (r *Responder) Rank(question string, tools []models.ToolCandidate) []RankedTool {
	ranked := make([]RankedTool, 0, len(tools))
	for _, tool := range tools {
		ranked = append(ranked, RankedTool{
			ID:          tool.ID,
			ToolName:    tool.ToolName,
			SourceURL:   tool.SourceURL,
			Description: tool.Description,
			Score:       r.scorer.Score(question, tool),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Badge returns the annotation shown next to an entry, if any. A first-ranked
// entry below the top-pick threshold can still be marked relevant.
func Badge(rank int, score float64) string {
	switch {
	case rank == 1 && score > topPickThreshold:
		return " ⭐ TOP-Empfehlung"
	case rank >= 1 && rank <= relevantRankCutoff && score > relevantThreshold:
		return " 🔥 Sehr relevant"
	}
	return ""
}
