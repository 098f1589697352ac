// Package moderation governs the lifecycle of tool candidates:
// pending -> approved | rejected, and approved -> pending on revocation.
//
// Every operation is total. Missing records, failed preconditions and storage
// failures all surface as false or empty results; storage failures are logged.
package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/tb0hdan/kmu-curator/pkg/metrics"
	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/storage"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// IngestRequest describes one candidate produced by the ingestion pipeline.
type IngestRequest struct {
	Query          string           `json:"query"`
	Department     types.Department `json:"department"`
	Description    string           `json:"description"`
	ProvenanceNote string           `json:"provenance_note"`
	ToolName       string           `json:"tool_name,omitempty"`
	SourceURL      string           `json:"source_url,omitempty"`
}

// AnswerCache drops memoized answers whose approved set changed.
type AnswerCache interface {
	Invalidate(ctx context.Context, department types.Department) bool
}

type Workflow struct {
	store   storage.Storage
	answers AnswerCache
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewWorkflow(store storage.Storage, logger zerolog.Logger, m *metrics.Metrics) *Workflow {
	return &Workflow{
		store:   store,
		logger:  logger.With().Str("component", "moderation").Logger(),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// InvalidateOnChange makes approve, revoke and purge drop the cached answers
// of every affected department. It returns w.
func (w *Workflow) InvalidateOnChange(answers AnswerCache) *Workflow {
	w.answers = answers
	return w
}

// Ingest stores a new pending candidate and returns its id. Every call creates
// a new record; identical names are not merged.
func (w *Workflow) Ingest(ctx context.Context, req IngestRequest) (string, bool) {
	candidate, err := models.NewToolCandidate(models.CandidateParams{
		Query:          req.Query,
		Department:     req.Department,
		Description:    req.Description,
		ValidationNote: req.ProvenanceNote,
		ToolName:       req.ToolName,
		SourceURL:      req.SourceURL,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("query", req.Query).Msg("rejected candidate")
		return "", false
	}

	if err := w.store.CreateToolCandidate(ctx, candidate); err != nil {
		w.logger.Error().Err(err).Str("tool_name", candidate.ToolName).Msg("failed to store candidate")
		return "", false
	}

	w.metrics.Ingest(candidate.Department.String())
	w.audit(ctx, candidate.ID, models.ActionIngest, "", true)
	w.logger.Debug().
		Str("id", candidate.ID).
		Str("tool_name", candidate.ToolName).
		Str("department", candidate.Department.String()).
		Msg("candidate ingested")

	return candidate.ID, true
}

// IngestAll ingests requests in order and returns the ids that were stored.
func (w *Workflow) IngestAll(ctx context.Context, reqs []IngestRequest) []string {
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if id, ok := w.Ingest(ctx, req); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (w *Workflow) Get(ctx context.Context, id string) (*models.ToolCandidate, bool) {
	candidate, err := w.store.GetToolCandidate(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			w.logger.Error().Err(err).Str("id", id).Msg("failed to load candidate")
		}
		return nil, false
	}
	return candidate, true
}

func (w *Workflow) ListPending(ctx context.Context) []models.ToolCandidate {
	return w.list(ctx, storage.CandidateFilter{Status: types.StatusPending})
}

func (w *Workflow) ListApproved(ctx context.Context, department types.Department) []models.ToolCandidate {
	return w.list(ctx, storage.CandidateFilter{Status: types.StatusApproved, Department: department})
}

func (w *Workflow) ListAllApproved(ctx context.Context) []models.ToolCandidate {
	return w.list(ctx, storage.CandidateFilter{Status: types.StatusApproved})
}

func (w *Workflow) list(ctx context.Context, filter storage.CandidateFilter) []models.ToolCandidate {
	candidates, err := w.store.ListToolCandidates(ctx, filter)
	if err != nil {
		w.logger.Error().Err(err).
			Str("status", filter.Status.String()).
			Str("department", filter.Department.String()).
			Msg("failed to list candidates")
		return []models.ToolCandidate{}
	}
	if candidates == nil {
		return []models.ToolCandidate{}
	}
	return candidates
}

// Approve moves a pending candidate to approved and stamps the approver.
func (w *Workflow) Approve(ctx context.Context, id, approvedBy string) bool {
	now := w.now()
	return w.transition(ctx, id, approvedBy, models.ActionApprove, types.StatusPending, storage.StatusUpdate{
		Status:     types.StatusApproved,
		ApprovedBy: approvedBy,
		ApprovedAt: &now,
	})
}

// Reject moves a pending candidate to the terminal rejected state.
func (w *Workflow) Reject(ctx context.Context, id string) bool {
	return w.transition(ctx, id, "", models.ActionReject, types.StatusPending, storage.StatusUpdate{
		Status: types.StatusRejected,
	})
}

// Revoke returns an approved candidate to pending and clears the approval stamp.
func (w *Workflow) Revoke(ctx context.Context, id string) bool {
	return w.transition(ctx, id, "", models.ActionRevoke, types.StatusApproved, storage.StatusUpdate{
		Status: types.StatusPending,
	})
}

func (w *Workflow) transition(ctx context.Context, id, actor, action string, from types.Status, update storage.StatusUpdate) bool {
	err := w.store.TransitionToolCandidate(ctx, id, from, update)
	log := w.logger.With().Str("id", id).Str("action", action).Logger()

	switch {
	case err == nil:
		w.metrics.Transition(action, metrics.ResultApplied)
		w.audit(ctx, id, action, actor, true)
		log.Info().Str("status", update.Status.String()).Msg("candidate transitioned")
		if from == types.StatusApproved || update.Status == types.StatusApproved {
			w.invalidate(ctx, id)
		}
		return true
	case errors.Is(err, storage.ErrNotFound):
		w.metrics.Transition(action, metrics.ResultRefused)
		log.Debug().Msg("candidate not found")
	case errors.Is(err, storage.ErrPreconditionFailed):
		w.metrics.Transition(action, metrics.ResultRefused)
		w.audit(ctx, id, action, actor, false)
		log.Warn().Str("expected", from.String()).Msg("candidate not in expected status")
	default:
		w.metrics.Transition(action, metrics.ResultError)
		log.Error().Err(err).Msg("transition failed")
	}
	return false
}

// Purge deletes every candidate. It returns the number removed.
func (w *Workflow) Purge(ctx context.Context, actor string) (int64, bool) {
	n, err := w.store.DeleteAllToolCandidates(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to purge candidates")
		return 0, false
	}
	w.audit(ctx, "", models.ActionPurge, actor, true)
	if w.answers != nil {
		for _, d := range types.Departments() {
			w.answers.Invalidate(ctx, d)
		}
	}
	w.logger.Warn().Int64("deleted", n).Str("actor", actor).Msg("candidates purged")
	return n, true
}

// History returns audit events newest first with the total count.
func (w *Workflow) History(ctx context.Context, limit, offset int) ([]models.ModerationEvent, int64) {
	events, total, err := w.store.GetModerationEvents(ctx, limit, offset)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load moderation history")
		return []models.ModerationEvent{}, 0
	}
	if events == nil {
		events = []models.ModerationEvent{}
	}
	return events, total
}

func (w *Workflow) ClearHistory(ctx context.Context) bool {
	if err := w.store.DeleteAllModerationEvents(ctx); err != nil {
		w.logger.Error().Err(err).Msg("failed to clear moderation history")
		return false
	}
	return true
}

func (w *Workflow) audit(ctx context.Context, id, action, actor string, applied bool) {
	event := &models.ModerationEvent{
		CandidateID: id,
		Action:      action,
		Actor:       actor,
		Applied:     applied,
	}
	if err := w.store.CreateModerationEvent(ctx, event); err != nil {
		w.logger.Error().Err(err).Str("id", id).Str("action", action).Msg("failed to record audit event")
	}
}

// invalidate clears the cached answers of the candidate's department after a
// change to the approved set.
func (w *Workflow) invalidate(ctx context.Context, id string) {
	if w.answers == nil {
		return
	}
	candidate, err := w.store.GetToolCandidate(ctx, id)
	if err != nil {
		w.logger.Error().Err(err).Str("id", id).Msg("failed to resolve department for cache invalidation")
		return
	}
	w.answers.Invalidate(ctx, candidate.Department)
}
