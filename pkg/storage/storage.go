package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tb0hdan/kmu-curator/pkg/models"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrPreconditionFailed = errors.New("status precondition failed")
)

// CandidateFilter selects candidates by equality. Zero values match anything.
type CandidateFilter struct {
	Status     types.Status
	Department types.Department
}

// StatusUpdate is the field set written by a moderation transition.
type StatusUpdate struct {
	Status     types.Status
	ApprovedBy string
	ApprovedAt *time.Time
}

type Storage interface {
	// Tool candidate operations
	CreateToolCandidate(ctx context.Context, candidate *models.ToolCandidate) error
	GetToolCandidate(ctx context.Context, id string) (*models.ToolCandidate, error)
	ListToolCandidates(ctx context.Context, filter CandidateFilter) ([]models.ToolCandidate, error)
	// TransitionToolCandidate applies update only while the record is in status from.
	TransitionToolCandidate(ctx context.Context, id string, from types.Status, update StatusUpdate) error
	DeleteAllToolCandidates(ctx context.Context) (int64, error)

	// Answer cache operations
	GetCachedAnswer(ctx context.Context, key string) (*models.CachedAnswer, error)
	UpsertCachedAnswer(ctx context.Context, answer *models.CachedAnswer) error
	DeleteCachedAnswersByDepartment(ctx context.Context, department types.Department) (int64, error)

	// Moderation audit operations
	CreateModerationEvent(ctx context.Context, event *models.ModerationEvent) error
	GetModerationEvents(ctx context.Context, limit, offset int) ([]models.ModerationEvent, int64, error)
	DeleteAllModerationEvents(ctx context.Context) error

	// Lifecycle
	Close() error
}
