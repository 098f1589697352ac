package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// ToolCandidate is a proposed or vetted AI tool recommendation.
type ToolCandidate struct {
	ID             string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Query          string           `gorm:"type:text" json:"query"`
	ToolName       string           `gorm:"type:varchar(60);index;not null" json:"tool_name"`
	SourceURL      string           `gorm:"type:text" json:"source_url,omitempty"`
	Department     types.Department `gorm:"type:varchar(32);index:idx_department_status;not null" json:"department"`
	Description    string           `gorm:"type:text" json:"description"`
	ValidationNote string           `gorm:"type:varchar(255)" json:"validation_note,omitempty"`
	Status         types.Status     `gorm:"type:varchar(16);index:idx_department_status;not null" json:"status"`
	ApprovedBy     string           `gorm:"type:varchar(255)" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
}

// CandidateParams carries the ingestion inputs for a new candidate.
type CandidateParams struct {
	Query          string
	Department     types.Department
	Description    string
	ValidationNote string
	ToolName       string
	SourceURL      string
}

// NewToolCandidate builds a pending candidate. The tool name falls back to the
// query and is cut to types.MaxToolNameLength.
func NewToolCandidate(p CandidateParams) (*ToolCandidate, error) {
	if !p.Department.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidDepartment, p.Department)
	}

	name := strings.TrimSpace(p.ToolName)
	if name == "" {
		name = strings.TrimSpace(p.Query)
	}

	return &ToolCandidate{
		ID:             uuid.New().String(),
		CreatedAt:      time.Now().UTC(),
		Query:          p.Query,
		ToolName:       types.Truncate(name, types.MaxToolNameLength),
		SourceURL:      strings.TrimSpace(p.SourceURL),
		Department:     p.Department,
		Description:    p.Description,
		ValidationNote: p.ValidationNote,
		Status:         types.StatusPending,
	}, nil
}

func (c *ToolCandidate) IsApproved() bool {
	return c.Status == types.StatusApproved
}
