package models

import "time"

// Moderation audit actions.
const (
	ActionIngest  = "ingest"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionRevoke  = "revoke"
	ActionPurge   = "purge"
)

// ModerationEvent is one audit log entry for a moderation attempt.
type ModerationEvent struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	CandidateID string    `gorm:"type:varchar(36);index" json:"candidate_id,omitempty"`
	Action      string    `gorm:"type:varchar(16);index;not null" json:"action"`
	Actor       string    `gorm:"type:varchar(255)" json:"actor,omitempty"`
	Applied     bool      `gorm:"index" json:"applied"`
}
