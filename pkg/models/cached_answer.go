package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/tb0hdan/kmu-curator/pkg/types"
)

// CachedAnswer memoizes the response to a question within a department.
type CachedAnswer struct {
	QuestionHash string           `gorm:"primaryKey;type:varchar(64)" json:"question_hash"`
	Department   types.Department `gorm:"type:varchar(32);index;not null" json:"department"`
	Question     string           `gorm:"type:text" json:"question"`
	Answer       string           `gorm:"type:text" json:"answer"`
	// Approved tools ranked into Answer; zero for answers stored directly.
	ToolCount int       `gorm:"not null;default:0" json:"tool_count"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerKey hashes department + ":" + the lower-cased, trimmed question.
func AnswerKey(question string, department types.Department) string {
	combined := string(department) + ":" + strings.ToLower(strings.TrimSpace(question))
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

func NewCachedAnswer(question string, department types.Department, answer string) *CachedAnswer {
	return &CachedAnswer{
		QuestionHash: AnswerKey(question, department),
		Department:   department,
		Question:     question,
		Answer:       answer,
		CreatedAt:    time.Now().UTC(),
	}
}
