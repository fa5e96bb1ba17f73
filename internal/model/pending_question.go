package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Pending question lifecycle. Transitions are pending -> approved or
// pending -> rejected only; rows are soft-deleted at most, never removed,
// so the review trail stays auditable.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type PendingQuestion struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	BatchID       string         `json:"batch_id" gorm:"index"`
	ContestID     *uint          `json:"contest_id,omitempty" gorm:"index"`
	OwnerID       string         `json:"owner_id" gorm:"not null;index"`
	QuestionBody  string         `json:"question_body" gorm:"type:text;not null"`
	Options       pq.StringArray `json:"options" gorm:"type:text[];not null"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	Status        string         `json:"status" gorm:"not null;default:'pending';index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
