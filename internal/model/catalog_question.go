package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CatalogQuestion is a published question, created only by an approval
// commit (or a direct authoring path). Immutable after creation.
type CatalogQuestion struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ContestID     uint           `json:"contest_id" gorm:"not null;index"`
	QuestionText  string         `json:"question_text" gorm:"type:text;not null"`
	Options       pq.StringArray `json:"options" gorm:"type:text[];not null"`
	CorrectOption string         `json:"correct_option" gorm:"not null"`
	Marks         int            `json:"marks" gorm:"not null;default:10"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
