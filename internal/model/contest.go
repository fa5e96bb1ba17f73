package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContestStatusDraft     = "draft"
	ContestStatusUpcoming  = "upcoming"
	ContestStatusActive    = "active"
	ContestStatusCompleted = "completed"
)

type Contest struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	Title           string            `json:"title" gorm:"not null;uniqueIndex"`
	Description     string            `json:"description,omitempty"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	Difficulty      string            `json:"difficulty,omitempty"`
	Status          string            `json:"status" gorm:"not null;default:'draft'"`
	Questions       []CatalogQuestion `json:"questions,omitempty" gorm:"foreignKey:ContestID"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
}
