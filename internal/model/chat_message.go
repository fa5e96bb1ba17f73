package model

import (
	"time"

	"github.com/lib/pq"
)

type ChatMessage struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OwnerID       string         `json:"owner_id" gorm:"not null;index"`
	Message       string         `json:"message" gorm:"type:text;not null"`
	Response      *string        `json:"response,omitempty" gorm:"type:text"`
	IsUserMessage bool           `json:"is_user_message"`
	DocRefs       pq.StringArray `json:"doc_refs,omitempty" gorm:"type:text[]"`
	CreatedAt     time.Time      `json:"created_at"`
}
