package repository

import (
	"github.com/lshigami/mathx-agent/internal/model"
	"gorm.io/gorm"
)

type ChatMessageRepository interface {
	Create(message *model.ChatMessage) error
	FindByOwner(ownerID string, limit int) ([]model.ChatMessage, error)
}

type chatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(message *model.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *chatMessageRepository) FindByOwner(ownerID string, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
