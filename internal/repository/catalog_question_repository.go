package repository

import (
	"github.com/lshigami/mathx-agent/internal/model"
	"gorm.io/gorm"
)

type CatalogQuestionRepository interface {
	Create(question *model.CatalogQuestion) error
	FindByContestID(contestID uint) ([]model.CatalogQuestion, error)
}

type catalogQuestionRepository struct {
	db *gorm.DB
}

func NewCatalogQuestionRepository(db *gorm.DB) CatalogQuestionRepository {
	return &catalogQuestionRepository{db: db}
}

func (r *catalogQuestionRepository) Create(question *model.CatalogQuestion) error {
	return r.db.Create(question).Error
}

func (r *catalogQuestionRepository) FindByContestID(contestID uint) ([]model.CatalogQuestion, error) {
	var questions []model.CatalogQuestion
	if err := r.db.Where("contest_id = ?", contestID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
