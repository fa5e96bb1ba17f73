package repository

import (
	"github.com/lshigami/mathx-agent/internal/model"
	"gorm.io/gorm"
)

type ContestRepository interface {
	Create(contest *model.Contest) error
	FindByID(id uint) (*model.Contest, error)
	FindByTitle(title string) (*model.Contest, error)
	FindAll() ([]model.Contest, error)
}

type contestRepository struct {
	db *gorm.DB
}

func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Create(contest *model.Contest) error {
	return r.db.Create(contest).Error
}

func (r *contestRepository) FindByID(id uint) (*model.Contest, error) {
	var contest model.Contest
	if err := r.db.First(&contest, id).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *contestRepository) FindByTitle(title string) (*model.Contest, error) {
	var contest model.Contest
	if err := r.db.Where("title = ?", title).First(&contest).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *contestRepository) FindAll() ([]model.Contest, error) {
	var contests []model.Contest
	if err := r.db.Order("created_at DESC").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}
