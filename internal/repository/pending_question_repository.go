package repository

import (
	"errors"

	"github.com/lshigami/mathx-agent/internal/model"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a conditional status update matches no
// row because the item already left the expected status. This is how a lost
// race between two decisions surfaces instead of a double transition.
var ErrStatusConflict = errors.New("pending question is not in the expected status")

type PendingQuestionRepository interface {
	Create(question *model.PendingQuestion) error
	FindByID(id uint) (*model.PendingQuestion, error)
	FindPendingByOwner(ownerID string) ([]model.PendingQuestion, error)
	UpdateStatus(id uint, newStatus string, expectedStatus string) error
	ApproveAndCommit(id uint, question *model.CatalogQuestion) error
}

type pendingQuestionRepository struct {
	db *gorm.DB
}

func NewPendingQuestionRepository(db *gorm.DB) PendingQuestionRepository {
	return &pendingQuestionRepository{db: db}
}

func (r *pendingQuestionRepository) Create(question *model.PendingQuestion) error {
	return r.db.Create(question).Error
}

func (r *pendingQuestionRepository) FindByID(id uint) (*model.PendingQuestion, error) {
	var question model.PendingQuestion
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *pendingQuestionRepository) FindPendingByOwner(ownerID string) ([]model.PendingQuestion, error) {
	var questions []model.PendingQuestion
	err := r.db.
		Where("owner_id = ? AND status = ?", ownerID, model.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ApproveAndCommit flips the pending row to approved and inserts the
// catalog question in one transaction. The conditional update is the
// guard: if it matches nothing the transaction aborts and no catalog row
// appears, so N concurrent approvals of one item commit at most once.
func (r *pendingQuestionRepository) ApproveAndCommit(id uint, question *model.CatalogQuestion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PendingQuestion{}).
			Where("id = ? AND status = ?", id, model.StatusPending).
			Update("status", model.StatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&model.PendingQuestion{}).Where("id = ?", id).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrStatusConflict
		}
		return tx.Create(question).Error
	})
}

// UpdateStatus applies the transition only if the row is still in
// expectedStatus. Exactly one of N concurrent callers wins; the rest get
// ErrStatusConflict (or gorm.ErrRecordNotFound if the row never existed).
func (r *pendingQuestionRepository) UpdateStatus(id uint, newStatus string, expectedStatus string) error {
	res := r.db.Model(&model.PendingQuestion{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.Model(&model.PendingQuestion{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStatusConflict
	}
	return nil
}
