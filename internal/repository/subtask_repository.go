package repository

import (
	"errors"

	"github.com/sidetrack-app/sidetrack/internal/models"
	"gorm.io/gorm"
)

// GormSubtaskRepository is a GORM implementation of SubtaskRepository.
// Subtasks carry no owner column of their own; every operation scopes
// through the parent task's owner.
type GormSubtaskRepository struct {
	db *gorm.DB
}

// NewSubtaskRepository creates a new SubtaskRepository
func NewSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &GormSubtaskRepository{db: db}
}

func (r *GormSubtaskRepository) ownedTasks(ownerID uint64) *gorm.DB {
	return r.db.Model(&models.Task{}).Select("id").Where("owner_id = ?", ownerID)
}

// Create adds a subtask under a task the owner holds
func (r *GormSubtaskRepository) Create(subtask *models.Subtask, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Task{}).
			Where("id = ? AND owner_id = ?", subtask.TaskID, ownerID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return ErrNotFound
		}
		return tx.Create(subtask).Error
	})
}

// FindByID returns the subtask if its parent task belongs to the owner
func (r *GormSubtaskRepository) FindByID(id, ownerID uint64) (*models.Subtask, error) {
	var subtask models.Subtask
	err := r.db.
		Where("id = ? AND task_id IN (?)", id, r.ownedTasks(ownerID)).
		First(&subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &subtask, nil
}

// Toggle flips is_completed. No updated_at column exists on subtasks.
func (r *GormSubtaskRepository) Toggle(id, ownerID uint64) error {
	res := r.db.Model(&models.Subtask{}).
		Where("id = ? AND task_id IN (?)", id, r.ownedTasks(ownerID)).
		Update("is_completed", gorm.Expr("NOT is_completed"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the subtask; the parent task is never affected
func (r *GormSubtaskRepository) Delete(id, ownerID uint64) (bool, error) {
	res := r.db.
		Where("id = ? AND task_id IN (?)", id, r.ownedTasks(ownerID)).
		Delete(&models.Subtask{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
