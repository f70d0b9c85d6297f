package repository

import (
	"errors"
	"time"

	"github.com/sidetrack-app/sidetrack/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID within its owner's scope
func (r *GormTaskRepository) FindByID(id, ownerID uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Preload("Labels").
		Preload("Subtasks").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListByOwner returns the owner's tasks newest-first with relations preloaded
func (r *GormTaskRepository) ListByOwner(ownerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Preload("Labels").
		Preload("Subtasks").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTitle sets the title; the owner check rides in the same WHERE clause
// as the primary key, so a mismatched owner reads as a missing row.
func (r *GormTaskRepository) UpdateTitle(id, ownerID uint64, title string) error {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"title":      title,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDeadline sets or clears the deadline
func (r *GormTaskRepository) UpdateDeadline(id, ownerID uint64, deadline *time.Time) error {
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"deadline":   deadline,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleComplete flips is_completed and sets or clears completed_at in one
// statement. The CASE expressions see the pre-update row, so the flag and
// timestamp always move together.
func (r *GormTaskRepository) ToggleComplete(id, ownerID uint64) error {
	now := time.Now()
	res := r.db.Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]any{
			"is_completed": gorm.Expr("NOT is_completed"),
			"completed_at": gorm.Expr("CASE WHEN is_completed THEN NULL ELSE ? END", now),
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the task along with its subtasks and label joins in a
// transaction. Child rows are scoped through the owned task so nothing is
// touched when the owner does not match.
func (r *GormTaskRepository) Delete(id, ownerID uint64) (bool, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ownedTask := tx.Model(&models.Task{}).
			Select("id").
			Where("id = ? AND owner_id = ?", id, ownerID)

		if err := tx.Where("task_id IN (?)", ownedTask).Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", ownedTask).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
