package repository

import (
	"github.com/sidetrack-app/sidetrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLabelRepository is a GORM implementation of LabelRepository
type GormLabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &GormLabelRepository{db: db}
}

// Attach verifies task ownership, upserts the label keyed by (owner, name)
// and inserts the join row, all inside one transaction. Each step ignores
// conflicts, so replaying the whole sequence after a partial failure
// converges on the same rows. created tags which upsert branch ran: the
// insert is attempted first and the uniqueness constraint decides, never a
// racy check-then-insert.
func (r *GormLabelRepository) Attach(taskID, ownerID uint64, name string) (*models.Label, bool, error) {
	var label models.Label
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Task{}).
			Where("id = ? AND owner_id = ?", taskID, ownerID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return ErrNotFound
		}

		label = models.Label{OwnerID: ownerID, Name: name}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "name"}},
			DoNothing: true,
		}).Create(&label)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1
		if !created {
			// Conflict branch: the row already exists, reselect it in the
			// same transaction to get its id.
			if err := tx.Where("owner_id = ? AND name = ?", ownerID, name).
				First(&label).Error; err != nil {
				return err
			}
		}

		join := models.TaskLabel{TaskID: taskID, LabelID: label.ID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&join).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &label, created, nil
}

// Detach removes the join row. Scoping through the owned task suffices:
// labels and tasks share an owner by construction.
func (r *GormLabelRepository) Detach(taskID, labelID, ownerID uint64) (bool, error) {
	ownedTask := r.db.Model(&models.Task{}).
		Select("id").
		Where("id = ? AND owner_id = ?", taskID, ownerID)

	res := r.db.
		Where("task_id IN (?) AND label_id = ?", ownedTask, labelID).
		Delete(&models.TaskLabel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the label and all of its join rows in a transaction
func (r *GormLabelRepository) Delete(labelID, ownerID uint64) (bool, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ownedLabel := tx.Model(&models.Label{}).
			Select("id").
			Where("id = ? AND owner_id = ?", labelID, ownerID)

		if err := tx.Where("label_id IN (?)", ownedLabel).Delete(&models.TaskLabel{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND owner_id = ?", labelID, ownerID).Delete(&models.Label{})
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

// ListByOwner returns the owner's labels ordered by name
func (r *GormLabelRepository) ListByOwner(ownerID uint64) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}
