package models

// Label is a free-form tag scoped to its owner. Names are unique per owner,
// enforced by the composite index rather than any check-then-insert.
type Label struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	OwnerID uint64 `gorm:"not null;uniqueIndex:idx_labels_owner_name" json:"owner_id"`
	Name    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_labels_owner_name" json:"name"`

	// Relations
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Tasks []Task `gorm:"many2many:task_labels" json:"-"`
}

// TaskLabel is the task-to-label join row. It backs the many2many relation
// on Task and gives the repository a handle for conflict-ignoring inserts
// and cascading deletes.
type TaskLabel struct {
	TaskID  uint64 `gorm:"primarykey" json:"task_id"`
	LabelID uint64 `gorm:"primarykey" json:"label_id"`
}
