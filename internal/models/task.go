package models

import "time"

type Task struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	OwnerID uint64 `gorm:"not null;index" json:"owner_id"`
	Title   string `gorm:"not null" json:"title"`
	// CompletedAt is non-nil iff IsCompleted is true; both columns are always
	// written by the same statement so they cannot drift apart.
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Owner    User      `gorm:"foreignKey:OwnerID" json:"-"`
	Labels   []Label   `gorm:"many2many:task_labels;constraint:OnDelete:CASCADE" json:"labels"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks"`
}
