package models

import "time"

// Subtask is a checklist item under a task. Unlike Task it carries no
// UpdatedAt column; toggling a subtask only flips the flag.
type Subtask struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	Title       string    `gorm:"not null" json:"title"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}
