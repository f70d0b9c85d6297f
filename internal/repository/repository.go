package repository

import (
	"errors"
	"time"

	"github.com/sidetrack-app/sidetrack/internal/models"
)

// ErrNotFound is returned by every owner-scoped lookup or mutation when the
// target row is absent or belongs to a different owner. The two cases are
// deliberately indistinguishable.
var ErrNotFound = errors.New("repository: not found")

// TaskRepository defines owner-scoped task data access
type TaskRepository interface {
	// Create creates a new task for its owner
	Create(task *models.Task) error

	// FindByID returns the task with labels and subtasks preloaded
	FindByID(id, ownerID uint64) (*models.Task, error)

	// ListByOwner returns the owner's tasks newest-first, each with its
	// label set and subtasks aggregated inline
	ListByOwner(ownerID uint64) ([]models.Task, error)

	// UpdateTitle sets the title and advances updated_at
	UpdateTitle(id, ownerID uint64, title string) error

	// UpdateDeadline sets or clears the deadline and advances updated_at
	UpdateDeadline(id, ownerID uint64, deadline *time.Time) error

	// ToggleComplete flips is_completed and sets or clears completed_at in
	// the same statement, advancing updated_at
	ToggleComplete(id, ownerID uint64) error

	// Delete removes the task with its subtasks and label joins. Reports
	// whether a task row was removed; deleting twice is not an error.
	Delete(id, ownerID uint64) (bool, error)
}

// LabelRepository defines owner-scoped label data access
type LabelRepository interface {
	// Attach upserts the label keyed by (owner, name) and joins it to the
	// task. created reports whether this call inserted the label row.
	Attach(taskID, ownerID uint64, name string) (label *models.Label, created bool, err error)

	// Detach removes the task-label join row, reporting whether one existed
	Detach(taskID, labelID, ownerID uint64) (bool, error)

	// Delete removes the label and all of its join rows
	Delete(labelID, ownerID uint64) (bool, error)

	// ListByOwner returns the owner's labels ordered by name
	ListByOwner(ownerID uint64) ([]models.Label, error)
}

// SubtaskRepository defines subtask data access, scoped through the parent
// task's owner
type SubtaskRepository interface {
	// Create adds a subtask under a task the owner holds
	Create(subtask *models.Subtask, ownerID uint64) error

	// FindByID returns the subtask if its parent task belongs to the owner
	FindByID(id, ownerID uint64) (*models.Subtask, error)

	// Toggle flips is_completed; subtasks carry no updated_at
	Toggle(id, ownerID uint64) error

	// Delete removes the subtask, never touching the parent task
	Delete(id, ownerID uint64) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
