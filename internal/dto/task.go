package dto

import (
	"time"

	"github.com/sidetrack-app/sidetrack/internal/models"
)

// TaskDTO represents a task in API responses. Labels and subtasks are always
// present (possibly empty), never null.
type TaskDTO struct {
	ID          uint64       `json:"id"`
	OwnerID     uint64       `json:"owner_id"`
	Title       string       `json:"title"`
	IsCompleted bool         `json:"is_completed"`
	CompletedAt *time.Time   `json:"completed_at"`
	Deadline    *time.Time   `json:"deadline"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Labels      []LabelDTO   `json:"labels"`
	Subtasks    []SubtaskDTO `json:"subtasks"`
}

// LabelDTO represents a label in API responses
type LabelDTO struct {
	ID      uint64 `json:"id"`
	OwnerID uint64 `json:"owner_id"`
	Name    string `json:"name"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID          uint64    `json:"id"`
	TaskID      uint64    `json:"task_id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToLabelDTO converts a Label model to LabelDTO
func ToLabelDTO(label models.Label) LabelDTO {
	return LabelDTO{
		ID:      label.ID,
		OwnerID: label.OwnerID,
		Name:    label.Name,
	}
}

// ToSubtaskDTO converts a Subtask model to SubtaskDTO
func ToSubtaskDTO(subtask models.Subtask) SubtaskDTO {
	return SubtaskDTO{
		ID:          subtask.ID,
		TaskID:      subtask.TaskID,
		Title:       subtask.Title,
		IsCompleted: subtask.IsCompleted,
		CreatedAt:   subtask.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	labels := make([]LabelDTO, len(task.Labels))
	for i, label := range task.Labels {
		labels[i] = ToLabelDTO(label)
	}

	subtasks := make([]SubtaskDTO, len(task.Subtasks))
	for i, subtask := range task.Subtasks {
		subtasks[i] = ToSubtaskDTO(subtask)
	}

	return TaskDTO{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		IsCompleted: task.IsCompleted,
		CompletedAt: task.CompletedAt,
		Deadline:    task.Deadline,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Labels:      labels,
		Subtasks:    subtasks,
	}
}

// ToTaskDTOs converts a slice of tasks, preserving order. The result is
// never nil so collections serialize as bare arrays.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}

// ToLabelDTOs converts a slice of labels, preserving order
func ToLabelDTOs(labels []models.Label) []LabelDTO {
	out := make([]LabelDTO, len(labels))
	for i, label := range labels {
		out[i] = ToLabelDTO(label)
	}
	return out
}
