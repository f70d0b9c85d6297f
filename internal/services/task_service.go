package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sidetrack-app/sidetrack/internal/constants"
	"github.com/sidetrack-app/sidetrack/internal/models"
	"github.com/sidetrack-app/sidetrack/internal/repository"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title must be at most %d characters", constants.MaxTitleLength)
)

// TaskService handles task and subtask business logic. Input validation
// happens here, before any repository call: a rejected input performs zero
// persistence work.
type TaskService struct {
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, subtaskRepo repository.SubtaskRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID  uint64
	Title    string
	Deadline *time.Time
}

// validateTitle trims and bounds-checks a title
func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// ListTasks returns the owner's tasks, newest first
func (s *TaskService) ListTasks(ownerID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a single task within the owner's scope
func (s *TaskService) GetTask(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask validates and creates a new task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		OwnerID:  input.OwnerID,
		Title:    title,
		Deadline: input.Deadline,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, input.OwnerID)
}

// RenameTask updates a task's title
func (s *TaskService) RenameTask(taskID, ownerID uint64, rawTitle string) (*models.Task, error) {
	title, err := validateTitle(rawTitle)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.UpdateTitle(taskID, ownerID, title); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to rename task: %w", err)
	}

	return s.taskRepo.FindByID(taskID, ownerID)
}

// RescheduleTask sets or clears a task's deadline
func (s *TaskService) RescheduleTask(taskID, ownerID uint64, deadline *time.Time) (*models.Task, error) {
	if err := s.taskRepo.UpdateDeadline(taskID, ownerID, deadline); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to reschedule task: %w", err)
	}

	return s.taskRepo.FindByID(taskID, ownerID)
}

// ToggleTask flips a task's completion state
func (s *TaskService) ToggleTask(taskID, ownerID uint64) (*models.Task, error) {
	if err := s.taskRepo.ToggleComplete(taskID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	return s.taskRepo.FindByID(taskID, ownerID)
}

// DeleteTask removes a task. Deleting an already-absent task reports
// affected=false, not an error.
func (s *TaskService) DeleteTask(taskID, ownerID uint64) (bool, error) {
	affected, err := s.taskRepo.Delete(taskID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return affected, nil
}

// AddSubtask validates and creates a subtask under an owned task
func (s *TaskService) AddSubtask(taskID, ownerID uint64, rawTitle string) (*models.Subtask, error) {
	title, err := validateTitle(rawTitle)
	if err != nil {
		return nil, err
	}

	subtask := &models.Subtask{
		TaskID: taskID,
		Title:  title,
	}
	if err := s.subtaskRepo.Create(subtask, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	return subtask, nil
}

// ToggleSubtask flips a subtask's completion flag
func (s *TaskService) ToggleSubtask(subtaskID, ownerID uint64) (*models.Subtask, error) {
	if err := s.subtaskRepo.Toggle(subtaskID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to toggle subtask: %w", err)
	}

	subtask, err := s.subtaskRepo.FindByID(subtaskID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to reload subtask: %w", err)
	}
	return subtask, nil
}

// RemoveSubtask deletes a subtask, leaving the parent task untouched
func (s *TaskService) RemoveSubtask(subtaskID, ownerID uint64) (bool, error) {
	affected, err := s.subtaskRepo.Delete(subtaskID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subtask: %w", err)
	}
	return affected, nil
}
