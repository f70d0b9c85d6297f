package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sidetrack-app/sidetrack/internal/constants"
	"github.com/sidetrack-app/sidetrack/internal/models"
	"github.com/sidetrack-app/sidetrack/internal/repository"
)

var (
	ErrLabelNotFound     = errors.New("label not found")
	ErrLabelNameRequired = errors.New("label name is required")
	ErrLabelNameTooLong  = fmt.Errorf("label name must be at most %d characters", constants.MaxLabelNameLength)
)

// LabelService handles label business logic
type LabelService struct {
	labelRepo repository.LabelRepository
}

// NewLabelService creates a new LabelService
func NewLabelService(labelRepo repository.LabelRepository) *LabelService {
	return &LabelService{labelRepo: labelRepo}
}

// AttachLabel attaches a label by name to an owned task, creating the label
// if the owner has no label with that name yet. created reports whether this
// call was the creating one.
func (s *LabelService) AttachLabel(taskID, ownerID uint64, rawName string) (*models.Label, bool, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil, false, ErrLabelNameRequired
	}
	if len(name) > constants.MaxLabelNameLength {
		return nil, false, ErrLabelNameTooLong
	}

	label, created, err := s.labelRepo.Attach(taskID, ownerID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrTaskNotFound
		}
		return nil, false, fmt.Errorf("failed to attach label: %w", err)
	}
	return label, created, nil
}

// DetachLabel removes a label from a task. Detaching an absent pairing
// reports affected=false, not an error.
func (s *LabelService) DetachLabel(taskID, labelID, ownerID uint64) (bool, error) {
	affected, err := s.labelRepo.Detach(taskID, labelID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to detach label: %w", err)
	}
	return affected, nil
}

// DeleteLabel removes a label and every join row referencing it
func (s *LabelService) DeleteLabel(labelID, ownerID uint64) (bool, error) {
	affected, err := s.labelRepo.Delete(labelID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete label: %w", err)
	}
	return affected, nil
}

// ListLabels returns the owner's labels
func (s *LabelService) ListLabels(ownerID uint64) ([]models.Label, error) {
	labels, err := s.labelRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}
