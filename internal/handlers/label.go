package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidetrack-app/sidetrack/internal/dto"
	apierrors "github.com/sidetrack-app/sidetrack/internal/errors"
	"github.com/sidetrack-app/sidetrack/internal/services"
)

// LabelHandler coordinates label HTTP handlers.
type LabelHandler struct {
	labelService *services.LabelService
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(labelService *services.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

func respondLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLabelNameRequired),
		errors.Is(err, services.ErrLabelNameTooLong):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrLabelNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// ListLabels returns the caller's labels as a bare array.
func (h *LabelHandler) ListLabels(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	labels, err := h.labelService.ListLabels(userID)
	if err != nil {
		respondLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLabelDTOs(labels))
}

// AttachLabel attaches a label by name to a task. Responds 201 when this
// call created the label row and 200 when the name already existed; the
// label entity is returned directly either way.
func (h *LabelHandler) AttachLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AttachLabelRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req AttachLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	label, created, err := h.labelService.AttachLabel(taskID, userID, req.Name)
	if err != nil {
		respondLabelError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToLabelDTO(*label))
}

// DetachLabel removes a label from a task. Idempotent: repeating returns
// 204 again.
func (h *LabelHandler) DetachLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	labelID, ok := parseIDParam(c, "labelId")
	if !ok {
		return
	}

	if _, err := h.labelService.DetachLabel(taskID, labelID, userID); err != nil {
		respondLabelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteLabel removes a label everywhere it is attached.
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	labelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.labelService.DeleteLabel(labelID, userID); err != nil {
		respondLabelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
