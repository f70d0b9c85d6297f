package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidetrack-app/sidetrack/internal/dto"
	apierrors "github.com/sidetrack-app/sidetrack/internal/errors"
)

// AddSubtask creates a subtask under one of the caller's tasks.
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddSubtaskRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.taskService.AddSubtask(taskID, userID, req.Title)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubtaskDTO(*subtask))
}

// ToggleSubtask flips a subtask's completion flag.
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	subtaskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	subtask, err := h.taskService.ToggleSubtask(subtaskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubtaskDTO(*subtask))
}

// DeleteSubtask removes a subtask. The parent task is unaffected.
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	subtaskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.taskService.RemoveSubtask(subtaskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
