package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	service *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// ListTasks handles GET /api/v1/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := repository.TaskFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + v})
			return
		}
		filter.Status = &status
	}
	if v := c.Query("type"); v != "" {
		taskType := models.TaskType(v)
		if !taskType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task type: " + v})
			return
		}
		filter.Type = &taskType
	}
	if v := c.Query("assigned_to"); v != "" {
		staffID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to ID"})
			return
		}
		filter.AssignedToID = &staffID
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": total,
	})
}

// ListToday handles GET /api/v1/tasks/today
func (h *TaskHandler) ListToday(c *gin.Context) {
	tasks, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetTask handles GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), taskID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CompleteTaskRequest is the body of POST /api/v1/tasks/:id/complete.
type CompleteTaskRequest struct {
	Status  models.TaskStatus `json:"status" binding:"required"`
	StaffID *uuid.UUID        `json:"staff_id"`
	Notes   string            `json:"notes"`
}

// CompleteTask handles POST /api/v1/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be COMPLETED or UNREACHABLE"})
		return
	}

	task, err := h.service.Complete(c.Request.Context(), taskID, req.Status, req.StaffID, req.Notes)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// AssignTaskRequest is the body of POST /api/v1/tasks/:id/assign.
type AssignTaskRequest struct {
	StaffID uuid.UUID `json:"staff_id" binding:"required"`
}

// AssignTask handles POST /api/v1/tasks/:id/assign
func (h *TaskHandler) AssignTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Assign(c.Request.Context(), taskID, req.StaffID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return defaultValue
}
