package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// StaffHandler handles staff and leaderboard HTTP requests
type StaffHandler struct {
	repo        *repository.StaffRepository
	leaderboard *services.LeaderboardService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(repo *repository.StaffRepository, leaderboard *services.LeaderboardService) *StaffHandler {
	return &StaffHandler{repo: repo, leaderboard: leaderboard}
}

// ListStaff handles GET /api/v1/staff
func (h *StaffHandler) ListStaff(c *gin.Context) {
	staff, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": staff,
		"total": len(staff),
	})
}

// GetStaff handles GET /api/v1/staff/:id
func (h *StaffHandler) GetStaff(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staff ID"})
		return
	}

	staff, err := h.repo.GetByID(c.Request.Context(), staffID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

// CreateStaffRequest is the body of POST /api/v1/staff.
type CreateStaffRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role"`
}

// CreateStaff handles POST /api/v1/staff
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff := &models.Staff{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: true,
	}
	if err := h.repo.Create(c.Request.Context(), staff); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, staff)
}

// UpdateStaffRequest is the body of PUT /api/v1/staff/:id.
type UpdateStaffRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateStaff handles PUT /api/v1/staff/:id
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staff ID"})
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.repo.GetByID(c.Request.Context(), staffID)
	if err != nil {
		c.Error(err)
		return
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	if err := h.repo.Update(c.Request.Context(), staff); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

// ResetPoints handles POST /api/v1/staff/leaderboard/reset. Point
// buckets roll over on the caller's calendar; the core only zeroes.
func (h *StaffHandler) ResetPoints(c *gin.Context) {
	period := models.LeaderboardPeriod(c.Query("period"))

	var err error
	switch period {
	case models.PeriodWeekly:
		err = h.repo.ResetWeeklyPoints(c.Request.Context())
	case models.PeriodMonthly:
		err = h.repo.ResetMonthlyPoints(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be weekly or monthly"})
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period, "reset": true})
}

// GetLeaderboard handles GET /api/v1/staff/leaderboard
func (h *StaffHandler) GetLeaderboard(c *gin.Context) {
	period := models.LeaderboardPeriod(c.DefaultQuery("period", string(models.PeriodWeekly)))

	entries, err := h.leaderboard.Rank(c.Request.Context(), period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":      period,
		"leaderboard": entries,
	})
}
