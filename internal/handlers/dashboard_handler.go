// Package handlers exposes the REST surface over gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	service *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
