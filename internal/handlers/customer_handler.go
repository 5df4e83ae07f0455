package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	service *services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	filter := repository.CustomerFilter{
		Search: c.Query("search"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}

	if v := c.Query("segment"); v != "" {
		segment := models.Segment(v)
		if !segment.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid segment: " + v})
			return
		}
		filter.Segment = &segment
	}
	if v := parseIntQuery(c, "min_churn_risk", 0); v > 0 {
		filter.MinChurnRisk = &v
	}

	customers, total, err := h.service.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     total,
	})
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return
	}

	detail, err := h.service.GetCustomerDetail(c.Request.Context(), customerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListAtRisk handles GET /api/v1/customers/at_risk
func (h *CustomerHandler) ListAtRisk(c *gin.Context) {
	customers, err := h.service.ListAtRisk(c.Request.Context(), parseIntQuery(c, "limit", 50))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     len(customers),
	})
}

// ListVIP handles GET /api/v1/customers/vip
func (h *CustomerHandler) ListVIP(c *gin.Context) {
	customers, err := h.service.ListVIP(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     len(customers),
	})
}
