package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// ProductHandler handles product and brand HTTP requests
type ProductHandler struct {
	repo *repository.ProductRepository
}

// NewProductHandler creates a new product handler
func NewProductHandler(repo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
		Limit:    parseIntQuery(c, "limit", 50),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	if v := c.Query("category"); v != "" {
		category := models.ProductCategory(v)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category: " + v})
			return
		}
		filter.Category = &category
	}

	products, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	product, err := h.repo.GetByID(c.Request.Context(), productID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListBrands handles GET /api/v1/brands
func (h *ProductHandler) ListBrands(c *gin.Context) {
	summaries, err := h.repo.BrandSummaries(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	if v := c.Query("category"); v != "" {
		category := models.ProductCategory(v)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category: " + v})
			return
		}
		filtered := summaries[:0]
		for _, s := range summaries {
			if s.Category == category {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"brands": summaries,
		"total":  len(summaries),
	})
}
