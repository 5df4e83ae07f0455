package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umtcnbyndr/eczane-crm/internal/services"
	"github.com/umtcnbyndr/eczane-crm/internal/workers"
)

// AdminHandler exposes the batch entry points. Both are stateless and
// re-runnable; the workers call the same services on a schedule.
type AdminHandler struct {
	generator    *services.TaskGeneratorService
	segmentation *services.SegmentationService
	genWorker    *workers.TaskGenerationWorker
	segWorker    *workers.SegmentUpdateWorker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	generator *services.TaskGeneratorService,
	segmentation *services.SegmentationService,
	genWorker *workers.TaskGenerationWorker,
	segWorker *workers.SegmentUpdateWorker,
) *AdminHandler {
	return &AdminHandler{
		generator:    generator,
		segmentation: segmentation,
		genWorker:    genWorker,
		segWorker:    segWorker,
	}
}

// GenerateTasks handles POST /api/v1/generate-tasks
func (h *AdminHandler) GenerateTasks(c *gin.Context) {
	created, failed, err := h.generator.GenerateAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks_created":    created,
		"customers_failed": failed,
	})
}

// UpdateSegments handles POST /api/v1/update-segments
func (h *AdminHandler) UpdateSegments(c *gin.Context) {
	updated, failed, err := h.segmentation.UpdateAllSegments(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers_updated": updated,
		"customers_failed":  failed,
	})
}

// WorkerStatus handles GET /api/v1/workers/status
func (h *AdminHandler) WorkerStatus(c *gin.Context) {
	status := gin.H{}
	if h.genWorker != nil {
		status["task_generation"] = gin.H{
			"running": h.genWorker.IsRunning(),
			"stats":   h.genWorker.Stats(),
		}
	}
	if h.segWorker != nil {
		status["segment_update"] = gin.H{
			"running": h.segWorker.IsRunning(),
			"stats":   h.segWorker.Stats(),
		}
	}

	c.JSON(http.StatusOK, status)
}
