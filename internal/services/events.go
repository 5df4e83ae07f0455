package services

import (
	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// EventPublisher is the outbound notification surface services publish
// through. Publishes are fire-and-forget; implementations must be safe
// to call when the broker is down.
type EventPublisher interface {
	PublishTaskCompleted(task *models.Task)
	PublishSegmentUpdated(customerID uuid.UUID, oldSegment, newSegment models.Segment)
	PublishUploadProcessed(batch *models.UploadBatch)
}
