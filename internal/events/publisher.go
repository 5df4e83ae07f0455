package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

const (
	SubjectTaskCompleted   = "crm.task.completed"
	SubjectSegmentUpdated  = "crm.segment.updated"
	SubjectUploadProcessed = "crm.upload.processed"
)

// Publisher emits domain events to NATS. Publishes are fire-and-forget
// and the publisher is safe to use with a nil connection, so the core
// keeps working when the broker is absent.
type Publisher struct {
	nc     *nats.Conn
	logger *logrus.Logger
}

// NewPublisher creates a new event publisher. A nil connection turns
// every publish into a no-op.
func NewPublisher(nc *nats.Conn, logger *logrus.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to marshal event")
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// TaskCompletedEvent is emitted when a task reaches COMPLETED.
type TaskCompletedEvent struct {
	TaskID     uuid.UUID       `json:"task_id"`
	TaskType   models.TaskType `json:"task_type"`
	CustomerID uuid.UUID       `json:"customer_id"`
	StaffID    *uuid.UUID      `json:"staff_id,omitempty"`
	Points     int             `json:"points"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PublishTaskCompleted emits a task completion event.
func (p *Publisher) PublishTaskCompleted(task *models.Task) {
	p.publish(SubjectTaskCompleted, TaskCompletedEvent{
		TaskID:     task.ID,
		TaskType:   task.TaskType,
		CustomerID: task.CustomerID,
		StaffID:    task.AssignedToID,
		Points:     task.PointsValue,
		OccurredAt: time.Now(),
	})
}

// SegmentUpdatedEvent is emitted when a customer changes segment.
type SegmentUpdatedEvent struct {
	CustomerID uuid.UUID      `json:"customer_id"`
	OldSegment models.Segment `json:"old_segment"`
	NewSegment models.Segment `json:"new_segment"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// PublishSegmentUpdated emits a segment change event.
func (p *Publisher) PublishSegmentUpdated(customerID uuid.UUID, oldSegment, newSegment models.Segment) {
	p.publish(SubjectSegmentUpdated, SegmentUpdatedEvent{
		CustomerID: customerID,
		OldSegment: oldSegment,
		NewSegment: newSegment,
		OccurredAt: time.Now(),
	})
}

// UploadProcessedEvent is emitted when an upload batch finishes.
type UploadProcessedEvent struct {
	BatchID       uuid.UUID             `json:"batch_id"`
	FileType      models.UploadFileType `json:"file_type"`
	Status        models.UploadStatus   `json:"status"`
	RowsProcessed int                   `json:"rows_processed"`
	RowsFailed    int                   `json:"rows_failed"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// PublishUploadProcessed emits an upload completion event.
func (p *Publisher) PublishUploadProcessed(batch *models.UploadBatch) {
	p.publish(SubjectUploadProcessed, UploadProcessedEvent{
		BatchID:       batch.ID,
		FileType:      batch.FileType,
		Status:        batch.Status,
		RowsProcessed: batch.RowsProcessed,
		RowsFailed:    batch.RowsFailed,
		OccurredAt:    time.Now(),
	})
}
