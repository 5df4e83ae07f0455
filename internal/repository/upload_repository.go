package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// UploadRepository handles upload batch persistence.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new upload repository.
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload batch record.
func (r *UploadRepository) Create(ctx context.Context, batch *models.UploadBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// GetByID retrieves an upload batch by ID.
func (r *UploadRepository) GetByID(ctx context.Context, batchID uuid.UUID) (*models.UploadBatch, error) {
	var batch models.UploadBatch
	err := r.db.WithContext(ctx).Where("id = ?", batchID).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("upload batch %s: %w", batchID, models.ErrNotFound)
		}
		return nil, err
	}
	return &batch, nil
}

// Update saves batch progress and outcome.
func (r *UploadRepository) Update(ctx context.Context, batch *models.UploadBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// ListRecent retrieves the most recent upload batches.
func (r *UploadRepository) ListRecent(ctx context.Context, limit int) ([]models.UploadBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	var batches []models.UploadBatch
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&batches).Error
	return batches, err
}
