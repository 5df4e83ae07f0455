package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// TransactionRepository handles append-only sales transaction facts.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a sales transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.SalesTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByCustomerSince returns a customer's transactions on or after the
// given date, newest first, with products preloaded.
func (r *TransactionRepository) ListByCustomerSince(ctx context.Context, customerID uuid.UUID, since time.Time) ([]models.SalesTransaction, error) {
	var txs []models.SalesTransaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ? AND sale_date >= ?", customerID, since).
		Order("sale_date DESC").
		Find(&txs).Error
	return txs, err
}

// SaleDates returns a customer's distinct sale dates, newest first,
// capped at limit. The segmentation engine derives the expected purchase
// interval from these.
func (r *TransactionRepository) SaleDates(ctx context.Context, customerID uuid.UUID, limit int) ([]time.Time, error) {
	var dates []time.Time
	query := r.db.WithContext(ctx).
		Model(&models.SalesTransaction{}).
		Where("customer_id = ?", customerID).
		Distinct("sale_date").
		Order("sale_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Pluck("sale_date", &dates).Error
	return dates, err
}
