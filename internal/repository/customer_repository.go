package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// Cache TTL constants for customer reads.
const (
	customerCacheTTL    = 15 * time.Minute
	customerCachePrefix = "eczane:customers:"
)

// CustomerRepository handles customer ledger data operations.
type CustomerRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewCustomerRepository creates a new customer repository with optional
// Redis caching. A nil client disables caching.
func NewCustomerRepository(db *gorm.DB, redisClient *redis.Client) *CustomerRepository {
	return &CustomerRepository{db: db, redis: redisClient}
}

func customerCacheKey(customerID uuid.UUID) string {
	return customerCachePrefix + customerID.String()
}

func (r *CustomerRepository) invalidateCache(ctx context.Context, customerID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, customerCacheKey(customerID)).Err()
}

// Create inserts a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID retrieves a customer by ID (with caching).
func (r *CustomerRepository) GetByID(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	if r.redis != nil {
		val, err := r.redis.Get(ctx, customerCacheKey(customerID)).Result()
		if err == nil {
			var customer models.Customer
			if err := json.Unmarshal([]byte(val), &customer); err == nil {
				return &customer, nil
			}
		}
	}

	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", customerID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %s: %w", customerID, models.ErrNotFound)
		}
		return nil, err
	}

	if r.redis != nil {
		if data, marshalErr := json.Marshal(customer); marshalErr == nil {
			r.redis.Set(ctx, customerCacheKey(customerID), data, customerCacheTTL)
		}
	}

	return &customer, nil
}

// GetByCode retrieves a customer by customer code. Returns nil without
// error when missing, for create-or-update ingestion flows.
func (r *CustomerRepository) GetByCode(ctx context.Context, code string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("customer_code = ?", code).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// CustomerFilter represents filter options for listing customers.
type CustomerFilter struct {
	Segment      *models.Segment
	MinChurnRisk *int
	Search       string // matches name or phone
	Limit        int
	Offset       int
}

// List retrieves customers with filters and pagination, ordered by total
// points like the loyalty report.
func (r *CustomerRepository) List(ctx context.Context, filter CustomerFilter) ([]models.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})

	if filter.Segment != nil {
		query = query.Where("segment = ?", *filter.Segment)
	}
	if filter.MinChurnRisk != nil {
		query = query.Where("churn_risk >= ?", *filter.MinChurnRisk)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("total_points DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// ListAtRisk returns customers with churn risk at or above the given
// floor, highest risk first.
func (r *CustomerRepository) ListAtRisk(ctx context.Context, minRisk, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	query := r.db.WithContext(ctx).
		Where("churn_risk >= ?", minRisk).
		Order("churn_risk DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&customers).Error
	return customers, err
}

// ListVIP returns VIP-tier customers ordered by total points.
func (r *CustomerRepository) ListVIP(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).
		Where("segment IN ?", []models.Segment{models.SegmentVIP, models.SegmentDermoVIP}).
		Order("total_points DESC").
		Find(&customers).Error
	return customers, err
}

// ForEach streams all customers in stable batches so bulk engines do not
// load the whole ledger at once. The callback error is returned as-is.
func (r *CustomerRepository) ForEach(ctx context.Context, batchSize int, fn func(customer *models.Customer) error) error {
	if batchSize <= 0 {
		batchSize = 200
	}
	var customers []models.Customer
	return r.db.WithContext(ctx).Order("created_at").FindInBatches(&customers, batchSize, func(_ *gorm.DB, _ int) error {
		for i := range customers {
			if err := fn(&customers[i]); err != nil {
				return err
			}
		}
		return nil
	}).Error
}

// Update saves a customer record.
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Save(customer).Error
	if err == nil {
		r.invalidateCache(ctx, customer.ID)
	}
	return err
}

// UpdateSegmentation overwrites the segmentation-owned fields in one
// statement. Purchase facts and identity fields are untouched.
func (r *CustomerRepository) UpdateSegmentation(ctx context.Context, customerID uuid.UUID, segment models.Segment, churnRisk int, totalSpending, dermoSpending float64, lastVisit *time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"segment":         segment,
			"churn_risk":      churnRisk,
			"total_spending":  totalSpending,
			"dermo_spending":  dermoSpending,
			"last_visit_date": lastVisit,
		}).Error
	if err == nil {
		r.invalidateCache(ctx, customerID)
	}
	return err
}

// TouchLastContact records a staff contact moment (task completion).
func (r *CustomerRepository) TouchLastContact(ctx context.Context, customerID uuid.UUID, when time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("last_contact_date", when).Error
	if err == nil {
		r.invalidateCache(ctx, customerID)
	}
	return err
}

// CountAll returns the total customer count.
func (r *CustomerRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error
	return n, err
}

// CountBySegments counts customers in any of the given segments.
func (r *CustomerRepository) CountBySegments(ctx context.Context, segments ...models.Segment) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("segment IN ?", segments).
		Count(&n).Error
	return n, err
}

// CountAtRisk counts customers with churn risk at or above the floor.
func (r *CustomerRepository) CountAtRisk(ctx context.Context, minRisk int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("churn_risk >= ?", minRisk).
		Count(&n).Error
	return n, err
}
