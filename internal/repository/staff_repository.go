package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// StaffRepository handles staff persistence.
type StaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository.
func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a new staff member.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

// GetByID retrieves a staff member by ID.
func (r *StaffRepository) GetByID(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).Where("id = ?", staffID).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("staff %s: %w", staffID, models.ErrNotFound)
		}
		return nil, err
	}
	return &staff, nil
}

// List retrieves all active staff members ordered by name.
func (r *StaffRepository) List(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&staff).Error
	return staff, err
}

// ListRanked retrieves active staff ordered for the leaderboard: points
// for the period descending, then tasks completed descending, then
// seniority. The id column breaks any remaining tie so the order is
// total.
func (r *StaffRepository) ListRanked(ctx context.Context, period models.LeaderboardPeriod) ([]models.Staff, error) {
	column, ok := pointsColumns[period]
	if !ok {
		return nil, fmt.Errorf("period %s: %w", period, models.ErrValidation)
	}

	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order(column + " DESC").
		Order("tasks_completed DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&staff).Error
	return staff, err
}

var pointsColumns = map[models.LeaderboardPeriod]string{
	models.PeriodWeekly:  "weekly_points",
	models.PeriodMonthly: "monthly_points",
	models.PeriodTotal:   "total_points",
}

// Update saves staff member changes.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

// ResetWeeklyPoints zeroes the weekly counter for all staff.
func (r *StaffRepository) ResetWeeklyPoints(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("weekly_points <> 0").
		Update("weekly_points", 0).Error
}

// ResetMonthlyPoints zeroes the monthly counter for all staff.
func (r *StaffRepository) ResetMonthlyPoints(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("monthly_points <> 0").
		Update("monthly_points", 0).Error
}
