package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// atRiskThreshold is the churn risk from which a customer counts as
// at risk on the dashboard.
const atRiskThreshold = 50

// DashboardStats is the aggregate snapshot behind the dashboard screen.
type DashboardStats struct {
	TotalCustomers      int64 `json:"total_customers"`
	VIPCustomers        int64 `json:"vip_customers"`
	LostCustomers       int64 `json:"lost_customers"`
	AtRiskCustomers     int64 `json:"at_risk_customers"`
	PendingTasks        int64 `json:"pending_tasks"`
	TodayTasks          int64 `json:"today_tasks"`
	CompletedTasksToday int64 `json:"completed_tasks_today"`
	TotalPointsToday    int64 `json:"total_points_today"`
	TotalProducts       int64 `json:"total_products"`
	LowStockProducts    int64 `json:"low_stock_products"`
}

// DashboardService aggregates counters for the main screen.
type DashboardService struct {
	customerRepo *repository.CustomerRepository
	taskRepo     *repository.TaskRepository
	productRepo  *repository.ProductRepository
	logger       *logrus.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	customerRepo *repository.CustomerRepository,
	taskRepo *repository.TaskRepository,
	productRepo *repository.ProductRepository,
	logger *logrus.Logger,
) *DashboardService {
	return &DashboardService{
		customerRepo: customerRepo,
		taskRepo:     taskRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Stats assembles the dashboard snapshot. Counts are read one by one
// without a transaction; the dashboard tolerates slight skew.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	stats := &DashboardStats{}

	var err error
	if stats.TotalCustomers, err = s.customerRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.VIPCustomers, err = s.customerRepo.CountBySegments(ctx, models.SegmentVIP, models.SegmentDermoVIP); err != nil {
		return nil, err
	}
	if stats.LostCustomers, err = s.customerRepo.CountBySegments(ctx, models.SegmentLost); err != nil {
		return nil, err
	}
	if stats.AtRiskCustomers, err = s.customerRepo.CountAtRisk(ctx, atRiskThreshold); err != nil {
		return nil, err
	}
	if stats.PendingTasks, err = s.taskRepo.CountByStatus(ctx, models.TaskStatusPending); err != nil {
		return nil, err
	}
	if stats.TodayTasks, err = s.taskRepo.CountToday(ctx, now); err != nil {
		return nil, err
	}
	if stats.CompletedTasksToday, stats.TotalPointsToday, err = s.taskRepo.CompletedToday(ctx, now); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.productRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = s.productRepo.CountLowStock(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
