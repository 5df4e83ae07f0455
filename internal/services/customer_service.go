package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// atRiskMinChurn is the churn risk floor for the at-risk listing.
const atRiskMinChurn = 50

// CustomerDetail is a customer with their recent purchase history.
type CustomerDetail struct {
	Customer     *models.Customer          `json:"customer"`
	Transactions []models.SalesTransaction `json:"transactions"`
}

// CustomerService serves customer reads. Customer writes flow through
// ingestion and the segmentation engine, not this service.
type CustomerService struct {
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	cfg             config.SegmentationConfig
}

// NewCustomerService creates a new customer service.
func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	transactionRepo *repository.TransactionRepository,
	cfg config.SegmentationConfig,
) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		cfg:             cfg,
	}
}

// ListCustomers retrieves customers with filters.
func (s *CustomerService) ListCustomers(ctx context.Context, filter repository.CustomerFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(ctx, filter)
}

// GetCustomerDetail retrieves a customer and their purchases inside the
// spending window.
func (s *CustomerService) GetCustomerDetail(ctx context.Context, customerID uuid.UUID) (*CustomerDetail, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	windowStart := time.Now().AddDate(0, 0, -s.cfg.SpendingWindowDays)
	transactions, err := s.transactionRepo.ListByCustomerSince(ctx, customerID, windowStart)
	if err != nil {
		return nil, err
	}

	return &CustomerDetail{
		Customer:     customer,
		Transactions: transactions,
	}, nil
}

// ListAtRisk retrieves at-risk customers, highest churn first.
func (s *CustomerService) ListAtRisk(ctx context.Context, limit int) ([]models.Customer, error) {
	return s.customerRepo.ListAtRisk(ctx, atRiskMinChurn, limit)
}

// ListVIP retrieves customers in the VIP tiers.
func (s *CustomerService) ListVIP(ctx context.Context) ([]models.Customer, error) {
	return s.customerRepo.ListVIP(ctx)
}
