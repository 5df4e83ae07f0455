package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// maxIntervalSamples caps how far back interval derivation looks.
const maxIntervalSamples = 12

// PurchaseFacts is the read-only purchase evidence segmentation scores a
// customer from. Spending figures cover the trailing spending window;
// SaleDates are the customer's distinct sale dates, newest first.
type PurchaseFacts struct {
	TotalSpending float64
	DermoSpending float64
	FirstPurchase *time.Time
	LastPurchase  *time.Time
	SaleDates     []time.Time
}

// SegmentationResult is the outcome of scoring one customer.
type SegmentationResult struct {
	Segment       models.Segment
	ChurnRisk     int
	TotalSpending float64
	DermoSpending float64
	LastVisit     *time.Time
}

// SegmentationService recomputes customer segments and churn risk from
// purchase facts. It owns the segment and churn_risk columns; nothing
// else writes them.
type SegmentationService struct {
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	publisher       EventPublisher
	cfg             config.SegmentationConfig
	logger          *logrus.Logger
}

// NewSegmentationService creates a new segmentation service.
func NewSegmentationService(
	customerRepo *repository.CustomerRepository,
	transactionRepo *repository.TransactionRepository,
	publisher EventPublisher,
	cfg config.SegmentationConfig,
	logger *logrus.Logger,
) *SegmentationService {
	return &SegmentationService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		publisher:       publisher,
		cfg:             cfg,
		logger:          logger,
	}
}

// ExpectedInterval derives the customer's expected purchase interval in
// days from the gaps between their distinct sale dates. Falls back to
// the configured default when fewer than two dates are known.
func ExpectedInterval(saleDates []time.Time, defaultDays int) int {
	if len(saleDates) < 2 {
		return defaultDays
	}

	dates := make([]time.Time, len(saleDates))
	copy(dates, saleDates)
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if len(dates) > maxIntervalSamples {
		dates = dates[:maxIntervalSamples]
	}

	var totalDays, gaps int
	for i := 0; i < len(dates)-1; i++ {
		gap := int(dates[i].Sub(dates[i+1]).Hours() / 24)
		if gap > 0 {
			totalDays += gap
			gaps++
		}
	}
	if gaps == 0 {
		return defaultDays
	}
	return totalDays / gaps
}

// ChurnScore computes churn risk on a 0-100 scale. Risk is 0 while the
// customer is within their expected interval and reaches 100 once three
// intervals have elapsed without a purchase, scaling linearly between.
func ChurnScore(lastPurchase *time.Time, expectedIntervalDays int, now time.Time) int {
	if lastPurchase == nil {
		return 0
	}
	if expectedIntervalDays <= 0 {
		expectedIntervalDays = 1
	}

	elapsed := now.Sub(*lastPurchase).Hours() / 24
	interval := float64(expectedIntervalDays)
	if elapsed <= interval {
		return 0
	}

	risk := (elapsed - interval) / (2 * interval) * 100
	if risk > 100 {
		return 100
	}
	return int(risk)
}

// Recompute scores one customer from purchase facts. Pure; never fails.
// A customer with no purchase history scores churn 0 and segment NEW.
func (s *SegmentationService) Recompute(facts PurchaseFacts, now time.Time) SegmentationResult {
	return Recompute(facts, s.cfg, now)
}

// Recompute applies the segmentation rules: churn risk first, then the
// segment checks in priority order with first match winning. LOST is
// checked before the VIP tiers so a lapsed big spender is surfaced as
// lost rather than hidden behind their old tier.
func Recompute(facts PurchaseFacts, cfg config.SegmentationConfig, now time.Time) SegmentationResult {
	result := SegmentationResult{
		TotalSpending: facts.TotalSpending,
		DermoSpending: facts.DermoSpending,
		LastVisit:     facts.LastPurchase,
	}

	if facts.LastPurchase == nil {
		result.Segment = models.SegmentNew
		return result
	}

	interval := ExpectedInterval(facts.SaleDates, cfg.DefaultIntervalDays)
	result.ChurnRisk = ChurnScore(facts.LastPurchase, interval, now)

	daysSinceLast := int(now.Sub(*facts.LastPurchase).Hours() / 24)

	switch {
	case result.ChurnRisk >= 75 && daysSinceLast > cfg.LostAfterDays:
		result.Segment = models.SegmentLost
	case facts.TotalSpending >= cfg.VIPSpendingThreshold:
		result.Segment = models.SegmentVIP
	case facts.DermoSpending >= cfg.DermoVIPSpendingThreshold:
		result.Segment = models.SegmentDermoVIP
	case facts.FirstPurchase != nil && int(now.Sub(*facts.FirstPurchase).Hours()/24) <= cfg.NewCustomerDays:
		result.Segment = models.SegmentNew
	default:
		result.Segment = models.SegmentStandard
	}
	return result
}

// factsFor assembles purchase facts for one customer from the
// transaction store.
func (s *SegmentationService) factsFor(ctx context.Context, customer *models.Customer, now time.Time) (PurchaseFacts, error) {
	windowStart := now.AddDate(0, 0, -s.cfg.SpendingWindowDays)
	transactions, err := s.transactionRepo.ListByCustomerSince(ctx, customer.ID, windowStart)
	if err != nil {
		return PurchaseFacts{}, err
	}

	saleDates, err := s.transactionRepo.SaleDates(ctx, customer.ID, maxIntervalSamples)
	if err != nil {
		return PurchaseFacts{}, err
	}

	facts := PurchaseFacts{
		FirstPurchase: customer.FirstPurchaseDate,
		SaleDates:     saleDates,
	}
	for i := range transactions {
		tx := &transactions[i]
		facts.TotalSpending += tx.TotalAmount
		if tx.Product != nil && tx.Product.Category == models.CategoryDermo {
			facts.DermoSpending += tx.TotalAmount
		}
	}
	if len(saleDates) > 0 {
		last := saleDates[0]
		facts.LastPurchase = &last
	}
	return facts, nil
}

// UpdateCustomer rescores a single customer and persists the result.
func (s *SegmentationService) UpdateCustomer(ctx context.Context, customer *models.Customer, now time.Time) (SegmentationResult, error) {
	facts, err := s.factsFor(ctx, customer, now)
	if err != nil {
		return SegmentationResult{}, err
	}

	result := s.Recompute(facts, now)
	if err := s.customerRepo.UpdateSegmentation(ctx, customer.ID,
		result.Segment, result.ChurnRisk,
		result.TotalSpending, result.DermoSpending, result.LastVisit); err != nil {
		return SegmentationResult{}, err
	}

	if result.Segment != customer.Segment {
		s.publisher.PublishSegmentUpdated(customer.ID, customer.Segment, result.Segment)
	}
	return result, nil
}

// UpdateAllSegments rescores every customer. Per-customer failures are
// counted and logged without aborting the run.
func (s *SegmentationService) UpdateAllSegments(ctx context.Context) (updated, failed int, err error) {
	now := time.Now()

	err = s.customerRepo.ForEach(ctx, 500, func(customer *models.Customer) error {
		if _, serr := s.UpdateCustomer(ctx, customer, now); serr != nil {
			failed++
			s.logger.WithError(serr).WithFields(logrus.Fields{
				"customer_id":   customer.ID,
				"customer_code": customer.CustomerCode,
			}).Error("Failed to update customer segment")
			return nil
		}
		updated++
		return nil
	})
	if err != nil {
		return updated, failed, err
	}

	s.logger.WithFields(logrus.Fields{
		"updated": updated,
		"failed":  failed,
	}).Info("Segment update run finished")
	return updated, failed, nil
}
