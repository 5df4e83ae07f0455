package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// TaskGeneratorService runs every rule against every customer and
// persists the resulting candidates. Runs are idempotent: a candidate
// whose (customer, type) slot already holds an open task is skipped.
type TaskGeneratorService struct {
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	taskRepo        *repository.TaskRepository
	taskCfg         config.TaskConfig
	segCfg          config.SegmentationConfig
	logger          *logrus.Logger
}

// NewTaskGeneratorService creates a new task generator.
func NewTaskGeneratorService(
	customerRepo *repository.CustomerRepository,
	transactionRepo *repository.TransactionRepository,
	taskRepo *repository.TaskRepository,
	taskCfg config.TaskConfig,
	segCfg config.SegmentationConfig,
	logger *logrus.Logger,
) *TaskGeneratorService {
	return &TaskGeneratorService{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		taskRepo:        taskRepo,
		taskCfg:         taskCfg,
		segCfg:          segCfg,
		logger:          logger,
	}
}

// GenerateAll evaluates the full rule set for every customer. Returns
// how many tasks were created and how many customers failed; failures
// are isolated per customer and never abort the run.
func (s *TaskGeneratorService) GenerateAll(ctx context.Context) (created, failed int, err error) {
	now := time.Now()

	overdue, err := s.taskRepo.ListOpenOverdue(ctx, models.TaskReplenishment, now)
	if err != nil {
		return 0, 0, err
	}
	overdueByCustomer := make(map[uuid.UUID]*models.Task, len(overdue))
	for i := range overdue {
		overdueByCustomer[overdue[i].CustomerID] = &overdue[i]
	}

	err = s.customerRepo.ForEach(ctx, 500, func(customer *models.Customer) error {
		n, cerr := s.generateForCustomer(ctx, customer, overdueByCustomer[customer.ID], now)
		if cerr != nil {
			failed++
			s.logger.WithError(cerr).WithFields(logrus.Fields{
				"customer_id":   customer.ID,
				"customer_code": customer.CustomerCode,
			}).Error("Task generation failed for customer")
			return nil
		}
		created += n
		return nil
	})
	if err != nil {
		return created, failed, err
	}

	s.logger.WithFields(logrus.Fields{
		"created": created,
		"failed":  failed,
	}).Info("Task generation run finished")
	return created, failed, nil
}

func (s *TaskGeneratorService) generateForCustomer(ctx context.Context, customer *models.Customer, overdueReplenishment *models.Task, now time.Time) (int, error) {
	windowStart := now.AddDate(0, 0, -s.segCfg.SpendingWindowDays)
	transactions, err := s.transactionRepo.ListByCustomerSince(ctx, customer.ID, windowStart)
	if err != nil {
		return 0, err
	}

	lastConsult, err := s.taskRepo.LastCreatedAt(ctx, customer.ID, models.TaskDermoConsult)
	if err != nil {
		return 0, err
	}

	ruleCtx := RuleContext{
		Customer:             customer,
		Now:                  now,
		Config:               s.taskCfg,
		RecentTransactions:   transactions,
		LastDermoConsultAt:   lastConsult,
		OverdueReplenishment: overdueReplenishment,
	}

	rules := Rules()
	created := 0
	for _, taskType := range models.TaskTypes {
		candidate := rules[taskType](ruleCtx)
		if candidate == nil {
			continue
		}

		task := &models.Task{
			TaskType:    candidate.TaskType,
			CustomerID:  candidate.CustomerID,
			ProductID:   candidate.ProductID,
			Title:       candidate.Title,
			Description: candidate.Description,
			Priority:    candidate.Priority,
			PointsValue: candidate.PointsValue,
			DueDate:     candidate.DueDate,
		}
		if err := s.taskRepo.CreateIfNoOpen(ctx, task); err != nil {
			if errors.Is(err, models.ErrDuplicateOpenTask) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
