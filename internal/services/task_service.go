package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/cache"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// TaskService drives the task lifecycle. It is the only writer of task
// status and the only path that credits staff points.
type TaskService struct {
	taskRepo         *repository.TaskRepository
	customerRepo     *repository.CustomerRepository
	leaderboardCache *cache.LeaderboardCache
	publisher        EventPublisher
	logger           *logrus.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(
	taskRepo *repository.TaskRepository,
	customerRepo *repository.CustomerRepository,
	leaderboardCache *cache.LeaderboardCache,
	publisher EventPublisher,
	logger *logrus.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:         taskRepo,
		customerRepo:     customerRepo,
		leaderboardCache: leaderboardCache,
		publisher:        publisher,
		logger:           logger,
	}
}

// GetTask retrieves a single task.
func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

// ListTasks retrieves tasks with filters.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error) {
	return s.taskRepo.List(ctx, filter)
}

// ListToday returns the worklist: open tasks due today or overdue.
func (s *TaskService) ListToday(ctx context.Context) ([]models.Task, error) {
	return s.taskRepo.ListToday(ctx, time.Now())
}

// Assign hands a task to a staff member and moves it IN_PROGRESS.
// Re-assigning an IN_PROGRESS task is legal; terminal tasks are not.
func (s *TaskService) Assign(ctx context.Context, taskID, staffID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.Assign(ctx, taskID, staffID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"task_id":  taskID,
		"staff_id": staffID,
	}).Info("Task assigned")
	return task, nil
}

// Complete closes a task with a terminal outcome. COMPLETED credits the
// acting staff member's points exactly once, atomically with the status
// write; UNREACHABLE frees the open-task slot without points. A second
// completion of the same task returns ErrInvalidTransition.
func (s *TaskService) Complete(ctx context.Context, taskID uuid.UUID, outcome models.TaskStatus, staffID *uuid.UUID, notes string) (*models.Task, error) {
	now := time.Now()
	task, err := s.taskRepo.Complete(ctx, taskID, outcome, staffID, notes, now)
	if err != nil {
		return nil, err
	}

	// Any outcome is a contact attempt; VIP follow-up cadence keys off
	// this timestamp.
	if err := s.customerRepo.TouchLastContact(ctx, task.CustomerID, now); err != nil {
		s.logger.WithError(err).WithField("customer_id", task.CustomerID).
			Warn("Failed to update customer last contact date")
	}

	if outcome == models.TaskStatusCompleted {
		// Points just moved; cached leaderboards are stale.
		s.leaderboardCache.Invalidate(ctx)
		s.publisher.PublishTaskCompleted(task)
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"outcome": outcome,
		"points":  task.PointsValue,
	}).Info("Task closed")
	return task, nil
}
