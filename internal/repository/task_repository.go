package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// openTaskIndexSQL enforces the one-open-task-per-(customer, type)
// invariant in the store itself, so concurrent generation runs cannot
// create duplicates. Postgres partial indexes are not expressible
// through gorm tags, hence the raw statement.
const openTaskIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_open_customer_type
ON tasks (customer_id, task_type)
WHERE status IN ('PENDING', 'IN_PROGRESS')`

// TaskRepository handles task persistence and the transactional parts
// of the task lifecycle.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// EnsureIndexes creates the partial unique index backing the open-task
// invariant. Call after AutoMigrate.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(openTaskIndexSQL).Error
}

// CreateIfNoOpen inserts a task in PENDING status unless an open task of
// the same type already exists for the customer. The check and insert
// are a single atomic statement backed by the partial unique index;
// a duplicate yields models.ErrDuplicateOpenTask.
func (r *TaskRepository) CreateIfNoOpen(ctx context.Context, task *models.Task) error {
	task.Status = models.TaskStatusPending
	err := r.db.WithContext(ctx).Create(task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("customer %s type %s: %w", task.CustomerID, task.TaskType, models.ErrDuplicateOpenTask)
		}
		return err
	}
	return nil
}

// GetByID retrieves a task with customer, product and assignee loaded.
func (r *TaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Product").
		Preload("AssignedTo").
		Where("id = ?", taskID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %s: %w", taskID, models.ErrNotFound)
		}
		return nil, err
	}
	return &task, nil
}

// TaskFilter represents filter options for listing tasks.
type TaskFilter struct {
	Status       *models.TaskStatus
	Type         *models.TaskType
	AssignedToID *uuid.UUID
	Limit        int
	Offset       int
}

// List retrieves tasks with filters, urgent first then nearest due date.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("task_type = ?", *filter.Type)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Customer").
		Preload("Product").
		Preload("AssignedTo").
		Order(taskPriorityOrder).
		Order("due_date ASC NULLS LAST").
		Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// taskPriorityOrder sorts URGENT before HIGH before MEDIUM before LOW.
const taskPriorityOrder = `CASE priority
WHEN 'URGENT' THEN 0
WHEN 'HIGH' THEN 1
WHEN 'MEDIUM' THEN 2
ELSE 3 END`

// ListToday returns open tasks due today or already overdue.
func (r *TaskRepository) ListToday(ctx context.Context, today time.Time) ([]models.Task, error) {
	day := today.Format("2006-01-02")
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Product").
		Preload("AssignedTo").
		Where("status IN ?", []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Where("due_date <= ? OR due_date IS NULL", day).
		Order(taskPriorityOrder).
		Order("due_date ASC NULLS LAST").
		Find(&tasks).Error
	return tasks, err
}

// ListOpenOverdue returns open tasks of the given type whose due date is
// on or before the cutoff. Feeds the REMINDER_CALL rule.
func (r *TaskRepository) ListOpenOverdue(ctx context.Context, taskType models.TaskType, cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("task_type = ? AND status IN ?", taskType,
			[]models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Where("due_date IS NOT NULL AND due_date <= ?", cutoff.Format("2006-01-02")).
		Find(&tasks).Error
	return tasks, err
}

// LastCreatedAt returns when a task of the given type was last created
// for the customer, in any status. Zero time when never.
func (r *TaskRepository) LastCreatedAt(ctx context.Context, customerID uuid.UUID, taskType models.TaskType) (time.Time, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND task_type = ?", customerID, taskType).
		Order("created_at DESC").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return task.CreatedAt, nil
}

// Assign moves a task to a staff member. PENDING tasks move to
// IN_PROGRESS; terminal tasks are rejected with ErrInvalidTransition.
func (r *TaskRepository) Assign(ctx context.Context, taskID, staffID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).
			First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task %s: %w", taskID, models.ErrNotFound)
			}
			return err
		}
		if task.Status.Terminal() {
			return fmt.Errorf("task %s is %s: %w", taskID, task.Status, models.ErrInvalidTransition)
		}

		var staff models.Staff
		if err := tx.Where("id = ?", staffID).First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("staff %s: %w", staffID, models.ErrNotFound)
			}
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"assigned_to_id": staffID,
				"status":         models.TaskStatusInProgress,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, taskID)
}

// Complete finishes a task with the given terminal outcome. The status
// check, status write and point credit happen in one transaction with
// the task row locked, so concurrent completions race safely: exactly
// one wins, the rest observe ErrInvalidTransition. Points are credited
// with atomic increments, only for COMPLETED, and only once.
func (r *TaskRepository) Complete(ctx context.Context, taskID uuid.UUID, outcome models.TaskStatus, staffID *uuid.UUID, notes string, now time.Time) (*models.Task, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("outcome %s: %w", outcome, models.ErrValidation)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", taskID).
			First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task %s: %w", taskID, models.ErrNotFound)
			}
			return err
		}
		if task.Status.Terminal() {
			return fmt.Errorf("task %s is already %s: %w", taskID, task.Status, models.ErrInvalidTransition)
		}

		// The acting staff member wins over a stale assignment.
		creditTo := task.AssignedToID
		if staffID != nil {
			creditTo = staffID
		}

		updates := map[string]interface{}{
			"status":       outcome,
			"completed_at": now,
			"notes":        notes,
		}
		if creditTo != nil {
			updates["assigned_to_id"] = *creditTo
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return err
		}

		if outcome != models.TaskStatusCompleted || creditTo == nil {
			return nil
		}

		result := tx.Model(&models.Staff{}).
			Where("id = ?", *creditTo).
			Updates(map[string]interface{}{
				"total_points":    gorm.Expr("total_points + ?", task.PointsValue),
				"weekly_points":   gorm.Expr("weekly_points + ?", task.PointsValue),
				"monthly_points":  gorm.Expr("monthly_points + ?", task.PointsValue),
				"tasks_completed": gorm.Expr("tasks_completed + ?", 1),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("staff %s: %w", *creditTo, models.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, taskID)
}

// CountByStatus counts tasks in the given status.
func (r *TaskRepository) CountByStatus(ctx context.Context, status models.TaskStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// CountToday counts open tasks due today or overdue.
func (r *TaskRepository) CountToday(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("status IN ?", []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Where("due_date <= ? OR due_date IS NULL", today.Format("2006-01-02")).
		Count(&n).Error
	return n, err
}

// CompletedToday returns the count of tasks completed today and the
// points they earned.
func (r *TaskRepository) CompletedToday(ctx context.Context, today time.Time) (int64, int64, error) {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			models.TaskStatusCompleted, dayStart, dayEnd).
		Count(&n).Error; err != nil {
		return 0, 0, err
	}

	var points *int64
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			models.TaskStatusCompleted, dayStart, dayEnd).
		Select("SUM(points_value)").
		Scan(&points).Error; err != nil {
		return 0, 0, err
	}
	if points == nil {
		return n, 0, nil
	}
	return n, *points, nil
}
