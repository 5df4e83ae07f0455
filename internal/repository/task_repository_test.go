package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

func testGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

var taskColumns = []string{"id", "task_type", "customer_id", "assigned_to_id", "status", "priority", "points_value"}

func TestCompleteRejectsNonTerminalOutcome(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	for _, outcome := range []models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress} {
		_, err := repo.Complete(context.Background(), uuid.New(), outcome, nil, "", time.Now())
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRejectsTerminalTask(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	taskID := uuid.New()
	customerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "CHURN_PREVENTION", customerID.String(), nil, "COMPLETED", "HIGH", 15))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), taskID, models.TaskStatusCompleted, nil, "", time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteCreditsPointsOnce(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	taskID := uuid.New()
	customerID := uuid.New()
	staffID := uuid.New()

	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "VIP_FOLLOWUP", customerID.String(), staffID.String(), "IN_PROGRESS", "MEDIUM", 15))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	// The single credit statement: all point columns move together with
	// atomic increments.
	mock.ExpectExec(`UPDATE "staff(.+)monthly_points \+ (.+)tasks_completed \+ (.+)total_points \+ (.+)weekly_points \+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id =`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "VIP_FOLLOWUP", customerID.String(), staffID.String(), "COMPLETED", "MEDIUM", 15))
	mock.ExpectQuery(`SELECT (.+) FROM "staff`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(staffID.String()))
	mock.ExpectQuery(`SELECT (.+) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(customerID.String()))

	task, err := repo.Complete(context.Background(), taskID, models.TaskStatusCompleted, &staffID, "done", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteUnreachableSkipsCredit(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	taskID := uuid.New()
	customerID := uuid.New()
	staffID := uuid.New()

	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "REMINDER_CALL", customerID.String(), staffID.String(), "PENDING", "HIGH", 10))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE id =`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "REMINDER_CALL", customerID.String(), staffID.String(), "UNREACHABLE", "HIGH", 10))
	mock.ExpectQuery(`SELECT (.+) FROM "staff`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(staffID.String()))
	mock.ExpectQuery(`SELECT (.+) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(customerID.String()))

	task, err := repo.Complete(context.Background(), taskID, models.TaskStatusUnreachable, nil, "no answer", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusUnreachable, task.Status)

	// An unmatched UPDATE against the staff table would have failed the
	// exec above; the slot is freed without moving any points.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteCreditFailureRollsBack(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	taskID := uuid.New()
	customerID := uuid.New()
	staffID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tasks" (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(taskID.String(), "CHURN_PREVENTION", customerID.String(), staffID.String(), "PENDING", "URGENT", 20))
	mock.ExpectExec(`UPDATE "tasks" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "staff`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Complete(context.Background(), taskID, models.TaskStatusCompleted, &staffID, "", time.Now())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOpenDuplicate(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	task := &models.Task{
		TaskType:    models.TaskReplenishment,
		CustomerID:  uuid.New(),
		Title:       "Replenishment call",
		Priority:    models.PriorityMedium,
		PointsValue: 10,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_tasks_open_customer_type"})
	mock.ExpectRollback()

	err := repo.CreateIfNoOpen(context.Background(), task)
	assert.ErrorIs(t, err, models.ErrDuplicateOpenTask)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOpenStartsPending(t *testing.T) {
	gdb, mock := testGormDB(t)
	repo := NewTaskRepository(gdb)

	taskID := uuid.New()
	task := &models.Task{
		TaskType:    models.TaskBirthday,
		CustomerID:  uuid.New(),
		Title:       "Birthday call",
		Status:      models.TaskStatusInProgress, // callers cannot smuggle in a status
		Priority:    models.PriorityMedium,
		PointsValue: 25,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(taskID.String()))
	mock.ExpectCommit()

	err := repo.CreateIfNoOpen(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
