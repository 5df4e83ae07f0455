package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskType identifies which rule produced a task.
type TaskType string

const (
	TaskReplenishment   TaskType = "REPLENISHMENT"
	TaskChurnPrevention TaskType = "CHURN_PREVENTION"
	TaskVIPFollowup     TaskType = "VIP_FOLLOWUP"
	TaskDermoConsult    TaskType = "DERMO_CONSULT"
	TaskReminderCall    TaskType = "REMINDER_CALL"
	TaskBirthday        TaskType = "BIRTHDAY"
	TaskSpecialDay      TaskType = "SPECIAL_DAY"
)

// TaskTypes lists every task type, in rule evaluation order.
var TaskTypes = []TaskType{
	TaskReplenishment,
	TaskChurnPrevention,
	TaskVIPFollowup,
	TaskDermoConsult,
	TaskReminderCall,
	TaskBirthday,
	TaskSpecialDay,
}

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TaskStatus is the lifecycle state of a task.
// PENDING → IN_PROGRESS → {COMPLETED, UNREACHABLE}; terminal states are
// immutable.
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "PENDING"
	TaskStatusInProgress  TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted   TaskStatus = "COMPLETED"
	TaskStatusUnreachable TaskStatus = "UNREACHABLE"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusUnreachable:
		return true
	}
	return false
}

// Terminal reports whether the status ends the task lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusUnreachable
}

// Open reports whether the status counts against the one-open-task
// invariant per (customer, task_type).
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// TaskPriority orders tasks for the staff worklist.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a gamified outreach item generated for a customer. Created by
// the generation engine, mutated only by the lifecycle engine. At most
// one open task exists per (customer, task_type); the partial unique
// index in the task repository enforces that in the store.
type Task struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskType   TaskType   `json:"task_type" gorm:"type:varchar(20);not null;index"`
	CustomerID uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer   *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ProductID  *uuid.UUID `json:"product_id" gorm:"type:uuid"`
	Product    *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	Title       string       `json:"title" gorm:"type:varchar(200);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);default:'MEDIUM'"`
	PointsValue int          `json:"points_value" gorm:"default:10"`

	AssignedToID *uuid.UUID `json:"assigned_to_id" gorm:"type:uuid;index"`
	AssignedTo   *Staff     `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`

	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
