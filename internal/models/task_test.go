package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusLifecycle(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		valid    bool
		terminal bool
		open     bool
	}{
		{TaskStatusPending, true, false, true},
		{TaskStatusInProgress, true, false, true},
		{TaskStatusCompleted, true, true, false},
		{TaskStatusUnreachable, true, true, false},
		{TaskStatus("CANCELLED"), false, false, false},
		{TaskStatus(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.Terminal())
			assert.Equal(t, tt.open, tt.status.Open())
		})
	}
}

func TestTaskTypeValid(t *testing.T) {
	for _, taskType := range TaskTypes {
		assert.True(t, taskType.Valid())
	}
	assert.False(t, TaskType("COFFEE_BREAK").Valid())
}

func TestReplenishmentDue(t *testing.T) {
	saleDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("predicts from usage duration minus lead", func(t *testing.T) {
		tx := SalesTransaction{
			SaleDate: saleDate,
			Product:  &Product{UsageDuration: 30},
		}
		due, ok := tx.ReplenishmentDue(5)
		assert.True(t, ok)
		assert.Equal(t, saleDate.AddDate(0, 0, 25), due)
	})

	t.Run("no product means no prediction", func(t *testing.T) {
		tx := SalesTransaction{SaleDate: saleDate}
		_, ok := tx.ReplenishmentDue(5)
		assert.False(t, ok)
	})

	t.Run("zero usage duration means no prediction", func(t *testing.T) {
		tx := SalesTransaction{SaleDate: saleDate, Product: &Product{}}
		_, ok := tx.ReplenishmentDue(5)
		assert.False(t, ok)
	})
}

func TestCustomerHelpers(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("full name trims missing last name", func(t *testing.T) {
		assert.Equal(t, "Ayşe Yılmaz", (&Customer{FirstName: "Ayşe", LastName: "Yılmaz"}).FullName())
		assert.Equal(t, "Ayşe", (&Customer{FirstName: "Ayşe"}).FullName())
	})

	t.Run("days since last visit", func(t *testing.T) {
		visit := now.AddDate(0, 0, -12)
		c := &Customer{LastVisitDate: &visit}
		assert.Equal(t, 12, c.DaysSinceLastVisit(now))
	})

	t.Run("no history reports -1", func(t *testing.T) {
		assert.Equal(t, -1, (&Customer{}).DaysSinceLastVisit(now))
	})
}

func TestSegmentHelpers(t *testing.T) {
	assert.True(t, SegmentVIP.IsVIP())
	assert.True(t, SegmentDermoVIP.IsVIP())
	assert.False(t, SegmentStandard.IsVIP())
	assert.False(t, SegmentLost.IsVIP())

	assert.True(t, SegmentNew.Valid())
	assert.False(t, Segment("PLATINUM").Valid())
}
