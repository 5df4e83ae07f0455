package services

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

func staffMember(name string, weekly, monthly, total, completed int, createdAt time.Time) models.Staff {
	return models.Staff{
		ID:             uuid.New(),
		Name:           name,
		IsActive:       true,
		WeeklyPoints:   weekly,
		MonthlyPoints:  monthly,
		TotalPoints:    total,
		TasksCompleted: completed,
		CreatedAt:      createdAt,
	}
}

func TestRankStaff(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("orders by period points descending", func(t *testing.T) {
		staff := []models.Staff{
			staffMember("Mehmet", 10, 40, 300, 5, base),
			staffMember("Zeynep", 45, 90, 200, 3, base),
			staffMember("Elif", 20, 100, 500, 8, base),
		}

		entries := RankStaff(staff, models.PeriodWeekly)
		require.Len(t, entries, 3)
		assert.Equal(t, "Zeynep", entries[0].Name)
		assert.Equal(t, 45, entries[0].Points)
		assert.Equal(t, "Elif", entries[1].Name)
		assert.Equal(t, "Mehmet", entries[2].Name)
	})

	t.Run("same staff rank differently per period", func(t *testing.T) {
		staff := []models.Staff{
			staffMember("Mehmet", 10, 40, 300, 5, base),
			staffMember("Elif", 20, 100, 500, 8, base),
		}

		weekly := RankStaff(staff, models.PeriodWeekly)
		monthly := RankStaff(staff, models.PeriodMonthly)
		total := RankStaff(staff, models.PeriodTotal)

		assert.Equal(t, "Elif", weekly[0].Name)
		assert.Equal(t, "Elif", monthly[0].Name)
		assert.Equal(t, "Elif", total[0].Name)
		assert.Equal(t, 20, weekly[0].Points)
		assert.Equal(t, 100, monthly[0].Points)
		assert.Equal(t, 500, total[0].Points)
	})

	t.Run("point ties break by tasks completed then seniority", func(t *testing.T) {
		older := base
		newer := base.AddDate(0, 1, 0)
		staff := []models.Staff{
			staffMember("Ali", 50, 0, 0, 2, newer),
			staffMember("Veli", 50, 0, 0, 4, newer),
			staffMember("Canan", 50, 0, 0, 4, older),
		}

		entries := RankStaff(staff, models.PeriodWeekly)
		assert.Equal(t, "Canan", entries[0].Name)
		assert.Equal(t, "Veli", entries[1].Name)
		assert.Equal(t, "Ali", entries[2].Name)
	})

	t.Run("ranks are contiguous and never shared", func(t *testing.T) {
		gofakeit.Seed(42)
		staff := make([]models.Staff, 20)
		for i := range staff {
			staff[i] = staffMember(gofakeit.Name(),
				gofakeit.Number(0, 50), gofakeit.Number(0, 200), gofakeit.Number(0, 1000),
				gofakeit.Number(0, 30), base.AddDate(0, 0, gofakeit.Number(0, 365)))
		}

		entries := RankStaff(staff, models.PeriodTotal)
		require.Len(t, entries, 20)
		for i, entry := range entries {
			assert.Equal(t, i+1, entry.Rank)
			if i > 0 {
				assert.GreaterOrEqual(t, entries[i-1].Points, entry.Points)
			}
		}
	})

	t.Run("empty staff yields empty leaderboard", func(t *testing.T) {
		entries := RankStaff(nil, models.PeriodWeekly)
		assert.Empty(t, entries)
	})

	t.Run("a week of completed tasks sums on the weekly board", func(t *testing.T) {
		member := staffMember("Fatma", 0, 0, 0, 0, base)
		for _, points := range []int{10, 20, 15} {
			member.WeeklyPoints += points
			member.MonthlyPoints += points
			member.TotalPoints += points
			member.TasksCompleted++
		}

		entries := RankStaff([]models.Staff{member}, models.PeriodWeekly)
		require.Len(t, entries, 1)
		assert.Equal(t, 45, entries[0].Points)
		assert.Equal(t, 3, entries[0].TasksCompleted)
		assert.Equal(t, 1, entries[0].Rank)
	})
}
