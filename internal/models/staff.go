package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a pharmacy staff member competing on the leaderboard. Point
// totals are partitioned by rolling bucket and are only mutated by the
// task lifecycle engine, through atomic increments.
type Staff struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name     string    `json:"name" gorm:"type:varchar(100);not null"`
	Role     string    `json:"role" gorm:"type:varchar(50)"`
	IsActive bool      `json:"is_active" gorm:"default:true"`

	TotalPoints    int `json:"total_points" gorm:"default:0"`
	WeeklyPoints   int `json:"weekly_points" gorm:"default:0"`
	MonthlyPoints  int `json:"monthly_points" gorm:"default:0"`
	TasksCompleted int `json:"tasks_completed" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardPeriod selects which point bucket ranks the leaderboard.
type LeaderboardPeriod string

const (
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodTotal   LeaderboardPeriod = "total"
)

// Valid reports whether p is a known leaderboard period.
func (p LeaderboardPeriod) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodTotal:
		return true
	}
	return false
}

// PointsFor returns the staff member's points for the given period.
func (s *Staff) PointsFor(period LeaderboardPeriod) int {
	switch period {
	case PeriodWeekly:
		return s.WeeklyPoints
	case PeriodMonthly:
		return s.MonthlyPoints
	default:
		return s.TotalPoints
	}
}

// LeaderboardEntry is one ranked row of the staff leaderboard.
// Ranks are 1-based and contiguous; ties never share a rank.
type LeaderboardEntry struct {
	StaffID        uuid.UUID `json:"staff_id"`
	Name           string    `json:"name"`
	Points         int       `json:"points"`
	TasksCompleted int       `json:"tasks_completed"`
	Rank           int       `json:"rank"`
}
