package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/cache"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// LeaderboardService ranks staff by earned points. Read-only; point
// totals are written by the task lifecycle.
type LeaderboardService struct {
	staffRepo *repository.StaffRepository
	cache     *cache.LeaderboardCache
	logger    *logrus.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(staffRepo *repository.StaffRepository, lbCache *cache.LeaderboardCache, logger *logrus.Logger) *LeaderboardService {
	return &LeaderboardService{
		staffRepo: staffRepo,
		cache:     lbCache,
		logger:    logger,
	}
}

// Rank returns the leaderboard for the period with 1-based contiguous
// ranks. Ties on points break by tasks completed, then seniority, so
// two staff never share a rank.
func (s *LeaderboardService) Rank(ctx context.Context, period models.LeaderboardPeriod) ([]models.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("period %q: %w", period, models.ErrValidation)
	}

	if entries, ok := s.cache.Get(ctx, period); ok {
		return entries, nil
	}

	staff, err := s.staffRepo.ListRanked(ctx, period)
	if err != nil {
		return nil, err
	}

	entries := RankStaff(staff, period)
	s.cache.Set(ctx, period, entries)
	return entries, nil
}

// RankStaff orders staff into leaderboard entries. Pure; the input
// order does not matter.
func RankStaff(staff []models.Staff, period models.LeaderboardPeriod) []models.LeaderboardEntry {
	ranked := make([]models.Staff, len(staff))
	copy(ranked, staff)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if p1, p2 := a.PointsFor(period), b.PointsFor(period); p1 != p2 {
			return p1 > p2
		}
		if a.TasksCompleted != b.TasksCompleted {
			return a.TasksCompleted > b.TasksCompleted
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	entries := make([]models.LeaderboardEntry, len(ranked))
	for i := range ranked {
		entries[i] = models.LeaderboardEntry{
			StaffID:        ranked[i].ID,
			Name:           ranked[i].Name,
			Points:         ranked[i].PointsFor(period),
			TasksCompleted: ranked[i].TasksCompleted,
			Rank:           i + 1,
		}
	}
	return entries
}
