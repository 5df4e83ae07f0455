package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

const (
	leaderboardKeyPrefix = "eczane:leaderboard:"
	leaderboardTTL       = 60 * time.Second
)

// LeaderboardCache keeps ranked leaderboards in redis for a short TTL.
// All methods degrade to a miss when redis is unavailable; the caller
// falls through to the database.
type LeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache. A nil client
// disables caching.
func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// Get returns the cached leaderboard for the period, or (nil, false).
func (c *LeaderboardCache) Get(ctx context.Context, period models.LeaderboardPeriod) ([]models.LeaderboardEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, leaderboardKeyPrefix+string(period)).Bytes()
	if err != nil {
		return nil, false
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set stores the leaderboard for the period. Errors are swallowed; the
// cache is best effort.
func (c *LeaderboardCache) Set(ctx context.Context, period models.LeaderboardPeriod, entries []models.LeaderboardEntry) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	c.client.Set(ctx, leaderboardKeyPrefix+string(period), data, leaderboardTTL)
}

// Invalidate drops all cached leaderboards. Called after point writes.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	for _, period := range []models.LeaderboardPeriod{models.PeriodWeekly, models.PeriodMonthly, models.PeriodTotal} {
		c.client.Del(ctx, leaderboardKeyPrefix+string(period))
	}
}
