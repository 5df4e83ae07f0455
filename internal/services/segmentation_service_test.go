package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

func testSegmentationConfig() config.SegmentationConfig {
	return config.SegmentationConfig{
		VIPSpendingThreshold:      5000,
		DermoVIPSpendingThreshold: 2000,
		SpendingWindowDays:        180,
		DefaultIntervalDays:       30,
		NewCustomerDays:           30,
		LostAfterDays:             180,
	}
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func TestChurnScore(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		lastPurchase *time.Time
		interval     int
		want         int
	}{
		{name: "no purchase history", lastPurchase: nil, interval: 30, want: 0},
		{name: "purchased today", lastPurchase: daysAgo(now, 0), interval: 30, want: 0},
		{name: "inside expected interval", lastPurchase: daysAgo(now, 20), interval: 30, want: 0},
		{name: "exactly at interval", lastPurchase: daysAgo(now, 30), interval: 30, want: 0},
		{name: "halfway to lost", lastPurchase: daysAgo(now, 60), interval: 30, want: 50},
		{name: "at three intervals", lastPurchase: daysAgo(now, 90), interval: 30, want: 100},
		{name: "far beyond three intervals", lastPurchase: daysAgo(now, 200), interval: 30, want: 100},
		{name: "short interval customer", lastPurchase: daysAgo(now, 21), interval: 7, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChurnScore(tt.lastPurchase, tt.interval, now)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestChurnScoreMonotonic(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	prev := 0
	for days := 0; days <= 120; days += 5 {
		got := ChurnScore(daysAgo(now, days), 30, now)
		assert.GreaterOrEqual(t, got, prev, "risk must not decrease as days since purchase grow (day %d)", days)
		prev = got
	}
}

func TestExpectedInterval(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	d := func(days int) time.Time { return now.AddDate(0, 0, -days) }

	tests := []struct {
		name      string
		saleDates []time.Time
		want      int
	}{
		{name: "no dates falls back to default", saleDates: nil, want: 30},
		{name: "single date falls back to default", saleDates: []time.Time{d(10)}, want: 30},
		{name: "regular monthly buyer", saleDates: []time.Time{d(0), d(30), d(60), d(90)}, want: 30},
		{name: "weekly buyer", saleDates: []time.Time{d(0), d(7), d(14)}, want: 7},
		{name: "uneven gaps averaged", saleDates: []time.Time{d(0), d(10), d(30)}, want: 15},
		{name: "same-day duplicates ignored", saleDates: []time.Time{d(0), d(0), d(0)}, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedInterval(tt.saleDates, 30))
		})
	}
}

func TestRecompute(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cfg := testSegmentationConfig()

	t.Run("no purchase history is NEW with zero risk", func(t *testing.T) {
		result := Recompute(PurchaseFacts{}, cfg, now)
		assert.Equal(t, models.SegmentNew, result.Segment)
		assert.Equal(t, 0, result.ChurnRisk)
	})

	t.Run("lapsed customer becomes LOST", func(t *testing.T) {
		last := now.AddDate(0, 0, -200)
		result := Recompute(PurchaseFacts{
			LastPurchase:  &last,
			FirstPurchase: daysAgo(now, 400),
		}, cfg, now)
		assert.Equal(t, models.SegmentLost, result.Segment)
		assert.Equal(t, 100, result.ChurnRisk)
	})

	t.Run("LOST outranks VIP spending", func(t *testing.T) {
		last := now.AddDate(0, 0, -200)
		result := Recompute(PurchaseFacts{
			TotalSpending: 9000,
			LastPurchase:  &last,
			FirstPurchase: daysAgo(now, 500),
		}, cfg, now)
		assert.Equal(t, models.SegmentLost, result.Segment)
	})

	t.Run("big spender is VIP", func(t *testing.T) {
		result := Recompute(PurchaseFacts{
			TotalSpending: 6000,
			LastPurchase:  daysAgo(now, 10),
			FirstPurchase: daysAgo(now, 300),
			SaleDates:     []time.Time{*daysAgo(now, 10), *daysAgo(now, 40)},
		}, cfg, now)
		assert.Equal(t, models.SegmentVIP, result.Segment)
	})

	t.Run("dermo spender below VIP threshold is DERMO_VIP", func(t *testing.T) {
		result := Recompute(PurchaseFacts{
			TotalSpending: 3000,
			DermoSpending: 2500,
			LastPurchase:  daysAgo(now, 5),
			FirstPurchase: daysAgo(now, 300),
		}, cfg, now)
		assert.Equal(t, models.SegmentDermoVIP, result.Segment)
	})

	t.Run("recent first purchase is NEW", func(t *testing.T) {
		result := Recompute(PurchaseFacts{
			TotalSpending: 200,
			LastPurchase:  daysAgo(now, 5),
			FirstPurchase: daysAgo(now, 15),
		}, cfg, now)
		assert.Equal(t, models.SegmentNew, result.Segment)
	})

	t.Run("everyone else is STANDARD", func(t *testing.T) {
		result := Recompute(PurchaseFacts{
			TotalSpending: 800,
			LastPurchase:  daysAgo(now, 20),
			FirstPurchase: daysAgo(now, 400),
			SaleDates:     []time.Time{*daysAgo(now, 20), *daysAgo(now, 50)},
		}, cfg, now)
		assert.Equal(t, models.SegmentStandard, result.Segment)
		assert.Equal(t, 0, result.ChurnRisk)
	})
}
