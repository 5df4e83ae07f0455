package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

func testTaskConfig() config.TaskConfig {
	return config.TaskConfig{
		ReplenishmentLeadDays:  5,
		ReminderGraceDays:      3,
		VIPFollowupDays:        30,
		DermoConsultWindowDays: 60,
		ReplenishmentPoints:    10,
		ChurnPoints:            15,
		ChurnUrgentPoints:      20,
		VIPFollowupPoints:      10,
		DermoVIPFollowupPoints: 15,
		DermoConsultPoints:     15,
		ReminderCallPoints:     10,
		CelebrationPoints:      25,
	}
}

func testRuleContext(customer *models.Customer, now time.Time) RuleContext {
	return RuleContext{
		Customer: customer,
		Now:      now,
		Config:   testTaskConfig(),
	}
}

func testCustomer() *models.Customer {
	return &models.Customer{
		ID:        uuid.New(),
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		Segment:   models.SegmentStandard,
	}
}

func saleOf(product *models.Product, daysAgo int, now time.Time) models.SalesTransaction {
	return models.SalesTransaction{
		ID:        uuid.New(),
		ProductID: product.ID,
		Product:   product,
		SaleDate:  now.AddDate(0, 0, -daysAgo),
	}
}

func TestReplenishmentRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	vitamin := &models.Product{ID: uuid.New(), Name: "Vitamin D3", UsageDuration: 30}

	t.Run("no purchases yields nothing", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		assert.Nil(t, ReplenishmentRule(ctx))
	})

	t.Run("package not yet depleted yields nothing", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(vitamin, 10, now)}
		assert.Nil(t, ReplenishmentRule(ctx))
	})

	t.Run("depleted package fires MEDIUM", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(vitamin, 30, now)}

		candidate := ReplenishmentRule(ctx)
		require.NotNil(t, candidate)
		assert.Equal(t, models.TaskReplenishment, candidate.TaskType)
		assert.Equal(t, models.PriorityMedium, candidate.Priority)
		require.NotNil(t, candidate.ProductID)
		assert.Equal(t, vitamin.ID, *candidate.ProductID)
		require.NotNil(t, candidate.DueDate)
	})

	t.Run("two weeks overdue escalates to HIGH", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(vitamin, 45, now)}

		candidate := ReplenishmentRule(ctx)
		require.NotNil(t, candidate)
		assert.Equal(t, models.PriorityHigh, candidate.Priority)
	})

	t.Run("newer purchase of same product supersedes older", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{
			saleOf(vitamin, 10, now),
			saleOf(vitamin, 60, now),
		}
		assert.Nil(t, ReplenishmentRule(ctx))
	})

	t.Run("product without usage duration never predicts", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		cream := &models.Product{ID: uuid.New(), Name: "Hand Cream"}
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(cream, 90, now)}
		assert.Nil(t, ReplenishmentRule(ctx))
	})
}

func TestChurnPreventionRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		churnRisk    int
		segment      models.Segment
		wantNil      bool
		wantPriority models.TaskPriority
		wantPoints   int
	}{
		{name: "low risk does not fire", churnRisk: 30, segment: models.SegmentStandard, wantNil: true},
		{name: "at threshold fires HIGH", churnRisk: 50, segment: models.SegmentStandard, wantPriority: models.PriorityHigh, wantPoints: 15},
		{name: "high risk escalates to URGENT", churnRisk: 80, segment: models.SegmentStandard, wantPriority: models.PriorityUrgent, wantPoints: 20},
		{name: "LOST customer is excluded", churnRisk: 90, segment: models.SegmentLost, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer := testCustomer()
			customer.ChurnRisk = tt.churnRisk
			customer.Segment = tt.segment

			candidate := ChurnPreventionRule(testRuleContext(customer, now))
			if tt.wantNil {
				assert.Nil(t, candidate)
				return
			}
			require.NotNil(t, candidate)
			assert.Equal(t, tt.wantPriority, candidate.Priority)
			assert.Equal(t, tt.wantPoints, candidate.PointsValue)
		})
	}
}

func TestVIPFollowupRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("standard customer does not fire", func(t *testing.T) {
		customer := testCustomer()
		assert.Nil(t, VIPFollowupRule(testRuleContext(customer, now)))
	})

	t.Run("VIP never contacted fires", func(t *testing.T) {
		customer := testCustomer()
		customer.Segment = models.SegmentVIP

		candidate := VIPFollowupRule(testRuleContext(customer, now))
		require.NotNil(t, candidate)
		assert.Equal(t, 10, candidate.PointsValue)
	})

	t.Run("recently contacted VIP does not fire", func(t *testing.T) {
		customer := testCustomer()
		customer.Segment = models.SegmentVIP
		customer.LastContactDate = daysAgo(now, 10)

		assert.Nil(t, VIPFollowupRule(testRuleContext(customer, now)))
	})

	t.Run("dermo VIP carries higher points", func(t *testing.T) {
		customer := testCustomer()
		customer.Segment = models.SegmentDermoVIP
		customer.LastContactDate = daysAgo(now, 45)

		candidate := VIPFollowupRule(testRuleContext(customer, now))
		require.NotNil(t, candidate)
		assert.Equal(t, 15, candidate.PointsValue)
	})
}

func TestDermoConsultRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	serum := &models.Product{ID: uuid.New(), Name: "Hyaluronic Serum", Category: models.CategoryDermo, UsageDuration: 60}

	t.Run("recent dermo purchase fires LOW", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(serum, 10, now)}

		candidate := DermoConsultRule(ctx)
		require.NotNil(t, candidate)
		assert.Equal(t, models.PriorityLow, candidate.Priority)
	})

	t.Run("old dermo purchase does not fire", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(serum, 90, now)}
		assert.Nil(t, DermoConsultRule(ctx))
	})

	t.Run("consult already offered inside window", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(serum, 10, now)}
		ctx.LastDermoConsultAt = now.AddDate(0, 0, -30)
		assert.Nil(t, DermoConsultRule(ctx))
	})

	t.Run("non-dermo purchase does not fire", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		aspirin := &models.Product{ID: uuid.New(), Name: "Aspirin", Category: models.CategoryIlac}
		ctx.RecentTransactions = []models.SalesTransaction{saleOf(aspirin, 5, now)}
		assert.Nil(t, DermoConsultRule(ctx))
	})
}

func TestReminderCallRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	overdueTask := func(daysOverdue int) *models.Task {
		due := now.AddDate(0, 0, -daysOverdue)
		productID := uuid.New()
		return &models.Task{
			ID:        uuid.New(),
			TaskType:  models.TaskReplenishment,
			Status:    models.TaskStatusPending,
			ProductID: &productID,
			DueDate:   &due,
		}
	}

	t.Run("no overdue replenishment yields nothing", func(t *testing.T) {
		assert.Nil(t, ReminderCallRule(testRuleContext(testCustomer(), now)))
	})

	t.Run("inside grace window yields nothing", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		ctx.OverdueReplenishment = overdueTask(2)
		assert.Nil(t, ReminderCallRule(ctx))
	})

	t.Run("past grace window fires HIGH carrying the product", func(t *testing.T) {
		ctx := testRuleContext(testCustomer(), now)
		task := overdueTask(5)
		ctx.OverdueReplenishment = task

		candidate := ReminderCallRule(ctx)
		require.NotNil(t, candidate)
		assert.Equal(t, models.PriorityHigh, candidate.Priority)
		assert.Equal(t, task.ProductID, candidate.ProductID)
	})
}

func TestBirthdayAndSpecialDayRules(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("birthday today fires regardless of year", func(t *testing.T) {
		customer := testCustomer()
		birth := time.Date(1985, 8, 1, 0, 0, 0, 0, time.UTC)
		customer.BirthDate = &birth

		candidate := BirthdayRule(testRuleContext(customer, now))
		require.NotNil(t, candidate)
		assert.Equal(t, 25, candidate.PointsValue)
	})

	t.Run("other days do not fire", func(t *testing.T) {
		customer := testCustomer()
		birth := time.Date(1985, 8, 2, 0, 0, 0, 0, time.UTC)
		customer.BirthDate = &birth
		assert.Nil(t, BirthdayRule(testRuleContext(customer, now)))
	})

	t.Run("special day fires on match", func(t *testing.T) {
		customer := testCustomer()
		special := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
		customer.SpecialDate = &special

		candidate := SpecialDayRule(testRuleContext(customer, now))
		require.NotNil(t, candidate)
		assert.Equal(t, models.TaskSpecialDay, candidate.TaskType)
	})

	t.Run("missing dates never fire", func(t *testing.T) {
		customer := testCustomer()
		assert.Nil(t, BirthdayRule(testRuleContext(customer, now)))
		assert.Nil(t, SpecialDayRule(testRuleContext(customer, now)))
	})
}

func TestLostCustomerGeneratesNothing(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	customer := testCustomer()
	customer.Segment = models.SegmentLost
	customer.ChurnRisk = 100
	customer.LastVisitDate = daysAgo(now, 200)

	ctx := testRuleContext(customer, now)
	for taskType, rule := range Rules() {
		assert.Nil(t, rule(ctx), "rule %s should not fire for a LOST customer with no recent activity", taskType)
	}
}

func TestRulePointsFollowConfig(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	customer := testCustomer()
	customer.ChurnRisk = 80
	birthday := time.Date(1980, 8, 1, 0, 0, 0, 0, time.UTC)
	customer.BirthDate = &birthday

	ctx := testRuleContext(customer, now)
	ctx.Config.ChurnUrgentPoints = 40
	ctx.Config.CelebrationPoints = 7

	churn := ChurnPreventionRule(ctx)
	require.NotNil(t, churn)
	assert.Equal(t, 40, churn.PointsValue)

	birthdayCall := BirthdayRule(ctx)
	require.NotNil(t, birthdayCall)
	assert.Equal(t, 7, birthdayCall.PointsValue)
}
