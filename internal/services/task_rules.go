package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/umtcnbyndr/eczane-crm/internal/config"
	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// TaskCandidate is a task a rule wants created. The generation engine
// persists candidates PENDING; duplicates against an open task of the
// same type are skipped, not failed.
type TaskCandidate struct {
	TaskType    models.TaskType
	CustomerID  uuid.UUID
	ProductID   *uuid.UUID
	Title       string
	Description string
	Priority    models.TaskPriority
	PointsValue int
	DueDate     *time.Time
}

// RuleContext carries everything the pure rules may look at for one
// customer. The generation engine assembles it once per customer.
type RuleContext struct {
	Customer *models.Customer
	Now      time.Time
	Config   config.TaskConfig

	// RecentTransactions are the customer's purchases inside the
	// spending window, newest first, with products preloaded.
	RecentTransactions []models.SalesTransaction

	// LastDermoConsultAt is when a DERMO_CONSULT task was last created
	// for this customer, in any status. Zero when never.
	LastDermoConsultAt time.Time

	// OverdueReplenishment is the customer's open REPLENISHMENT task
	// whose due date has passed, if any.
	OverdueReplenishment *models.Task
}

// Rule evaluates one task type against a customer. Returns nil when the
// rule does not fire.
type Rule func(ctx RuleContext) *TaskCandidate

// Rules maps every task type to its rule, in evaluation order.
func Rules() map[models.TaskType]Rule {
	return map[models.TaskType]Rule{
		models.TaskReplenishment:   ReplenishmentRule,
		models.TaskChurnPrevention: ChurnPreventionRule,
		models.TaskVIPFollowup:     VIPFollowupRule,
		models.TaskDermoConsult:    DermoConsultRule,
		models.TaskReminderCall:    ReminderCallRule,
		models.TaskBirthday:        BirthdayRule,
		models.TaskSpecialDay:      SpecialDayRule,
	}
}

// ReplenishmentRule fires when the most recent purchase of any product
// is predicted to have run out. The prediction is sale date plus the
// product's usage duration, pulled forward by the configured lead time.
func ReplenishmentRule(ctx RuleContext) *TaskCandidate {
	type prediction struct {
		tx  *models.SalesTransaction
		due time.Time
	}

	// Only the newest purchase per product predicts; an older box of
	// the same product is already superseded.
	latest := make(map[uuid.UUID]*prediction)
	for i := range ctx.RecentTransactions {
		tx := &ctx.RecentTransactions[i]
		due, ok := tx.ReplenishmentDue(ctx.Config.ReplenishmentLeadDays)
		if !ok {
			continue
		}
		if prev, seen := latest[tx.ProductID]; !seen || tx.SaleDate.After(prev.tx.SaleDate) {
			latest[tx.ProductID] = &prediction{tx: tx, due: due}
		}
	}

	// Pick the most overdue prediction.
	var pick *prediction
	for _, p := range latest {
		if p.due.After(ctx.Now) {
			continue
		}
		if pick == nil || p.due.Before(pick.due) {
			pick = p
		}
	}
	if pick == nil {
		return nil
	}

	overdueDays := int(ctx.Now.Sub(pick.due).Hours() / 24)
	priority := models.PriorityMedium
	if overdueDays >= 14 {
		priority = models.PriorityHigh
	}

	productName := "product"
	if pick.tx.Product != nil {
		productName = pick.tx.Product.Name
	}
	productID := pick.tx.ProductID
	due := pick.due

	return &TaskCandidate{
		TaskType:    models.TaskReplenishment,
		CustomerID:  ctx.Customer.ID,
		ProductID:   &productID,
		Title:       fmt.Sprintf("Replenishment call: %s", ctx.Customer.FullName()),
		Description: fmt.Sprintf("%s bought on %s should be running out. Offer a refill.", productName, pick.tx.SaleDate.Format("2006-01-02")),
		Priority:    priority,
		PointsValue: ctx.Config.ReplenishmentPoints,
		DueDate:     &due,
	}
}

// ChurnPreventionRule fires for at-risk customers. LOST customers are
// excluded; winning them back is a campaign decision, not a call task.
func ChurnPreventionRule(ctx RuleContext) *TaskCandidate {
	c := ctx.Customer
	if c.ChurnRisk < 50 || c.Segment == models.SegmentLost {
		return nil
	}

	priority := models.PriorityHigh
	points := ctx.Config.ChurnPoints
	if c.ChurnRisk >= 75 {
		priority = models.PriorityUrgent
		points = ctx.Config.ChurnUrgentPoints
	}

	return &TaskCandidate{
		TaskType:    models.TaskChurnPrevention,
		CustomerID:  c.ID,
		Title:       fmt.Sprintf("Win-back call: %s", c.FullName()),
		Description: fmt.Sprintf("Churn risk %d. Last visit %d days ago. Call before they drift away.", c.ChurnRisk, c.DaysSinceLastVisit(ctx.Now)),
		Priority:    priority,
		PointsValue: points,
	}
}

// VIPFollowupRule fires for VIP-tier customers who have not been
// contacted recently.
func VIPFollowupRule(ctx RuleContext) *TaskCandidate {
	c := ctx.Customer
	if !c.Segment.IsVIP() {
		return nil
	}
	if c.LastContactDate != nil {
		days := int(ctx.Now.Sub(*c.LastContactDate).Hours() / 24)
		if days < ctx.Config.VIPFollowupDays {
			return nil
		}
	}

	points := ctx.Config.VIPFollowupPoints
	if c.Segment == models.SegmentDermoVIP {
		points = ctx.Config.DermoVIPFollowupPoints
	}

	return &TaskCandidate{
		TaskType:    models.TaskVIPFollowup,
		CustomerID:  c.ID,
		Title:       fmt.Sprintf("VIP follow-up: %s", c.FullName()),
		Description: "VIP customer without recent contact. Check in and mention current campaigns.",
		Priority:    models.PriorityMedium,
		PointsValue: points,
	}
}

// DermoConsultRule fires after a recent dermo-category purchase, unless
// a consult task was already created inside the window. Closed consult
// tasks count; the customer was already offered one.
func DermoConsultRule(ctx RuleContext) *TaskCandidate {
	windowStart := ctx.Now.AddDate(0, 0, -ctx.Config.DermoConsultWindowDays)

	var dermoTx *models.SalesTransaction
	for i := range ctx.RecentTransactions {
		tx := &ctx.RecentTransactions[i]
		if tx.Product == nil || tx.Product.Category != models.CategoryDermo {
			continue
		}
		if tx.SaleDate.Before(windowStart) {
			continue
		}
		dermoTx = tx
		break
	}
	if dermoTx == nil {
		return nil
	}
	if !ctx.LastDermoConsultAt.IsZero() && ctx.LastDermoConsultAt.After(windowStart) {
		return nil
	}

	productID := dermoTx.ProductID
	return &TaskCandidate{
		TaskType:    models.TaskDermoConsult,
		CustomerID:  ctx.Customer.ID,
		ProductID:   &productID,
		Title:       fmt.Sprintf("Skincare consult: %s", ctx.Customer.FullName()),
		Description: "Recent dermocosmetic purchase. Offer a skincare routine consultation.",
		Priority:    models.PriorityLow,
		PointsValue: ctx.Config.DermoConsultPoints,
	}
}

// ReminderCallRule fires when an open REPLENISHMENT task has sat past
// its due date beyond the grace window.
func ReminderCallRule(ctx RuleContext) *TaskCandidate {
	task := ctx.OverdueReplenishment
	if task == nil || task.DueDate == nil {
		return nil
	}
	graceEnd := task.DueDate.AddDate(0, 0, ctx.Config.ReminderGraceDays)
	if ctx.Now.Before(graceEnd) {
		return nil
	}

	return &TaskCandidate{
		TaskType:    models.TaskReminderCall,
		CustomerID:  ctx.Customer.ID,
		ProductID:   task.ProductID,
		Title:       fmt.Sprintf("Reminder call: %s", ctx.Customer.FullName()),
		Description: "Replenishment task is overdue and untouched. Call the customer directly.",
		Priority:    models.PriorityHigh,
		PointsValue: ctx.Config.ReminderCallPoints,
	}
}

// BirthdayRule fires on the customer's birthday.
func BirthdayRule(ctx RuleContext) *TaskCandidate {
	c := ctx.Customer
	if c.BirthDate == nil || !sameMonthDay(*c.BirthDate, ctx.Now) {
		return nil
	}
	return &TaskCandidate{
		TaskType:    models.TaskBirthday,
		CustomerID:  c.ID,
		Title:       fmt.Sprintf("Birthday call: %s", c.FullName()),
		Description: "Today is the customer's birthday. Call with a celebration and a small gift offer.",
		Priority:    models.PriorityMedium,
		PointsValue: ctx.Config.CelebrationPoints,
	}
}

// SpecialDayRule fires on the customer's recorded special date, such as
// an anniversary.
func SpecialDayRule(ctx RuleContext) *TaskCandidate {
	c := ctx.Customer
	if c.SpecialDate == nil || !sameMonthDay(*c.SpecialDate, ctx.Now) {
		return nil
	}
	return &TaskCandidate{
		TaskType:    models.TaskSpecialDay,
		CustomerID:  c.ID,
		Title:       fmt.Sprintf("Special day call: %s", c.FullName()),
		Description: "Today is the customer's special day. Reach out with congratulations.",
		Priority:    models.PriorityMedium,
		PointsValue: ctx.Config.CelebrationPoints,
	}
}

func sameMonthDay(date, now time.Time) bool {
	return date.Month() == now.Month() && date.Day() == now.Day()
}
