package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Segment classifies a customer for task eligibility.
type Segment string

const (
	SegmentVIP      Segment = "VIP"
	SegmentDermoVIP Segment = "DERMO_VIP"
	SegmentStandard Segment = "STANDARD"
	SegmentNew      Segment = "NEW"
	SegmentLost     Segment = "LOST"
)

// Valid reports whether s is a known segment value.
func (s Segment) Valid() bool {
	switch s {
	case SegmentVIP, SegmentDermoVIP, SegmentStandard, SegmentNew, SegmentLost:
		return true
	}
	return false
}

// IsVIP reports whether the segment is one of the VIP tiers.
func (s Segment) IsVIP() bool {
	return s == SegmentVIP || s == SegmentDermoVIP
}

// Customer is the canonical ledger record for a loyalty customer.
// Segment and ChurnRisk are owned by the segmentation engine and are
// recomputed from purchase facts only, never hand-edited. Customers are
// never deleted, only marked LOST.
type Customer struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerCode   string    `json:"customer_code" gorm:"type:varchar(50);not null;uniqueIndex"`
	FirstName      string    `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName       string    `json:"last_name" gorm:"type:varchar(100)"`
	Phone          string    `json:"phone" gorm:"type:varchar(20);index"`
	PhoneSecondary string    `json:"phone_secondary" gorm:"type:varchar(20)"`

	BirthDate   *time.Time `json:"birth_date"`
	SpecialDate *time.Time `json:"special_date"`

	TotalPoints   float64 `json:"total_points" gorm:"type:decimal(12,2);default:0"`
	PointsTLValue float64 `json:"points_tl_value" gorm:"type:decimal(12,2);default:0"`

	Segment   Segment `json:"segment" gorm:"type:varchar(20);default:'STANDARD';index"`
	ChurnRisk int     `json:"churn_risk" gorm:"default:0;index"`

	TotalSpending float64 `json:"total_spending" gorm:"type:decimal(12,2);default:0"`
	DermoSpending float64 `json:"dermo_spending" gorm:"type:decimal(12,2);default:0"`

	FirstPurchaseDate *time.Time `json:"first_purchase_date"`
	LastVisitDate     *time.Time `json:"last_visit_date"`
	LastContactDate   *time.Time `json:"last_contact_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display and task titles.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DaysSinceLastVisit returns the whole days elapsed since the last
// recorded purchase, or -1 when the customer has no purchase history.
func (c *Customer) DaysSinceLastVisit(now time.Time) int {
	if c.LastVisitDate == nil {
		return -1
	}
	return int(now.Sub(*c.LastVisitDate).Hours() / 24)
}
