package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesTransaction is an append-only purchase fact. Transactions are
// written by ingestion and read by the segmentation and task engines.
type SalesTransaction struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index:idx_transactions_customer_date"`
	Customer   *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Product    *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	SaleDate    time.Time `json:"sale_date" gorm:"type:date;not null;index:idx_transactions_customer_date,sort:desc"`
	Quantity    int       `json:"quantity" gorm:"default:1"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(10,2)"`
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(12,2)"`
	KDVAmount   float64   `json:"kdv_amount" gorm:"type:decimal(10,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
}

// ReplenishmentDue predicts when the purchased package runs out, minus
// the reminder lead time. Returns false when the product has no usage
// duration to predict from.
func (t *SalesTransaction) ReplenishmentDue(leadDays int) (time.Time, bool) {
	if t.Product == nil || t.Product.UsageDuration <= 0 {
		return time.Time{}, false
	}
	return t.SaleDate.AddDate(0, 0, t.Product.UsageDuration-leadDays), true
}
