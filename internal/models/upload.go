package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UploadFileType identifies which report a spreadsheet upload carries.
type UploadFileType string

const (
	UploadCustomerPoints UploadFileType = "CUSTOMER_POINTS"
	UploadProductSales   UploadFileType = "PRODUCT_SALES"
	UploadCustomerSales  UploadFileType = "CUSTOMER_SALES"
)

// Valid reports whether t is a known upload file type.
func (t UploadFileType) Valid() bool {
	switch t {
	case UploadCustomerPoints, UploadProductSales, UploadCustomerSales:
		return true
	}
	return false
}

// UploadStatus tracks the processing state of an upload batch.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "PENDING"
	UploadStatusProcessing UploadStatus = "PROCESSING"
	UploadStatusCompleted  UploadStatus = "COMPLETED"
	UploadStatusFailed     UploadStatus = "FAILED"
)

// UploadBatch records one spreadsheet ingestion run.
type UploadBatch struct {
	ID       uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FileName string         `json:"file_name" gorm:"type:varchar(255);not null"`
	FileType UploadFileType `json:"file_type" gorm:"type:varchar(20);not null"`
	Status   UploadStatus   `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`

	RowsProcessed int            `json:"rows_processed" gorm:"default:0"`
	RowsFailed    int            `json:"rows_failed" gorm:"default:0"`
	ErrorMessage  string         `json:"error_message" gorm:"type:text"`
	RowErrors     pq.StringArray `json:"row_errors,omitempty" gorm:"type:text[]"`

	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}

// CustomerPointsRow is a normalized loyalty-report row handed to the
// ingestion service by the upload collaborator.
type CustomerPointsRow struct {
	CustomerCode   string
	FirstName      string
	LastName       string
	Phone          string
	PhoneSecondary string
	TotalPoints    float64
	PointsTLValue  float64
	BirthDate      *time.Time
}

// ProductSalesRow is a normalized product-report row.
type ProductSalesRow struct {
	Barcode       string
	ProductCode   string
	Name          string
	BrandName     string
	Category      ProductCategory
	UnitPrice     float64
	StockQuantity int
	KDVRate       int
	UsageDuration int
}

// CustomerSalesRow is a normalized sales-transaction row. Customer and
// product are referenced by their stable codes; ingestion resolves or
// creates them.
type CustomerSalesRow struct {
	CustomerCode string
	CustomerName string
	Barcode      string
	ProductName  string
	SaleDate     time.Time
	Quantity     int
	UnitPrice    float64
	TotalAmount  float64
	KDVAmount    float64
}
