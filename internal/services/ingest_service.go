package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
)

// maxStoredRowErrors caps how many per-row errors are persisted on the
// batch record.
const maxStoredRowErrors = 50

// IngestService writes normalized spreadsheet rows into the store. Row
// failures are collected per batch; only a storage-level fault fails
// the whole batch.
type IngestService struct {
	customerRepo    *repository.CustomerRepository
	productRepo     *repository.ProductRepository
	transactionRepo *repository.TransactionRepository
	uploadRepo      *repository.UploadRepository
	publisher       EventPublisher
	logger          *logrus.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	customerRepo *repository.CustomerRepository,
	productRepo *repository.ProductRepository,
	transactionRepo *repository.TransactionRepository,
	uploadRepo *repository.UploadRepository,
	publisher EventPublisher,
	logger *logrus.Logger,
) *IngestService {
	return &IngestService{
		customerRepo:    customerRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		uploadRepo:      uploadRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// IngestCustomerPoints upserts customers from a loyalty report. The
// customer code is the identity; points and contact details refresh on
// every upload.
func (s *IngestService) IngestCustomerPoints(ctx context.Context, batch *models.UploadBatch, rows []models.CustomerPointsRow) error {
	return s.run(ctx, batch, len(rows), func(report func(i int, err error)) error {
		for i, row := range rows {
			if row.CustomerCode == "" {
				report(i, fmt.Errorf("missing customer code"))
				continue
			}

			customer, err := s.customerRepo.GetByCode(ctx, row.CustomerCode)
			if err != nil {
				return err
			}
			if customer == nil {
				customer = &models.Customer{CustomerCode: row.CustomerCode}
			}

			customer.FirstName = row.FirstName
			customer.LastName = row.LastName
			customer.Phone = row.Phone
			customer.PhoneSecondary = row.PhoneSecondary
			customer.TotalPoints = row.TotalPoints
			customer.PointsTLValue = row.PointsTLValue
			if row.BirthDate != nil {
				customer.BirthDate = row.BirthDate
			}

			if customer.ID == uuid.Nil {
				err = s.customerRepo.Create(ctx, customer)
			} else {
				err = s.customerRepo.Update(ctx, customer)
			}
			if err != nil {
				report(i, err)
			}
		}
		return nil
	})
}

// IngestProductSales upserts products and their brands from a product
// report. The barcode is the identity.
func (s *IngestService) IngestProductSales(ctx context.Context, batch *models.UploadBatch, rows []models.ProductSalesRow) error {
	return s.run(ctx, batch, len(rows), func(report func(i int, err error)) error {
		for i, row := range rows {
			if row.Barcode == "" {
				report(i, fmt.Errorf("missing barcode"))
				continue
			}

			product := &models.Product{
				Barcode:       row.Barcode,
				ProductCode:   row.ProductCode,
				Name:          row.Name,
				Category:      row.Category,
				UnitPrice:     row.UnitPrice,
				StockQuantity: row.StockQuantity,
				KDVRate:       row.KDVRate,
				UsageDuration: row.UsageDuration,
			}
			if !product.Category.Valid() {
				product.Category = models.CategoryOther
			}

			if row.BrandName != "" {
				brand, err := s.productRepo.EnsureBrand(ctx, row.BrandName, product.Category)
				if err != nil {
					return err
				}
				if brand != nil {
					product.BrandID = &brand.ID
				}
			}

			if err := s.productRepo.UpsertByBarcode(ctx, product); err != nil {
				report(i, err)
			}
		}
		return nil
	})
}

// IngestCustomerSales appends sales transactions. Unknown customers and
// products are created as minimal records so the facts are never
// dropped; later report uploads fill in the details.
func (s *IngestService) IngestCustomerSales(ctx context.Context, batch *models.UploadBatch, rows []models.CustomerSalesRow) error {
	return s.run(ctx, batch, len(rows), func(report func(i int, err error)) error {
		for i, row := range rows {
			if row.CustomerCode == "" || row.Barcode == "" {
				report(i, fmt.Errorf("missing customer code or barcode"))
				continue
			}

			customer, err := s.ensureCustomer(ctx, row)
			if err != nil {
				return err
			}
			product, err := s.ensureProduct(ctx, row)
			if err != nil {
				return err
			}

			tx := &models.SalesTransaction{
				CustomerID:  customer.ID,
				ProductID:   product.ID,
				SaleDate:    row.SaleDate,
				Quantity:    row.Quantity,
				UnitPrice:   row.UnitPrice,
				TotalAmount: row.TotalAmount,
				KDVAmount:   row.KDVAmount,
			}
			if err := s.transactionRepo.Create(ctx, tx); err != nil {
				report(i, err)
				continue
			}

			if err := s.refreshVisitDates(ctx, customer, row.SaleDate); err != nil {
				report(i, err)
			}
		}
		return nil
	})
}

func (s *IngestService) ensureCustomer(ctx context.Context, row models.CustomerSalesRow) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByCode(ctx, row.CustomerCode)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		return customer, nil
	}

	customer = &models.Customer{
		CustomerCode: row.CustomerCode,
		FirstName:    row.CustomerName,
		Segment:      models.SegmentNew,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *IngestService) ensureProduct(ctx context.Context, row models.CustomerSalesRow) (*models.Product, error) {
	product, err := s.productRepo.GetByBarcode(ctx, row.Barcode)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	product = &models.Product{
		Barcode:   row.Barcode,
		Name:      row.ProductName,
		Category:  models.CategoryOther,
		UnitPrice: row.UnitPrice,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// refreshVisitDates widens the customer's purchase date range to cover
// the new sale. Segment and churn recomputation belongs to the
// segmentation run, not ingestion.
func (s *IngestService) refreshVisitDates(ctx context.Context, customer *models.Customer, saleDate time.Time) error {
	changed := false
	if customer.FirstPurchaseDate == nil || saleDate.Before(*customer.FirstPurchaseDate) {
		d := saleDate
		customer.FirstPurchaseDate = &d
		changed = true
	}
	if customer.LastVisitDate == nil || saleDate.After(*customer.LastVisitDate) {
		d := saleDate
		customer.LastVisitDate = &d
		changed = true
	}
	if !changed {
		return nil
	}
	return s.customerRepo.Update(ctx, customer)
}

// run wraps one ingestion pass with batch bookkeeping: PROCESSING on
// entry, row errors collected, COMPLETED or FAILED persisted on exit.
func (s *IngestService) run(ctx context.Context, batch *models.UploadBatch, totalRows int, fn func(report func(i int, err error)) error) error {
	batch.Status = models.UploadStatusProcessing
	if err := s.uploadRepo.Update(ctx, batch); err != nil {
		return err
	}

	failed := 0
	report := func(i int, err error) {
		failed++
		if len(batch.RowErrors) < maxStoredRowErrors {
			batch.RowErrors = append(batch.RowErrors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}

	runErr := fn(report)

	now := time.Now()
	batch.ProcessedAt = &now
	batch.RowsProcessed = totalRows - failed
	batch.RowsFailed = failed
	if runErr != nil {
		batch.Status = models.UploadStatusFailed
		batch.ErrorMessage = runErr.Error()
	} else {
		batch.Status = models.UploadStatusCompleted
	}

	if err := s.uploadRepo.Update(ctx, batch); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	s.publisher.PublishUploadProcessed(batch)
	s.logger.WithFields(logrus.Fields{
		"batch_id":       batch.ID,
		"file_type":      batch.FileType,
		"rows_processed": batch.RowsProcessed,
		"rows_failed":    batch.RowsFailed,
	}).Info("Upload batch processed")
	return nil
}
