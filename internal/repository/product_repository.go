package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// lowStockThreshold marks products that need reordering.
const lowStockThreshold = 10

// ProductRepository handles product and brand persistence.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product with its brand loaded.
func (r *ProductRepository) GetByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// GetByBarcode retrieves a product by barcode. Returns (nil, nil) when
// no product matches, so ingestion can branch without error plumbing.
func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// UpsertByBarcode inserts the product or refreshes the mutable columns
// of an existing one in a single statement.
func (r *ProductRepository) UpsertByBarcode(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "barcode"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "category", "brand_id", "unit_price", "kdv_rate", "stock_quantity", "updated_at",
			}),
		}).
		Create(product).Error
}

// ProductFilter represents filter options for listing products.
type ProductFilter struct {
	Category *models.ProductCategory
	Search   string
	LowStock bool
	Limit    int
	Offset   int
}

// List retrieves products with filters.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR barcode ILIKE ?", search, search)
	}
	if filter.LowStock {
		query = query.Where("stock_quantity <= ?", lowStockThreshold)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Brand").Order("name ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CountAll counts all products.
func (r *ProductRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

// CountLowStock counts products at or below the reorder threshold.
func (r *ProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock_quantity <= ?", lowStockThreshold).
		Count(&n).Error
	return n, err
}

// GetBrandByName retrieves a brand by name. Returns (nil, nil) when
// no brand matches.
func (r *ProductRepository) GetBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

// EnsureBrand returns the existing brand with the given name, creating
// it when missing.
func (r *ProductRepository) EnsureBrand(ctx context.Context, name string, category models.ProductCategory) (*models.Brand, error) {
	brand, err := r.GetBrandByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if brand != nil {
		return brand, nil
	}

	brand = &models.Brand{Name: name, Category: category}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(brand).Error; err != nil {
		return nil, err
	}
	// A concurrent insert may have won the conflict; re-read to get
	// the canonical row either way.
	return r.GetBrandByName(ctx, name)
}

// BrandSummaries retrieves all brands with their product counts.
func (r *ProductRepository) BrandSummaries(ctx context.Context) ([]models.BrandSummary, error) {
	var summaries []models.BrandSummary
	err := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Select("brands.id, brands.name, brands.category, brands.is_premium, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.brand_id = brands.id").
		Group("brands.id, brands.name, brands.category, brands.is_premium").
		Order("brands.name ASC").
		Scan(&summaries).Error
	return summaries, err
}
