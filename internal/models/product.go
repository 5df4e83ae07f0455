package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductCategory groups products for spending aggregates and task rules.
type ProductCategory string

const (
	CategoryIlac    ProductCategory = "ILAC"
	CategoryDermo   ProductCategory = "DERMO"
	CategoryOTC     ProductCategory = "OTC"
	CategoryMama    ProductCategory = "MAMA"
	CategoryVitamin ProductCategory = "VITAMIN"
	CategoryOther   ProductCategory = "OTHER"
)

// Valid reports whether c is a known product category.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryIlac, CategoryDermo, CategoryOTC, CategoryMama, CategoryVitamin, CategoryOther:
		return true
	}
	return false
}

// Brand is reference data. IsPremium is a curated attribute; the product
// count on the brand listing is derived at read time, never stored.
type Brand struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Category  ProductCategory `json:"category" gorm:"type:varchar(20);default:'OTHER';index"`
	IsPremium bool            `json:"is_premium" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

// BrandSummary is the derived read view for the brand listing.
type BrandSummary struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     ProductCategory `json:"category"`
	IsPremium    bool            `json:"is_premium"`
	ProductCount int             `json:"product_count"`
}

// Product is reference data, read-only to the engines. UsageDuration is
// how many days one package lasts and drives replenishment prediction.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Barcode     string          `json:"barcode" gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductCode string          `json:"product_code" gorm:"type:varchar(50)"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	BrandID     *uuid.UUID      `json:"brand_id" gorm:"type:uuid;index"`
	Brand       *Brand          `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Category    ProductCategory `json:"category" gorm:"type:varchar(20);default:'OTHER';index"`

	KDVRate       int     `json:"kdv_rate" gorm:"default:10"`
	StockQuantity int     `json:"stock_quantity" gorm:"default:0"`
	UnitPrice     float64 `json:"unit_price" gorm:"type:decimal(10,2);default:0"`
	UsageDuration int     `json:"usage_duration" gorm:"default:30"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
