package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductSold     ProductStatus = "sold"
)

// Product is owned by the catalog. Order flows only ever touch Stock and
// Status, and only through the inventory ledger.
type Product struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	SellerID  uint64          `json:"sellerId" gorm:"not null;index"`
	Title     string          `json:"title" gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;default:0"`
	Status    ProductStatus   `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ProductSummary is the seller-limited view of a product embedded in order
// read projections.
type ProductSummary struct {
	ID       uint64          `json:"id"`
	SellerID uint64          `json:"sellerId"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
}

func (ProductSummary) TableName() string { return "products" }
