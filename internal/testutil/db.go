// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"marketplace-orders/internal/domain"
	dbinfra "marketplace-orders/internal/infra/mysql"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database. A single connection keeps
// every caller on the same memory store and serializes writers.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), dbinfra.GormConfig("warn"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dbinfra.AutoMigrate(db))
	return db
}

func SeedProduct(t *testing.T, db *gorm.DB, title, price string, stock int) domain.Product {
	t.Helper()

	p := domain.Product{
		SellerID: 99,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Status:   domain.ProductActive,
	}
	if stock == 0 {
		p.Status = domain.ProductSold
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func LoadProduct(t *testing.T, db *gorm.DB, id uint64) domain.Product {
	t.Helper()

	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}
