package mysql

import (
	"context"
	"errors"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) repository.InventoryLedger {
	return &inventoryLedger{db: db}
}

func (r *inventoryLedger) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// The status expression is assigned before stock so it reads the
// pre-decrement value on every engine (MySQL evaluates SET left to right).
const reserveSQL = `UPDATE products
SET status = CASE WHEN stock = ? THEN ? WHEN status = ? THEN ? ELSE status END,
    stock = stock - ?,
    updated_at = ?
WHERE id = ? AND stock >= ?`

const releaseSQL = `UPDATE products
SET stock = stock + ?,
    status = ?,
    updated_at = ?
WHERE id = ?`

// Reserve decrements stock with a single conditional update so concurrent
// checkouts of the same product cannot oversell.
func (r *inventoryLedger) Reserve(ctx context.Context, productID uint64, quantity int) (int, error) {
	if quantity < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	db := conn(ctx, r.db)

	res := db.Exec(reserveSQL,
		quantity, domain.ProductSold, domain.ProductSold, domain.ProductActive,
		quantity, db.NowFunc(), productID, quantity,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		stock, err := r.currentStock(db, productID)
		if err != nil {
			return 0, err
		}
		return 0, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: stock}
	}
	return r.currentStock(db, productID)
}

// Release puts stock back and makes the product available again.
func (r *inventoryLedger) Release(ctx context.Context, productID uint64, quantity int) (int, error) {
	if quantity < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	db := conn(ctx, r.db)

	res := db.Exec(releaseSQL, quantity, domain.ProductActive, db.NowFunc(), productID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, &domain.ProductNotFoundError{ProductID: productID}
	}
	return r.currentStock(db, productID)
}

// currentStock is a locking read. A plain SELECT inside a REPEATABLE READ
// transaction returns the snapshot taken by the first read, which would
// report stock a concurrent checkout has already taken.
func (r *inventoryLedger) currentStock(db *gorm.DB, productID uint64) (int, error) {
	var p domain.Product
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		Select("id", "stock").
		First(&p, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &domain.ProductNotFoundError{ProductID: productID}
		}
		return 0, err
	}
	return p.Stock, nil
}
