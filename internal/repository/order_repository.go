package repository

import (
	"context"
	"errors"

	"marketplace-orders/internal/domain"
)

// ErrStaleOrder is returned by a conditional status write when the stored
// statuses no longer match what the caller read.
var ErrStaleOrder = errors.New("order status changed concurrently")

// Transactor runs fn inside one store transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InventoryLedger is the only writer of Product.Stock and Product.Status.
type InventoryLedger interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	Reserve(ctx context.Context, productID uint64, quantity int) (int, error)
	Release(ctx context.Context, productID uint64, quantity int) (int, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uint64) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order, expected domain.StatusSnapshot) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	FindByOrderID(ctx context.Context, orderID uint64) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, txn *domain.Transaction) error
}
