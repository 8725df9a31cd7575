package mysql

import (
	"context"
	"errors"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"

	"gorm.io/gorm"
)

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	return conn(ctx, r.db).Create(txn).Error
}

// FindByOrderID returns nil, nil for orders written before transactions
// were recorded.
func (r *transactionRepo) FindByOrderID(ctx context.Context, orderID uint64) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := conn(ctx, r.db).Where("order_id = ?", orderID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, txn *domain.Transaction) error {
	return conn(ctx, r.db).Model(&domain.Transaction{}).
		Where("id = ?", txn.ID).
		Update("status", txn.Status).Error
}
