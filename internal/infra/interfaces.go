package infra

import (
	"context"

	"marketplace-orders/internal/domain"
)

type CartClientInterface interface {
	GetCart(ctx context.Context, userID uint64) ([]domain.LineItem, error)
}

var _ CartClientInterface = (*CartClient)(nil)
