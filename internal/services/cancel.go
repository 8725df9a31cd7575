package services

import (
	"context"
	"errors"
	"time"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"

	"github.com/rs/zerolog/log"
)

// CancelOrder reverses a placed or processing order: status, stock and the
// payment transaction change together or not at all.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uint64) (*domain.Order, error) {
	var (
		order    *domain.Order
		released []domain.LineItem
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByIDForUser(ctx, orderID, userID)
		if err != nil {
			return domain.AsStorage("load order", err)
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}

		prev := o.Snapshot()
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, o, prev); err != nil {
			if errors.Is(err, repository.ErrStaleOrder) {
				return &domain.InvalidTransitionError{From: string(prev.Order), To: string(domain.OrderCancelled)}
			}
			return domain.AsStorage("update order status", err)
		}

		released = released[:0]
		for _, it := range o.Items {
			if _, err := s.inventory.Release(ctx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					log.Warn().Uint64("order_id", o.ID).Uint64("product_id", it.ProductID).
						Msg("product no longer exists, skipping stock release")
					continue
				}
				return domain.AsStorage("release stock", err)
			}
			released = append(released, domain.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		if o.Transaction == nil {
			log.Warn().Uint64("order_id", o.ID).Msg("order has no transaction record, skipping payment reversal")
		} else {
			o.Transaction.Status = domain.CancellationPaymentStatus(o.Transaction.Status)
			if err := s.txns.UpdateStatus(ctx, o.Transaction); err != nil {
				return domain.AsStorage("update transaction", err)
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, domain.AsStorage("cancel order", err)
	}

	s.invalidate(ctx, order.ID)
	s.publish(domain.EventOrderCancelled, domain.OrderCancelledEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		PaymentStatus: order.PaymentStatus,
		Released:      released,
		CancelledAt:   time.Now(),
	})
	return order, nil
}
