package services

import (
	"context"
	"errors"
	"time"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"

	"github.com/rs/zerolog/log"
)

// UpdateOrderStatus moves an order along the fulfilment path. Cancellation is
// refused here because it has to go through CancelOrder to restore stock.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint64, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, domain.AsStorage("load order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}

	from := o.OrderStatus
	if to == domain.OrderCancelled {
		return nil, &domain.InvalidTransitionError{From: string(from), To: string(to)}
	}

	prev := o.Snapshot()
	if err := o.TransitionTo(to); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o, prev); err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			return nil, &domain.InvalidTransitionError{From: string(from), To: string(to)}
		}
		return nil, domain.AsStorage("update order status", err)
	}

	s.invalidate(ctx, o.ID)
	s.publish(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   o.ID,
		From:      string(from),
		To:        string(to),
		ChangedAt: time.Now(),
	})
	return o, nil
}

// UpdatePaymentStatus records payment progress on a live order and mirrors it
// onto the order's transaction.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint64, to domain.PaymentStatus) (*domain.Order, error) {
	var (
		order *domain.Order
		from  domain.PaymentStatus
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return domain.AsStorage("load order", err)
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}

		prev := o.Snapshot()
		from = prev.Payment
		if err := o.SetPaymentStatus(to); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, o, prev); err != nil {
			if errors.Is(err, repository.ErrStaleOrder) {
				return &domain.InvalidTransitionError{From: string(from), To: string(to)}
			}
			return domain.AsStorage("update payment status", err)
		}

		if o.Transaction == nil {
			log.Warn().Uint64("order_id", o.ID).Msg("order has no transaction record, payment status not mirrored")
		} else {
			o.Transaction.Status = to
			if err := s.txns.UpdateStatus(ctx, o.Transaction); err != nil {
				return domain.AsStorage("update transaction", err)
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, domain.AsStorage("update payment status", err)
	}

	s.invalidate(ctx, order.ID)
	s.publish(domain.EventOrderPaymentStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		From:      string(from),
		To:        string(to),
		ChangedAt: time.Now(),
	})
	return order, nil
}
