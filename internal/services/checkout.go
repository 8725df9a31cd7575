package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/infra"
)

type PlaceOrderInput struct {
	UserID          uint64
	Items           []domain.LineItem
	ShippingAddress string
	PaymentMethod   domain.PaymentMethod
	IdempotencyKey  string
}

// normalize validates the request and merges repeated product lines, keeping
// the position of the first occurrence.
func (in PlaceOrderInput) normalize() (PlaceOrderInput, error) {
	if len(in.Items) == 0 {
		return in, domain.ErrEmptyOrder
	}

	merged := make([]domain.LineItem, 0, len(in.Items))
	pos := make(map[uint64]int, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return in, fmt.Errorf("%w: product %d has quantity %d", domain.ErrInvalidQuantity, it.ProductID, it.Quantity)
		}
		if i, ok := pos[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		pos[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	in.Items = merged

	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if in.ShippingAddress == "" {
		return in, domain.ErrInvalidShippingAddress
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.CashOnDelivery
	}
	if !in.PaymentMethod.Valid() {
		return in, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, in.PaymentMethod)
	}
	return in, nil
}

// PlaceOrder creates the order, its items, the stock reservations and the
// payment transaction as one unit of work. The bool result reports an
// idempotent replay of an earlier placement.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, bool, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey != "" && s.cache != nil {
		if id, ok := s.cache.LookupIdempotency(ctx, in.UserID, in.IdempotencyKey); ok {
			prev, err := s.GetOrder(ctx, id, in.UserID)
			if err == nil {
				return prev, true, nil
			}
			if !errors.Is(err, domain.ErrOrderNotFound) {
				return nil, false, err
			}
		}
	}

	var order *domain.Order
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.placeOrder(ctx, in)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, false, domain.AsStorage("place order", err)
	}

	if in.IdempotencyKey != "" && s.cache != nil {
		s.cache.RememberIdempotency(ctx, in.UserID, in.IdempotencyKey, order.ID)
	}
	s.publish(domain.EventOrderPlaced, domain.OrderPlacedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Items:         domain.LineItemsOf(order.Items),
		CreatedAt:     order.CreatedAt,
	})
	return order, false, nil
}

func (s *OrderService) placeOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	ids := make([]uint64, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.inventory.FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.AsStorage("load products", err)
	}
	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range in.Items {
		if _, ok := byID[it.ProductID]; !ok {
			return nil, &domain.ProductNotFoundError{ProductID: it.ProductID}
		}
	}
	for _, it := range in.Items {
		if p := byID[it.ProductID]; p.Stock < it.Quantity {
			return nil, &domain.InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Stock}
		}
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p := byID[it.ProductID]
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
			Product:   &domain.ProductSummary{ID: p.ID, SellerID: p.SellerID, Title: p.Title, Price: p.Price},
		})
	}

	order := &domain.Order{
		UserID:          in.UserID,
		TotalAmount:     domain.SumItems(items),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		OrderStatus:     domain.OrderPlaced,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, domain.AsStorage("create order", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := s.orders.CreateItem(ctx, &items[i]); err != nil {
			return nil, domain.AsStorage("create order item", err)
		}
		if _, err := s.inventory.Reserve(ctx, items[i].ProductID, items[i].Quantity); err != nil {
			return nil, domain.AsStorage("reserve stock", err)
		}
	}

	txn := &domain.Transaction{
		OrderID:       order.ID,
		UserID:        in.UserID,
		Amount:        order.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.PaymentPending,
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, domain.AsStorage("create transaction", err)
	}

	order.Items = items
	order.Transaction = txn
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	return order, nil
}

// PlaceOrderFromCart places an order for the caller's current cart snapshot.
// The cart itself is left untouched.
func (s *OrderService) PlaceOrderFromCart(ctx context.Context, in PlaceOrderInput) (*domain.Order, bool, error) {
	if s.cart == nil {
		return nil, false, fmt.Errorf("%w: no cart client configured", infra.ErrCartUnavailable)
	}
	items, err := s.cart.GetCart(ctx, in.UserID)
	if err != nil {
		return nil, false, err
	}
	in.Items = items
	return s.PlaceOrder(ctx, in)
}
