package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced               = "order.placed"
	EventOrderCancelled            = "order.cancelled"
	EventOrderStatusChanged        = "order.status_changed"
	EventOrderPaymentStatusChanged = "order.payment_status_changed"
)

type OrderPlacedEvent struct {
	OrderID       uint64          `json:"orderId"`
	UserID        uint64          `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Items         []LineItem      `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderCancelledEvent struct {
	OrderID       uint64        `json:"orderId"`
	UserID        uint64        `json:"userId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Released      []LineItem    `json:"released"`
	CancelledAt   time.Time     `json:"cancelledAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uint64    `json:"orderId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changedAt"`
}

func LineItemsOf(items []OrderItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
