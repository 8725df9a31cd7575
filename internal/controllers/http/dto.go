package http

import "marketplace-orders/internal/domain"

type OrderItemRequest struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

type UpdateStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

type OrderResponse struct {
	Message string        `json:"message,omitempty"`
	Order   *domain.Order `json:"order"`
}

type OrderListResponse struct {
	Orders []domain.Order `json:"orders"`
}

type ErrorResponse struct {
	Error     string  `json:"error"`
	Code      string  `json:"code"`
	ProductID *uint64 `json:"productId,omitempty"`
	Available *int    `json:"available,omitempty"`
}

func (r CreateOrderRequest) lineItems() []domain.LineItem {
	out := make([]domain.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, domain.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
