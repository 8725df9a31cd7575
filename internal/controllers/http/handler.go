package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/infra"
	"marketplace-orders/internal/services"

	"github.com/gin-gonic/gin"
)

// OrderUseCase is the part of services.OrderService the handlers call.
type OrderUseCase interface {
	PlaceOrder(ctx context.Context, in services.PlaceOrderInput) (*domain.Order, bool, error)
	PlaceOrderFromCart(ctx context.Context, in services.PlaceOrderInput) (*domain.Order, bool, error)
	GetOrder(ctx context.Context, orderID, userID uint64) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uint64) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64, to domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uint64, to domain.PaymentStatus) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID, userID uint64) (*domain.Order, error)
}

var _ OrderUseCase = (*services.OrderService)(nil)

type Handler struct {
	service OrderUseCase
}

func NewHandler(s OrderUseCase) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	orders := r.Group("/orders", RequireUser())
	orders.POST("", h.CreateOrder)
	orders.POST("/checkout", h.Checkout)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PATCH("/:id/status", h.UpdateOrderStatus)
	orders.PATCH("/:id/payment-status", h.UpdatePaymentStatus)
	orders.PATCH("/:id/cancel", h.CancelOrder)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, replayed, err := h.service.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
		UserID:          userID(c),
		Items:           req.lineItems(),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		IdempotencyKey:  c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writePlaced(c, order, replayed)
}

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, replayed, err := h.service.PlaceOrderFromCart(c.Request.Context(), services.PlaceOrderInput{
		UserID:          userID(c),
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		IdempotencyKey:  c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writePlaced(c, order, replayed)
}

func writePlaced(c *gin.Context, order *domain.Order, replayed bool) {
	if replayed {
		c.JSON(http.StatusOK, OrderResponse{Message: "Order already placed", Order: order})
		return
	}
	c.JSON(http.StatusCreated, OrderResponse{Message: "Order placed successfully", Order: order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id, userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{Order: order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), id, domain.OrderStatus(req.OrderStatus))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{Message: "Order status updated successfully", Order: order})
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.service.UpdatePaymentStatus(c.Request.Context(), id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{Message: "Payment status updated successfully", Order: order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.service.CancelOrder(c.Request.Context(), id, userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{Message: "Order cancelled successfully", Order: order})
}

func orderID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "INVALID_ARGUMENT"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ARGUMENT"})
}

// writeError maps service errors onto status codes and stable error codes.
// Failures without a client-facing code are attached to the context for the
// request log and reported without detail.
func writeError(c *gin.Context, err error) {
	var (
		stockErr    *domain.InsufficientStockError
		notFoundErr *domain.ProductNotFoundError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "EMPTY_ORDER"})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidShippingAddress),
		errors.Is(err, domain.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_ARGUMENT"})
	case errors.As(err, &notFoundErr):
		id := notFoundErr.ProductID
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "PRODUCT_NOT_FOUND", ProductID: &id})
	case errors.As(err, &stockErr):
		id, available := stockErr.ProductID, stockErr.Available
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INSUFFICIENT_STOCK", ProductID: &id, Available: &available})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TRANSITION"})
	case errors.Is(err, infra.ErrCartUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "cart service unavailable", Code: "CART_UNAVAILABLE"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
	}
}
