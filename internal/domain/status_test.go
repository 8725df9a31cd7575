package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderPlaced, OrderProcessing, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderPlaced, OrderCancelled, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderCancelled, false},
		{OrderCancelled, OrderPlaced, false},
		{OrderDelivered, OrderShipped, false},
		{OrderPlaced, OrderShipped, false},
		{OrderPlaced, OrderPlaced, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrder_Cancel(t *testing.T) {
	tests := []struct {
		name        string
		status      OrderStatus
		payment     PaymentStatus
		wantErr     bool
		wantPayment PaymentStatus
	}{
		{name: "placed and paid is refunded", status: OrderPlaced, payment: PaymentCompleted, wantPayment: PaymentRefunded},
		{name: "placed and pending is cancelled", status: OrderPlaced, payment: PaymentPending, wantPayment: PaymentCancelled},
		{name: "processing and failed is cancelled", status: OrderProcessing, payment: PaymentFailed, wantPayment: PaymentCancelled},
		{name: "shipped cannot cancel", status: OrderShipped, payment: PaymentCompleted, wantErr: true},
		{name: "delivered cannot cancel", status: OrderDelivered, payment: PaymentCompleted, wantErr: true},
		{name: "already cancelled", status: OrderCancelled, payment: PaymentCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{OrderStatus: tt.status, PaymentStatus: tt.payment}
			err := o.Cancel()

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				var te *InvalidTransitionError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, string(tt.status), te.From)
				assert.Equal(t, string(OrderCancelled), te.To)
				assert.Equal(t, tt.status, o.OrderStatus)
				assert.Equal(t, tt.payment, o.PaymentStatus)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, OrderCancelled, o.OrderStatus)
			assert.Equal(t, tt.wantPayment, o.PaymentStatus)
		})
	}
}

func TestOrder_SetPaymentStatus(t *testing.T) {
	o := &Order{OrderStatus: OrderPlaced, PaymentStatus: PaymentPending}
	require.NoError(t, o.SetPaymentStatus(PaymentFailed))
	require.NoError(t, o.SetPaymentStatus(PaymentPending))
	require.NoError(t, o.SetPaymentStatus(PaymentCompleted))

	err := o.SetPaymentStatus(PaymentPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PaymentCompleted, o.PaymentStatus)

	cancelled := &Order{OrderStatus: OrderCancelled, PaymentStatus: PaymentPending}
	assert.ErrorIs(t, cancelled.SetPaymentStatus(PaymentCompleted), ErrInvalidTransition)
}

func TestSumItems(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, Price: decimal.RequireFromString("12.50")},
		{Quantity: 1, Price: decimal.RequireFromString("0.99")},
	}
	assert.True(t, decimal.RequireFromString("25.99").Equal(SumItems(items)))
	assert.True(t, decimal.Zero.Equal(SumItems(nil)))
}

func TestAsStorage(t *testing.T) {
	base := errors.New("connection reset")

	err := AsStorage("create order", base)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "create order")

	assert.Same(t, err, AsStorage("outer", err))

	stock := &InsufficientStockError{ProductID: 1, Requested: 2, Available: 1}
	assert.Same(t, error(stock), AsStorage("reserve", stock))
	assert.False(t, errors.Is(AsStorage("reserve", stock), ErrStorage))

	assert.NoError(t, AsStorage("noop", nil))
}

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{CashOnDelivery, UPI, CreditCard, DebitCard, NetBanking} {
		assert.True(t, m.Valid(), m)
	}
	assert.False(t, PaymentMethod("Bitcoin").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
