package domain

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPlaced:     {OrderProcessing: true, OrderCancelled: true},
	OrderProcessing: {OrderShipped: true, OrderCancelled: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

var validPaymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:   {PaymentCompleted: true, PaymentFailed: true},
	PaymentFailed:    {PaymentPending: true},
	PaymentCompleted: {},
	PaymentRefunded:  {},
	PaymentCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	return validPaymentNext[from][to]
}

// CancellationPaymentStatus is the payment (and transaction) status an order
// moves to when it is cancelled.
func CancellationPaymentStatus(current PaymentStatus) PaymentStatus {
	if current == PaymentCompleted {
		return PaymentRefunded
	}
	return PaymentCancelled
}

// TransitionTo validates and applies an order status change. Cancelling also
// moves the payment status per CancellationPaymentStatus.
func (o *Order) TransitionTo(to OrderStatus) error {
	if !CanTransition(o.OrderStatus, to) {
		return &InvalidTransitionError{From: string(o.OrderStatus), To: string(to)}
	}
	o.OrderStatus = to
	if to == OrderCancelled {
		o.PaymentStatus = CancellationPaymentStatus(o.PaymentStatus)
	}
	return nil
}

func (o *Order) Cancel() error {
	return o.TransitionTo(OrderCancelled)
}

// SetPaymentStatus progresses the payment status of a live order.
func (o *Order) SetPaymentStatus(to PaymentStatus) error {
	if o.OrderStatus == OrderCancelled || !CanTransitionPayment(o.PaymentStatus, to) {
		return &InvalidTransitionError{From: string(o.PaymentStatus), To: string(to)}
	}
	o.PaymentStatus = to
	return nil
}
