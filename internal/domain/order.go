package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPlaced     OrderStatus = "Placed"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentRefunded  PaymentStatus = "Refunded"
	PaymentCancelled PaymentStatus = "Cancelled"
)

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "Cash on Delivery"
	UPI            PaymentMethod = "UPI"
	CreditCard     PaymentMethod = "Credit Card"
	DebitCard      PaymentMethod = "Debit Card"
	NetBanking     PaymentMethod = "Net Banking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case CashOnDelivery, UPI, CreditCard, DebitCard, NetBanking:
		return true
	}
	return false
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `json:"userId" gorm:"not null;index"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text;not null"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(32);not null"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(16);not null;default:'Pending'"`
	OrderStatus     OrderStatus     `json:"orderStatus" gorm:"type:varchar(16);not null;default:'Placed'"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Transaction     *Transaction    `json:"transaction,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem is immutable once written; Price is the product price at the
// moment the order was placed.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Product   *ProductSummary `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineItem is a requested (productId, quantity) pair, as taken from a cart
// snapshot or a checkout request.
type LineItem struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// StatusSnapshot is the pair of statuses a conditional status write expects
// to find in the store.
type StatusSnapshot struct {
	Order   OrderStatus
	Payment PaymentStatus
}

func (o *Order) Snapshot() StatusSnapshot {
	return StatusSnapshot{Order: o.OrderStatus, Payment: o.PaymentStatus}
}

func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
