package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the financial record of an order, one per order.
type Transaction struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID       uint64          `json:"orderId" gorm:"not null;uniqueIndex"`
	UserID        uint64          `json:"userId" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(32);not null"`
	Reference     *string         `json:"reference,omitempty" gorm:"type:varchar(128)"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(16);not null;default:'Pending'"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}
