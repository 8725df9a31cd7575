package services

import (
	"context"
	"testing"
	"time"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/mocks"
	"marketplace-orders/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	TestUserID    = uint64(7)
	TestOrderID   = uint64(10)
	TestAddress   = "Hostel B, Room 12"
	TestProductA  = uint64(1)
	TestProductB  = uint64(2)
	TestPriceA    = "12.50"
	TestPriceB    = "3.00"
	TestStockA    = 3
	TestStockB    = 10
	TestSellerID  = uint64(99)
	TestTitleA    = "Engineering Graphics set"
	TestTitleB    = "Lab coat"
	TestTxnRecord = uint64(55)
)

type serviceMocks struct {
	tx        *mocks.MockTransactor
	inventory *mocks.MockInventoryLedger
	orders    *mocks.MockOrderRepository
	txns      *mocks.MockTransactionRepository
	publisher *mocks.MockPublisher
}

func newMockedService() (*OrderService, *serviceMocks) {
	m := &serviceMocks{
		tx:        new(mocks.MockTransactor),
		inventory: new(mocks.MockInventoryLedger),
		orders:    new(mocks.MockOrderRepository),
		txns:      new(mocks.MockTransactionRepository),
		publisher: new(mocks.MockPublisher),
	}
	return NewOrderService(m.tx, m.inventory, m.orders, m.txns, m.publisher), m
}

func (m *serviceMocks) assertAll(t *testing.T) {
	m.tx.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.txns.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func CreateMockProduct(id uint64, title, price string, stock int) domain.Product {
	return domain.Product{
		ID:       id,
		SellerID: TestSellerID,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Status:   domain.ProductActive,
	}
}

// CreateMockOrder builds a two-line order with its transaction.
func CreateMockOrder(id uint64, status domain.OrderStatus, payment domain.PaymentStatus) *domain.Order {
	items := []domain.OrderItem{
		{ID: 1, OrderID: id, ProductID: TestProductA, Quantity: 2, Price: decimal.RequireFromString(TestPriceA)},
		{ID: 2, OrderID: id, ProductID: TestProductB, Quantity: 1, Price: decimal.RequireFromString(TestPriceB)},
	}
	total := domain.SumItems(items)
	return &domain.Order{
		ID:              id,
		UserID:          TestUserID,
		TotalAmount:     total,
		ShippingAddress: TestAddress,
		PaymentMethod:   domain.UPI,
		PaymentStatus:   payment,
		OrderStatus:     status,
		Items:           items,
		Transaction: &domain.Transaction{
			ID:            TestTxnRecord,
			OrderID:       id,
			UserID:        TestUserID,
			Amount:        total,
			PaymentMethod: domain.UPI,
			Status:        payment,
		},
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

// failingTransactions fails Create so tests can break checkout at its last step.
type failingTransactions struct {
	repository.TransactionRepository
	err error
}

func (f failingTransactions) Create(ctx context.Context, txn *domain.Transaction) error {
	return f.err
}
