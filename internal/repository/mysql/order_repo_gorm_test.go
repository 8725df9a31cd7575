package mysql

import (
	"context"
	"errors"
	"testing"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"
	"marketplace-orders/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(userID uint64, total string) *domain.Order {
	return &domain.Order{
		UserID:          userID,
		TotalAmount:     decimal.RequireFromString(total),
		ShippingAddress: "Hostel B, Room 12",
		PaymentMethod:   domain.CashOnDelivery,
		PaymentStatus:   domain.PaymentPending,
		OrderStatus:     domain.OrderPlaced,
	}
}

func TestOrderRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)
	txns := NewTransactionRepository(db)
	p := testutil.SeedProduct(t, db, "Kettle", "9.99", 3)

	o := newOrder(7, "19.98")
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)
	require.NoError(t, repo.CreateItem(ctx, &domain.OrderItem{OrderID: o.ID, ProductID: p.ID, Quantity: 2, Price: p.Price}))
	require.NoError(t, txns.Create(ctx, &domain.Transaction{
		OrderID: o.ID, UserID: 7, Amount: o.TotalAmount, PaymentMethod: o.PaymentMethod, Status: domain.PaymentPending,
	}))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, p.Price.Equal(got.Items[0].Price))
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Kettle", got.Items[0].Product.Title)
	require.NotNil(t, got.Transaction)
	assert.Equal(t, domain.PaymentPending, got.Transaction.Status)

	mine, err := repo.FindByIDForUser(ctx, o.ID, 7)
	require.NoError(t, err)
	assert.NotNil(t, mine)

	theirs, err := repo.FindByIDForUser(ctx, o.ID, 8)
	require.NoError(t, err)
	assert.Nil(t, theirs)

	missing, err := repo.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepo_FindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testutil.NewDB(t))

	first := newOrder(3, "1.00")
	second := newOrder(3, "2.00")
	other := newOrder(4, "3.00")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.FindByUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	none, err := repo.FindByUser(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestOrderRepo_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testutil.NewDB(t))

	o := newOrder(1, "5.00")
	require.NoError(t, repo.Create(ctx, o))

	prev := o.Snapshot()
	require.NoError(t, o.Cancel())
	require.NoError(t, repo.UpdateStatus(ctx, o, prev))

	// a second writer that read the same pre-cancel state loses
	stale := *o
	err := repo.UpdateStatus(ctx, &stale, prev)
	assert.True(t, errors.Is(err, repository.ErrStaleOrder))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, got.OrderStatus)
	assert.Equal(t, domain.PaymentCancelled, got.PaymentStatus)
}

func TestTransactionRepo_FindAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(testutil.NewDB(t))

	missing, err := repo.FindByOrderID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	txn := &domain.Transaction{OrderID: 1, UserID: 2, Amount: decimal.NewFromInt(10), PaymentMethod: domain.UPI, Status: domain.PaymentCompleted}
	require.NoError(t, repo.Create(ctx, txn))

	txn.Status = domain.PaymentRefunded
	require.NoError(t, repo.UpdateStatus(ctx, txn))

	got, err := repo.FindByOrderID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.PaymentRefunded, got.Status)
}

func TestTransactor_RollsBackAndJoins(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tx := NewTransactor(db)
	repo := NewOrderRepository(db)
	ledger := NewInventoryLedger(db)
	p := testutil.SeedProduct(t, db, "Lamp", "4.00", 2)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := ledger.Reserve(ctx, p.ID, 2); err != nil {
			return err
		}
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := repo.Create(ctx, newOrder(1, "8.00")); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	got := testutil.LoadProduct(t, db, p.ID)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, domain.ProductActive, got.Status)

	orders, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
