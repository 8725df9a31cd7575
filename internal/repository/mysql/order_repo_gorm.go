package mysql

import (
	"context"
	"errors"

	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts the order header only. Items are written one by one with
// CreateItem so each line is paired with its stock reservation.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := conn(ctx, r.db).Omit(clause.Associations).Create(order)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("user_id", order.UserID).Msg("order insert failed")
		return result.Error
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(item).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

func (r *orderRepo) FindByIDForUser(ctx context.Context, id, userID uint64) (*domain.Order, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID))
}

// findOne returns nil, nil when no row matches.
func (r *orderRepo) findOne(q *gorm.DB) (*domain.Order, error) {
	var o domain.Order
	err := withDetails(q).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := withDetails(conn(ctx, r.db)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus writes both statuses only if the row still holds the expected
// pair, so two racing writers cannot both apply a change.
func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order, expected domain.StatusSnapshot) error {
	db := conn(ctx, r.db)
	now := db.NowFunc()
	res := db.Model(&domain.Order{}).
		Where("id = ? AND order_status = ? AND payment_status = ?", order.ID, expected.Order, expected.Payment).
		Updates(map[string]any{
			"order_status":   order.OrderStatus,
			"payment_status": order.PaymentStatus,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrStaleOrder
	}
	order.UpdatedAt = now
	return nil
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Transaction")
}
