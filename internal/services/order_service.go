package services

import (
	"context"
	"sync"
	"time"

	"marketplace-orders/internal/cache"
	"marketplace-orders/internal/domain"
	"marketplace-orders/internal/infra"
	rabbit "marketplace-orders/internal/infra/rabbitmq"
	"marketplace-orders/internal/repository"

	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

type OrderService struct {
	tx        repository.Transactor
	inventory repository.InventoryLedger
	orders    repository.OrderRepository
	txns      repository.TransactionRepository
	publisher rabbit.PublisherInterface
	cache     *cache.OrderCache
	cart      infra.CartClientInterface

	inflight sync.WaitGroup
}

// NewOrderService wires the orchestrators. pub may be nil, in which case no
// events are published.
func NewOrderService(
	tx repository.Transactor,
	inventory repository.InventoryLedger,
	orders repository.OrderRepository,
	txns repository.TransactionRepository,
	pub rabbit.PublisherInterface,
) *OrderService {
	return &OrderService{
		tx:        tx,
		inventory: inventory,
		orders:    orders,
		txns:      txns,
		publisher: pub,
	}
}

func (s *OrderService) SetOrderCache(c *cache.OrderCache) {
	s.cache = c
}

func (s *OrderService) SetCartClient(c infra.CartClientInterface) {
	s.cart = c
}

// GetOrder returns the order if it belongs to userID.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uint64) (*domain.Order, error) {
	var (
		o   *domain.Order
		err error
	)
	if s.cache != nil {
		o, err = s.cache.GetOrLoad(ctx, orderID, func(ctx context.Context) (*domain.Order, error) {
			return s.orders.FindByID(ctx, orderID)
		})
	} else {
		o, err = s.orders.FindByIDForUser(ctx, orderID, userID)
	}
	if err != nil {
		return nil, domain.AsStorage("load order", err)
	}
	if o == nil || o.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint64) ([]domain.Order, error) {
	out, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, domain.AsStorage("list orders", err)
	}
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}

func (s *OrderService) invalidate(ctx context.Context, orderID uint64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, orderID)
	}
}

// publish fires evt in the background once the unit of work has committed.
// Failures are logged only.
func (s *OrderService) publish(pattern string, evt any) {
	if s.publisher == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			log.Error().Err(err).Str("pattern", pattern).Msg("failed to publish event")
			return
		}
		log.Debug().Str("pattern", pattern).Msg("event published")
	}()
}

// Wait blocks until background event publishing has finished.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}
