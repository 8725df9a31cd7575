package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marketplace-orders/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

func orderKey(id uint64) string {
	return fmt.Sprintf("order:%d", id)
}

func idempotencyKey(userID uint64, key string) string {
	return fmt.Sprintf("idem:order:%d:%s", userID, key)
}

// OrderCache is a cache-aside layer over order reads plus the idempotency
// key store. Redis errors are logged and treated as misses.
type OrderCache struct {
	rdb         *redis.Client
	ttl         time.Duration
	idemTTL     time.Duration
	loadTimeout time.Duration
	redelete    time.Duration
	after       func(d time.Duration, f func())
	group       singleflight.Group
}

const defaultLoadTimeout = 5 * time.Second

func NewOrderCache(rdb *redis.Client, ttl, idemTTL time.Duration) *OrderCache {
	return &OrderCache{
		rdb:         rdb,
		ttl:         ttl,
		idemTTL:     idemTTL,
		loadTimeout: defaultLoadTimeout,
		after:       func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// SetRedeleteDelay makes Invalidate delete the key a second time after d, so
// a load that read the row before the write committed cannot leave a stale
// entry behind. Zero disables the second delete.
func (c *OrderCache) SetRedeleteDelay(d time.Duration) {
	c.redelete = d
}

// GetOrLoad returns the cached order or calls load once for all concurrent
// misses of the same id. A nil order from load is not cached.
//
// The shared load is detached from the caller that started it and bounded by
// its own timeout, so one cancelled request does not fail the others waiting
// on it.
func (c *OrderCache) GetOrLoad(ctx context.Context, id uint64, load func(ctx context.Context) (*domain.Order, error)) (*domain.Order, error) {
	key := orderKey(id)
	if o, ok := c.get(ctx, key); ok {
		return o, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		if o, ok := c.get(lctx, key); ok {
			return o, nil
		}
		o, err := load(lctx)
		if err != nil || o == nil {
			return o, err
		}
		c.set(lctx, key, o)
		return o, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	o, _ := res.Val.(*domain.Order)
	if o == nil {
		return nil, nil
	}
	// callers sharing a singleflight result must not share the pointer
	cp := *o
	return &cp, nil
}

func (c *OrderCache) get(ctx context.Context, key string) (*domain.Order, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("order cache read failed")
		}
		return nil, false
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("order cache entry corrupt")
		return nil, false
	}
	return &o, true
}

func (c *OrderCache) set(ctx context.Context, key string, o *domain.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("order cache write failed")
	}
}

func (c *OrderCache) Invalidate(ctx context.Context, id uint64) {
	c.del(ctx, id)
	if c.redelete > 0 {
		c.after(c.redelete, func() {
			dctx, cancel := context.WithTimeout(context.Background(), c.loadTimeout)
			defer cancel()
			c.del(dctx, id)
		})
	}
}

func (c *OrderCache) del(ctx context.Context, id uint64) {
	if err := c.rdb.Del(ctx, orderKey(id)).Err(); err != nil {
		log.Warn().Err(err).Uint64("order_id", id).Msg("order cache invalidation failed")
	}
}

// LookupIdempotency returns the order previously placed under key by userID.
func (c *OrderCache) LookupIdempotency(ctx context.Context, userID uint64, key string) (uint64, bool) {
	raw, err := c.rdb.Get(ctx, idempotencyKey(userID, key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Uint64("user_id", userID).Msg("idempotency lookup failed")
		}
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RememberIdempotency records orderID under key. The first writer wins.
func (c *OrderCache) RememberIdempotency(ctx context.Context, userID uint64, key string, orderID uint64) {
	err := c.rdb.SetNX(ctx, idempotencyKey(userID, key), strconv.FormatUint(orderID, 10), c.idemTTL).Err()
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Uint64("order_id", orderID).Msg("idempotency write failed")
	}
}
