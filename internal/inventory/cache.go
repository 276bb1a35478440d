package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/shopcore-backend/pkg/logger"
)

// availabilityStore is the slice of the redis client the cache needs.
type availabilityStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
	StockAvailabilityKey(productID string) string
}

// RedisAvailabilityCache caches derived availability in redis. Cache failures
// degrade to a database read and are logged, never returned to the caller.
type RedisAvailabilityCache struct {
	store availabilityStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewRedisAvailabilityCache wraps a redis client as an AvailabilityCache.
func NewRedisAvailabilityCache(store availabilityStore, ttl time.Duration, logg *logger.Logger) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAvailabilityCache{store: store, ttl: ttl, logg: logg}
}

func (c *RedisAvailabilityCache) GetAvailability(ctx context.Context, productID uuid.UUID) (Availability, bool) {
	if c == nil || c.store == nil {
		return Availability{}, false
	}
	raw, ok, err := c.store.Lookup(ctx, c.store.StockAvailabilityKey(productID.String()))
	if err != nil {
		c.warn(ctx, productID, "availability cache read failed", err)
		return Availability{}, false
	}
	if !ok {
		return Availability{}, false
	}
	avail, err := decodeAvailability(raw)
	if err != nil {
		// A malformed entry is dropped so the next read repopulates it.
		_ = c.store.Del(ctx, c.store.StockAvailabilityKey(productID.String()))
		c.warn(ctx, productID, "availability cache entry malformed", err)
		return Availability{}, false
	}
	return avail, true
}

func (c *RedisAvailabilityCache) SetAvailability(ctx context.Context, productID uuid.UUID, avail Availability) {
	if c == nil || c.store == nil {
		return
	}
	key := c.store.StockAvailabilityKey(productID.String())
	if err := c.store.Set(ctx, key, encodeAvailability(avail), c.ttl); err != nil {
		c.warn(ctx, productID, "availability cache write failed", err)
	}
}

func (c *RedisAvailabilityCache) InvalidateAvailability(ctx context.Context, productID uuid.UUID) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Del(ctx, c.store.StockAvailabilityKey(productID.String())); err != nil {
		c.warn(ctx, productID, "availability cache invalidation failed", err)
	}
}

func (c *RedisAvailabilityCache) warn(ctx context.Context, productID uuid.UUID, msg string, err error) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"error":      err.Error(),
	})
	c.logg.Warn(ctx, msg)
}

func encodeAvailability(avail Availability) string {
	return fmt.Sprintf("%d|%t", avail.Quantity, avail.Tracked)
}

func decodeAvailability(raw string) (Availability, error) {
	qtyPart, trackedPart, found := strings.Cut(raw, "|")
	if !found {
		return Availability{}, fmt.Errorf("malformed availability entry %q", raw)
	}
	qty, err := strconv.Atoi(qtyPart)
	if err != nil {
		return Availability{}, fmt.Errorf("malformed availability quantity %q", raw)
	}
	tracked, err := strconv.ParseBool(trackedPart)
	if err != nil {
		return Availability{}, fmt.Errorf("malformed availability tracked flag %q", raw)
	}
	return Availability{Quantity: qty, Tracked: tracked}, nil
}
