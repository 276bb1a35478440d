package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mapStore struct {
	values map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{values: map[string]string{}}
}

func (m *mapStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *mapStore) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *mapStore) StockAvailabilityKey(productID string) string {
	return "sc:stock_avail:" + productID
}

func TestAvailabilityCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewRedisAvailabilityCache(newMapStore(), time.Minute, nil)
	ctx := context.Background()
	productID := uuid.New()

	if _, ok := cache.GetAvailability(ctx, productID); ok {
		t.Fatal("expected miss before set")
	}

	cache.SetAvailability(ctx, productID, Availability{Quantity: 12, Tracked: true})
	avail, ok := cache.GetAvailability(ctx, productID)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if avail.Quantity != 12 || !avail.Tracked {
		t.Fatalf("unexpected availability %+v", avail)
	}

	cache.InvalidateAvailability(ctx, productID)
	if _, ok := cache.GetAvailability(ctx, productID); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestAvailabilityCacheMalformedEntry(t *testing.T) {
	t.Parallel()

	store := newMapStore()
	cache := NewRedisAvailabilityCache(store, time.Minute, nil)
	ctx := context.Background()
	productID := uuid.New()

	store.values[store.StockAvailabilityKey(productID.String())] = "not-a-number|maybe"
	if _, ok := cache.GetAvailability(ctx, productID); ok {
		t.Fatal("expected malformed entry to be treated as a miss")
	}
	if _, exists := store.values[store.StockAvailabilityKey(productID.String())]; exists {
		t.Fatal("expected malformed entry to be dropped")
	}
}

func TestAvailabilityCacheNilBacking(t *testing.T) {
	t.Parallel()

	var cache *RedisAvailabilityCache
	ctx := context.Background()
	productID := uuid.New()

	cache.SetAvailability(ctx, productID, Availability{Quantity: 1, Tracked: true})
	cache.InvalidateAvailability(ctx, productID)
	if _, ok := cache.GetAvailability(ctx, productID); ok {
		t.Fatal("nil cache must always miss")
	}
}

func TestDecodeAvailability(t *testing.T) {
	t.Parallel()

	avail, err := decodeAvailability("5|false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.Quantity != 5 || avail.Tracked {
		t.Fatalf("unexpected availability %+v", avail)
	}

	for _, raw := range []string{"", "5", "x|true", "5|banana"} {
		if _, err := decodeAvailability(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
