package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/homechef-inc/mealsub/internal/domain/order"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
)

const (
	maxSlotCapacityCacheSize = 4096
	// DefaultSlotCapacityTTL bounds how stale a limit changed on another
	// instance can be. Upserts only invalidate the local process.
	DefaultSlotCapacityTTL = 10 * time.Second
)

// SlotCapacityCache keeps vendor slot limits in memory. Seats are never
// cached; they pass straight through to the store.
type SlotCapacityCache struct {
	order.CapacityRepository
	limits *expirable.LRU[string, order.SlotCapacity]
}

func NewSlotCapacityCache(inner order.CapacityRepository, ttl time.Duration) *SlotCapacityCache {
	if ttl <= 0 {
		ttl = DefaultSlotCapacityTTL
	}
	return &SlotCapacityCache{
		CapacityRepository: inner,
		limits:             expirable.NewLRU[string, order.SlotCapacity](maxSlotCapacityCacheSize, nil, ttl),
	}
}

var _ order.CapacityRepository = (*SlotCapacityCache)(nil)

func slotKey(vendorID uint, slot vo.Slot) string {
	return fmt.Sprintf("%d:%s", vendorID, slot)
}

func (c *SlotCapacityCache) GetSlotCapacity(ctx context.Context, vendorID uint, slot vo.Slot) (*order.SlotCapacity, error) {
	key := slotKey(vendorID, slot)
	if cached, ok := c.limits.Get(key); ok {
		return &cached, nil
	}

	capacity, err := c.CapacityRepository.GetSlotCapacity(ctx, vendorID, slot)
	if err != nil {
		return nil, err
	}
	c.limits.Add(key, *capacity)
	return capacity, nil
}

func (c *SlotCapacityCache) UpsertSlotCapacity(ctx context.Context, capacity order.SlotCapacity) error {
	if err := c.CapacityRepository.UpsertSlotCapacity(ctx, capacity); err != nil {
		return err
	}
	c.limits.Remove(slotKey(capacity.VendorID, capacity.Slot))
	return nil
}
