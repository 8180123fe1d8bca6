package in_memory

import (
	"context"
	"sync"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

var _ port.Cache = (*Cache)(nil)

// Cache is a map-backed stand-in for the redis order cache.
type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.Order
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.Order)}
}

func (c *Cache) SetOrder(ctx context.Context, o *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *o
	c.store[o.ID] = &cp
	return nil
}

func (c *Cache) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.store[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (c *Cache) Invalidate(ctx context.Context, orderID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, orderID)
	return nil
}
