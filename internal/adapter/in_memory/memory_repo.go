package in_memory

import (
	"context"
	"sync"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo is an order journal backed by a map. Used in tests and when no
// database is configured.
type MemoryRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orders: make(map[string]*domain.Order)}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *MemoryRepo) DeleteOrder(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderID)
	return nil
}

func (r *MemoryRepo) LoadActiveOrders(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		res = append(res, &cp)
	}
	return res, nil
}
