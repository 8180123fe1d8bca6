package port

import (
	"context"

	"dcaengine/internal/domain"
)

// Repository journals active orders so the in-memory registry can be rebuilt
// on startup. Writes are best-effort from the engine's perspective; the
// in-memory state is authoritative.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
	LoadActiveOrders(ctx context.Context) ([]*domain.Order, error)
}
