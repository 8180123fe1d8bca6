package port

import (
	"context"

	"dcaengine/internal/domain"
)

// Cache holds read-side order snapshots for the query surface.
type Cache interface {
	SetOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	Invalidate(ctx context.Context, orderID string) error
}
