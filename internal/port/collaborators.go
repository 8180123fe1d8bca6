package port

import (
	"context"

	"dcaengine/internal/domain"

	"github.com/shopspring/decimal"
)

// Custody moves the funding asset between user accounts and system custody.
// Both calls either fully succeed or fail; a failure aborts the invoking
// engine operation with no state change.
type Custody interface {
	TransferIn(ctx context.Context, from string, amount decimal.Decimal) error
	TransferOut(ctx context.Context, to string, amount decimal.Decimal) error
}

// Oracle supplies the latest price reading. Staleness checking is the
// caller's concern.
type Oracle interface {
	LatestPrice(ctx context.Context) (domain.PriceQuote, error)
}

// Exchange performs the actual asset conversion. The engine treats it as an
// opaque, possibly-failing call and never retries it; the reported output is
// used for bookkeeping only.
type Exchange interface {
	Swap(ctx context.Context, amountIn decimal.Decimal) (decimal.Decimal, error)
}

// Notifier receives lifecycle events. Delivery is fire-and-forget.
type Notifier interface {
	Publish(ev domain.Event)
}
