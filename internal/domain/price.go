package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a single oracle reading: funding units per target unit.
type PriceQuote struct {
	Value decimal.Decimal
	AsOf  time.Time
}
