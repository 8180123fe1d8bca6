package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	Hourly  Frequency = "HOURLY"
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY" // fixed nominal 30-day month
)

// Seconds returns the interval length of the frequency class, or 0 for an
// unknown class.
func (f Frequency) Seconds() int64 {
	switch f {
	case Hourly:
		return 3600
	case Daily:
		return 86400
	case Weekly:
		return 604800
	case Monthly:
		return 2592000
	}
	return 0
}

type TerminationReason string

const (
	Completed TerminationReason = "COMPLETED"
	Cancelled TerminationReason = "CANCELLED"
)

// Order is a standing instruction to periodically convert a fixed increment
// of the funding asset, subject to price bounds, until budget or time is
// exhausted. Only the engine mutates SwapsExecuted, LastExecutionTime and
// RemainingBalance; everything else is fixed at creation.
type Order struct {
	ID                string
	Owner             string
	TotalAmount       decimal.Decimal
	AmountPerSwap     decimal.Decimal
	Frequency         time.Duration
	LastExecutionTime time.Time
	CreatedAt         time.Time
	EndTime           time.Time
	MinPrice          decimal.Decimal // zero = unbounded
	MaxPrice          decimal.Decimal // zero = unbounded
	SwapsExecuted     int64
	TotalSwaps        int64
	RemainingBalance  decimal.Decimal
}

// DueAt reports whether the order is eligible for execution at now: the
// inter-execution interval has elapsed and the deadline has not passed.
func (o *Order) DueAt(now time.Time) bool {
	return !now.Before(o.LastExecutionTime.Add(o.Frequency)) && !now.After(o.EndTime)
}

// CompletedAt reports whether the order has nothing left to do after a
// successful execution observed at now.
func (o *Order) CompletedAt(now time.Time) bool {
	return o.SwapsExecuted >= o.TotalSwaps ||
		!now.Before(o.EndTime) ||
		o.RemainingBalance.LessThan(o.AmountPerSwap)
}

// PriceInBounds checks the min/max gate against an oracle reading. A zero
// bound is treated as absent.
func (o *Order) PriceInBounds(price decimal.Decimal) error {
	if !o.MinPrice.IsZero() && price.LessThan(o.MinPrice) {
		return ErrPriceBelowMinimum
	}
	if !o.MaxPrice.IsZero() && price.GreaterThan(o.MaxPrice) {
		return ErrPriceAboveMaximum
	}
	return nil
}
