package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated    EventType = "ORDER_CREATED"
	EventOrderExecuted   EventType = "ORDER_EXECUTED"
	EventOrderTerminated EventType = "ORDER_TERMINATED"
)

// Event is a lifecycle notification. Fields beyond OrderID/Owner are
// populated per type: AmountIn/AmountOut for executions, SwapsExecuted and
// Refunded for completed terminations.
type Event struct {
	Type          EventType
	OrderID       string
	Owner         string
	AmountIn      decimal.Decimal
	AmountOut     decimal.Decimal
	SwapsExecuted int64
	Refunded      decimal.Decimal
	Reason        TerminationReason
	At            time.Time
}
