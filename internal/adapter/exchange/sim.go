package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"dcaengine/internal/port"
)

var _ port.Exchange = (*Simulator)(nil)

// Simulator converts funding-asset input to target-asset output at the
// oracle's latest reading less a fixed spread, standing in for a real
// liquidity pool. The engine only books the reported output.
type Simulator struct {
	oracle    port.Oracle
	spreadBps int64
}

func NewSimulator(oracle port.Oracle, spreadBps int64) *Simulator {
	return &Simulator{oracle: oracle, spreadBps: spreadBps}
}

func (s *Simulator) Swap(ctx context.Context, amountIn decimal.Decimal) (decimal.Decimal, error) {
	if !amountIn.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive input: %s", amountIn)
	}
	quote, err := s.oracle.LatestPrice(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote: %w", err)
	}
	if !quote.Value.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price: %s", quote.Value)
	}
	out := amountIn.DivRound(quote.Value, 18)
	if s.spreadBps > 0 {
		factor := decimal.NewFromInt(10000 - s.spreadBps).Div(decimal.NewFromInt(10000))
		out = out.Mul(factor)
	}
	return out, nil
}
