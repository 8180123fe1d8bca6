package exchange

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dcaengine/internal/domain"
)

type fixedOracle struct {
	price decimal.Decimal
	err   error
}

func (f *fixedOracle) LatestPrice(ctx context.Context) (domain.PriceQuote, error) {
	if f.err != nil {
		return domain.PriceQuote{}, f.err
	}
	return domain.PriceQuote{Value: f.price, AsOf: time.Now()}, nil
}

func TestSimulatorSwap(t *testing.T) {
	sim := NewSimulator(&fixedOracle{price: decimal.NewFromInt(1000)}, 0)

	out, err := sim.Swap(context.Background(), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !out.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("out = %s, want 0.05", out)
	}
}

func TestSimulatorSpread(t *testing.T) {
	sim := NewSimulator(&fixedOracle{price: decimal.NewFromInt(1000)}, 100) // 1%

	out, err := sim.Swap(context.Background(), decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if !out.Equal(decimal.RequireFromString("0.99")) {
		t.Fatalf("out = %s, want 0.99", out)
	}
}

func TestSimulatorFailures(t *testing.T) {
	if _, err := NewSimulator(&fixedOracle{price: decimal.NewFromInt(1000)}, 0).Swap(context.Background(), decimal.Zero); err == nil {
		t.Fatal("zero input accepted")
	}
	if _, err := NewSimulator(&fixedOracle{err: fmt.Errorf("offline")}, 0).Swap(context.Background(), decimal.NewFromInt(1)); err == nil {
		t.Fatal("oracle failure not propagated")
	}
}
