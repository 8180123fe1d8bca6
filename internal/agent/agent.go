package agent

import (
	"context"
	"log/slog"
	"time"

	"dcaengine/internal/core"
	"dcaengine/internal/domain"
	"dcaengine/internal/port"

	"github.com/shopspring/decimal"
)

// Executor is the slice of the engine the agent drives.
type Executor interface {
	DueOrders(now time.Time) []string
	PreAuthorize(ctx context.Context, orderID string, now time.Time, price decimal.Decimal, agent string) error
	Execute(ctx context.Context, orderID string, now time.Time, price decimal.Decimal, agent string) (core.ExecutionResult, error)
}

// Agent is the trusted automation identity. It polls the due-order scanner
// on its own cadence and submits executions; the engine itself has no timer.
type Agent struct {
	Engine   Executor
	Oracle   port.Oracle
	ID       string
	Interval time.Duration
}

func (a *Agent) Run(ctx context.Context) {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		if err := a.TickOnce(ctx); err != nil {
			slog.Warn("agent tick failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// TickOnce attempts every currently-due order once, longest-waiting first.
// A rejection moves on to the next due order, so a persistently blocked
// order (say, a price band the market never enters) cannot hold up the
// rest; TooEarly and price-gate rejections resolve on a later poll.
func (a *Agent) TickOnce(ctx context.Context) error {
	quote, err := a.Oracle.LatestPrice(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, orderID := range a.Engine.DueOrders(now) {
		if err := a.Engine.PreAuthorize(ctx, orderID, now, quote.Value, a.ID); err != nil {
			a.logRejection(orderID, "preauthorize", err)
			continue
		}
		res, err := a.Engine.Execute(ctx, orderID, now, quote.Value, a.ID)
		if err != nil {
			a.logRejection(orderID, "execute", err)
			continue
		}
		slog.Info("order executed",
			slog.String("order_id", res.OrderID),
			slog.String("owner", res.Owner),
			slog.String("amount_in", res.AmountIn.String()),
			slog.String("amount_out", res.AmountOut.String()),
			slog.Bool("completed", res.Completed),
		)
	}
	return nil
}

func (a *Agent) logRejection(orderID, stage string, err error) {
	if domain.Retriable(err) {
		slog.Debug("order skipped", slog.String("order_id", orderID), slog.String("stage", stage), slog.Any("reason", err))
		return
	}
	slog.Warn("order rejected", slog.String("order_id", orderID), slog.String("stage", stage), slog.Any("error", err))
}
