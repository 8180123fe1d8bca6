package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

// PgRepo journals active orders in Postgres so the registry survives a
// restart.
type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO orders(id, owner, total_amount, amount_per_swap, frequency_seconds,
                   last_execution_time, created_at, end_time, min_price, max_price,
                   swaps_executed, total_swaps, remaining_balance)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  last_execution_time = EXCLUDED.last_execution_time,
  swaps_executed = EXCLUDED.swaps_executed,
  remaining_balance = EXCLUDED.remaining_balance
`, o.ID, o.Owner, o.TotalAmount, o.AmountPerSwap, int64(o.Frequency/time.Second),
		o.LastExecutionTime, o.CreatedAt, o.EndTime, o.MinPrice, o.MaxPrice,
		o.SwapsExecuted, o.TotalSwaps, o.RemainingBalance)
	return err
}

func (p *PgRepo) DeleteOrder(ctx context.Context, orderID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	return err
}

// LoadActiveOrders returns every journaled order.
func (p *PgRepo) LoadActiveOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, owner, total_amount, amount_per_swap, frequency_seconds,
       last_execution_time, created_at, end_time, min_price, max_price,
       swaps_executed, total_swaps, remaining_balance
FROM orders
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var o domain.Order
		var freqSeconds int64
		if err := rows.Scan(&o.ID, &o.Owner, &o.TotalAmount, &o.AmountPerSwap, &freqSeconds,
			&o.LastExecutionTime, &o.CreatedAt, &o.EndTime, &o.MinPrice, &o.MaxPrice,
			&o.SwapsExecuted, &o.TotalSwaps, &o.RemainingBalance); err != nil {
			return nil, err
		}
		o.Frequency = time.Duration(freqSeconds) * time.Second
		res = append(res, &o)
	}
	return res, rows.Err()
}
