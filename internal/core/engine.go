package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

const secondsPerDay = 86400

// PairConfig fixes the one asset pair every order trades, set once at
// initialization.
type PairConfig struct {
	FundingAsset string
	TargetAsset  string
}

// CreateParams carries the user-supplied order parameters.
type CreateParams struct {
	Owner        string
	TotalAmount  decimal.Decimal
	Frequency    domain.Frequency
	DurationDays int64
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	FeePaid      decimal.Decimal
}

// ExecutionResult reports one completed execution cycle.
type ExecutionResult struct {
	OrderID   string
	Owner     string
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	Completed bool
}

// Engine implements the order lifecycle: creation, due-order scanning,
// gated execution and termination. Every operation runs under one mutex, so
// each externally-triggered action is a single all-or-nothing unit of work
// and no caller observes a partially-updated order. The in-memory store is
// authoritative; repository and cache writes are best-effort.
type Engine struct {
	repo     port.Repository
	cache    port.Cache
	custody  port.Custody
	exchange port.Exchange
	notifier port.Notifier

	mu            sync.Mutex
	store         *OrderStore
	admin         string
	agent         string
	fee           decimal.Decimal
	pair          PairConfig
	initialized   bool
	collectedFees decimal.Decimal

	now func() time.Time
}

func NewEngine(admin string, repo port.Repository, cache port.Cache, custody port.Custody, exchange port.Exchange, notifier port.Notifier) *Engine {
	return &Engine{
		repo:     repo,
		cache:    cache,
		custody:  custody,
		exchange: exchange,
		notifier: notifier,
		store:    NewOrderStore(),
		admin:    admin,
		now:      time.Now,
	}
}

// Initialize performs the one-time configuration of the trusted agent, the
// per-order fee and the asset pair. A second call fails.
func (e *Engine) Initialize(caller, agent string, fee decimal.Decimal, pair PairConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return domain.ErrUnauthorized
	}
	if e.initialized {
		return domain.ErrAlreadyInitialized
	}
	if agent == "" {
		return fmt.Errorf("%w: empty agent", domain.ErrInvalidConfiguration)
	}
	if pair.FundingAsset == "" || pair.TargetAsset == "" || pair.FundingAsset == pair.TargetAsset {
		return fmt.Errorf("%w: bad pair %q/%q", domain.ErrInvalidConfiguration, pair.FundingAsset, pair.TargetAsset)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%w: negative fee", domain.ErrInvalidConfiguration)
	}
	e.agent = agent
	e.fee = fee
	e.pair = pair
	e.initialized = true
	return nil
}

// SetAgent replaces the trusted automation agent identifier.
func (e *Engine) SetAgent(caller, agent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return domain.ErrUnauthorized
	}
	if agent == "" {
		return fmt.Errorf("%w: empty agent", domain.ErrInvalidConfiguration)
	}
	e.agent = agent
	return nil
}

// SetFee replaces the per-order fee collected at creation.
func (e *Engine) SetFee(caller string, fee decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.admin {
		return domain.ErrUnauthorized
	}
	if fee.IsNegative() {
		return fmt.Errorf("%w: negative fee", domain.ErrInvalidConfiguration)
	}
	e.fee = fee
	return nil
}

// RestoreFromRepo rebuilds the active registry from the order journal. Used
// on startup only.
func (e *Engine) RestoreFromRepo(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	orders, err := e.repo.LoadActiveOrders(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range orders {
		// An active order always holds at least one swap's worth; a row
		// below that is a terminated leftover whose refund was already
		// issued.
		if o.RemainingBalance.LessThan(o.AmountPerSwap) {
			slog.Warn("skipping terminated journal row", slog.String("order_id", o.ID))
			continue
		}
		e.store.Insert(o)
	}
	return nil
}

// CreateOrder validates the parameters, derives the schedule, pulls the
// budget (plus fee) into custody and registers the order. The custody
// transfer failing aborts the whole creation with no partial state.
func (e *Engine) CreateOrder(ctx context.Context, p CreateParams) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.Order{}, fmt.Errorf("%w: engine not initialized", domain.ErrInvalidConfiguration)
	}
	if p.Owner == "" {
		return domain.Order{}, fmt.Errorf("%w: empty owner", domain.ErrInvalidConfiguration)
	}
	if !p.TotalAmount.IsPositive() {
		return domain.Order{}, fmt.Errorf("%w: total amount must be positive", domain.ErrInvalidSchedule)
	}
	if p.DurationDays <= 0 {
		return domain.Order{}, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidSchedule)
	}
	freqSeconds := p.Frequency.Seconds()
	if freqSeconds == 0 {
		return domain.Order{}, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidSchedule, p.Frequency)
	}
	if p.MinPrice.IsNegative() || p.MaxPrice.IsNegative() {
		return domain.Order{}, fmt.Errorf("%w: negative price bound", domain.ErrInvalidSchedule)
	}
	if !p.MinPrice.IsZero() && !p.MaxPrice.IsZero() && p.MinPrice.GreaterThan(p.MaxPrice) {
		return domain.Order{}, fmt.Errorf("%w: min price above max price", domain.ErrInvalidSchedule)
	}
	if p.FeePaid.LessThan(e.fee) {
		return domain.Order{}, fmt.Errorf("%w: need %s", domain.ErrInsufficientFee, e.fee)
	}

	totalSwaps := p.DurationDays * secondsPerDay / freqSeconds
	if totalSwaps == 0 {
		return domain.Order{}, fmt.Errorf("%w: duration shorter than frequency", domain.ErrInvalidSchedule)
	}
	amountPerSwap, _ := p.TotalAmount.QuoRem(decimal.NewFromInt(totalSwaps), 0)
	if amountPerSwap.IsZero() {
		return domain.Order{}, fmt.Errorf("%w: amount per swap rounds to zero", domain.ErrInvalidSchedule)
	}

	if err := e.custody.TransferIn(ctx, p.Owner, p.TotalAmount.Add(p.FeePaid)); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrCustodyTransferFailed, err)
	}

	now := e.now()
	o := &domain.Order{
		ID:                uuid.NewString(),
		Owner:             p.Owner,
		TotalAmount:       p.TotalAmount,
		AmountPerSwap:     amountPerSwap,
		Frequency:         time.Duration(freqSeconds) * time.Second,
		LastExecutionTime: now,
		CreatedAt:         now,
		EndTime:           now.Add(time.Duration(p.DurationDays*secondsPerDay) * time.Second),
		MinPrice:          p.MinPrice,
		MaxPrice:          p.MaxPrice,
		SwapsExecuted:     0,
		TotalSwaps:        totalSwaps,
		RemainingBalance:  p.TotalAmount,
	}
	e.store.Insert(o)
	e.collectedFees = e.collectedFees.Add(p.FeePaid)

	if e.repo != nil {
		_ = e.repo.SaveOrder(ctx, o)
	}
	if e.cache != nil {
		_ = e.cache.SetOrder(ctx, o)
	}
	e.publish(domain.Event{
		Type:    domain.EventOrderCreated,
		OrderID: o.ID,
		Owner:   o.Owner,
		At:      now,
	})
	return *o, nil
}

// FindDue returns one order eligible for execution at now, preferring the
// order that has waited longest (earliest last execution time). Pure read.
func (e *Engine) FindDue(now time.Time) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var best *domain.Order
	for _, id := range e.store.IDs() {
		o, ok := e.store.Get(id)
		if !ok || !o.DueAt(now) {
			continue
		}
		if best == nil || o.LastExecutionTime.Before(best.LastExecutionTime) {
			best = o
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// DueOrders enumerates every order eligible at now, longest-waiting first,
// so a caller draining the list serves orders in the same fairness order
// FindDue would. Pure read.
func (e *Engine) DueOrders(now time.Time) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []*domain.Order
	for _, id := range e.store.IDs() {
		if o, ok := e.store.Get(id); ok && o.DueAt(now) {
			due = append(due, o)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].LastExecutionTime.Before(due[j].LastExecutionTime)
	})
	ids := make([]string, len(due))
	for i, o := range due {
		ids[i] = o.ID
	}
	return ids
}

// PreAuthorize is the pre-trade gate invoked by the agent before routing a
// swap through the exchange. It re-validates the price bounds and that the
// balance covers one swap plus the configured fee. Execute is the sole
// authoritative debit point, so this check never debits.
func (e *Engine) PreAuthorize(ctx context.Context, orderID string, now time.Time, price decimal.Decimal, agent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if agent != e.agent || e.agent == "" {
		return domain.ErrUnauthorized
	}
	o, ok := e.store.Get(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	if err := o.PriceInBounds(price); err != nil {
		return err
	}
	if o.RemainingBalance.LessThan(o.AmountPerSwap.Add(e.fee)) {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// Execute runs one execution cycle for a due order. Preconditions are
// checked in a fixed sequence, each failing with its own reason and no state
// change; the external swap failing also leaves the order untouched. On
// success the balance is debited exactly once, counters advance, and a
// completed order is terminated synchronously before Execute returns.
func (e *Engine) Execute(ctx context.Context, orderID string, now time.Time, price decimal.Decimal, agent string) (ExecutionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if agent != e.agent || e.agent == "" {
		return ExecutionResult{}, domain.ErrUnauthorized
	}
	o, ok := e.store.Get(orderID)
	if !ok {
		return ExecutionResult{}, domain.ErrOrderNotFound
	}
	if now.Before(o.LastExecutionTime.Add(o.Frequency)) {
		return ExecutionResult{}, domain.ErrTooEarly
	}
	if now.After(o.EndTime) {
		return ExecutionResult{}, domain.ErrPeriodEnded
	}
	if o.RemainingBalance.LessThan(o.AmountPerSwap) {
		return ExecutionResult{}, domain.ErrInsufficientBalance
	}
	if err := o.PriceInBounds(price); err != nil {
		return ExecutionResult{}, err
	}

	amountOut, err := e.exchange.Swap(ctx, o.AmountPerSwap)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("exchange swap: %w", err)
	}

	o.RemainingBalance = o.RemainingBalance.Sub(o.AmountPerSwap)
	o.SwapsExecuted++
	o.LastExecutionTime = now

	if e.repo != nil {
		_ = e.repo.SaveOrder(ctx, o)
	}
	if e.cache != nil {
		_ = e.cache.SetOrder(ctx, o)
	}
	e.publish(domain.Event{
		Type:      domain.EventOrderExecuted,
		OrderID:   o.ID,
		Owner:     o.Owner,
		AmountIn:  o.AmountPerSwap,
		AmountOut: amountOut,
		At:        now,
	})

	res := ExecutionResult{
		OrderID:   o.ID,
		Owner:     o.Owner,
		AmountIn:  o.AmountPerSwap,
		AmountOut: amountOut,
	}
	if o.CompletedAt(now) {
		if err := e.terminateLocked(ctx, o, domain.Completed, now); err != nil {
			return res, err
		}
		res.Completed = true
	}
	return res, nil
}

// Cancel terminates an order at the owner's request, regardless of due-ness.
func (e *Engine) Cancel(ctx context.Context, orderID, caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Owner != caller {
		return domain.ErrNotOrderOwner
	}
	return e.terminateLocked(ctx, o, domain.Cancelled, e.now())
}

// terminateLocked is the only path that deletes an order and the only path
// that refunds its unspent balance. The refund runs first: if custody
// rejects it the order stays active and the whole call fails, so removal
// and refund are either both observable or neither is.
func (e *Engine) terminateLocked(ctx context.Context, o *domain.Order, reason domain.TerminationReason, now time.Time) error {
	refund := o.RemainingBalance
	if refund.IsPositive() {
		if err := e.custody.TransferOut(ctx, o.Owner, refund); err != nil {
			return fmt.Errorf("%w: refund: %v", domain.ErrCustodyTransferFailed, err)
		}
	}
	o.RemainingBalance = decimal.Zero
	e.store.Remove(o.ID)

	if e.repo != nil {
		if err := e.repo.DeleteOrder(ctx, o.ID); err != nil {
			// The last journaled snapshot still carries the refunded
			// balance; overwrite it so a restart cannot resurrect the
			// order and refund twice.
			if serr := e.repo.SaveOrder(ctx, o); serr != nil {
				slog.Error("order journal cleanup failed",
					slog.String("order_id", o.ID),
					slog.Any("delete_error", err),
					slog.Any("save_error", serr),
				)
			}
		}
	}
	if e.cache != nil {
		_ = e.cache.Invalidate(ctx, o.ID)
	}

	ev := domain.Event{
		Type:    domain.EventOrderTerminated,
		OrderID: o.ID,
		Owner:   o.Owner,
		Reason:  reason,
		At:      now,
	}
	if reason == domain.Completed {
		ev.SwapsExecuted = o.SwapsExecuted
		ev.Refunded = refund
	}
	e.publish(ev)
	return nil
}

// GetOrder returns a snapshot of an active order straight from the
// authoritative store; cache entries are write-through for external readers
// and never served back here, so a stale entry cannot shadow fresh state.
// Terminated ids always report not found.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.store.Get(orderID)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Count()
}

func (e *Engine) Contains(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Contains(orderID)
}

// CollectedFees reports the fees accrued for the agent's benefit.
func (e *Engine) CollectedFees() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collectedFees
}

func (e *Engine) publish(ev domain.Event) {
	if e.notifier != nil {
		e.notifier.Publish(ev)
	}
}
