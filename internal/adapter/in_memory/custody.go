package in_memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"dcaengine/internal/port"
)

var _ port.Custody = (*Ledger)(nil)

// Ledger is an in-memory funds-custody collaborator: external account
// balances plus one system custody pool. Transfers are atomic and fail
// without effect when the source side cannot cover the amount.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]decimal.Decimal
	custody  decimal.Decimal
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]decimal.Decimal)}
}

// Deposit credits an external account. This stands in for funds arriving
// from outside the system.
func (l *Ledger) Deposit(account string, amount decimal.Decimal) error {
	if account == "" || !amount.IsPositive() {
		return fmt.Errorf("bad deposit: account %q amount %s", account, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[account] = l.accounts[account].Add(amount)
	return nil
}

func (l *Ledger) TransferIn(ctx context.Context, from string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.accounts[from]
	if bal.LessThan(amount) {
		return fmt.Errorf("account %s holds %s, need %s", from, bal, amount)
	}
	l.accounts[from] = bal.Sub(amount)
	l.custody = l.custody.Add(amount)
	return nil
}

func (l *Ledger) TransferOut(ctx context.Context, to string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.custody.LessThan(amount) {
		return fmt.Errorf("custody holds %s, need %s", l.custody, amount)
	}
	l.custody = l.custody.Sub(amount)
	l.accounts[to] = l.accounts[to].Add(amount)
	return nil
}

// Balance reports an external account balance.
func (l *Ledger) Balance(account string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[account]
}

// CustodyBalance reports the system pool.
func (l *Ledger) CustodyBalance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.custody
}
