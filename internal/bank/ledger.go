package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jask/lovebank/internal/database"
	"github.com/jask/lovebank/internal/database/repository"
)

// Ledger performs all balance mutations. Credit and Debit are atomic
// read-modify-write transactions serialized per account, so the
// non-negativity invariant holds at every observation point.
type Ledger struct {
	db       *sql.DB
	accounts *repository.AccountRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedger(db *sql.DB, accounts *repository.AccountRepo) *Ledger {
	return &Ledger{db: db, accounts: accounts, locks: make(map[string]*sync.Mutex)}
}

// lock returns the mutex for accountID, creating it on first use.
// Locks are never removed; the account set is tiny and append-only.
func (l *Ledger) lock(accountID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}

// Ensure creates the account on first interaction.
func (l *Ledger) Ensure(ctx context.Context, accountID, displayName string) error {
	if err := l.accounts.Ensure(ctx, accountID, displayName); err != nil {
		return fmt.Errorf("ensure account: %w", err)
	}
	return nil
}

// Balance reads the current balance.
func (l *Ledger) Balance(ctx context.Context, accountID string) (int64, error) {
	a, err := l.accounts.Get(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// Credit adds amount (positive) and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	return l.adjust(ctx, accountID, amount)
}

// Debit subtracts amount (positive) and returns the new balance. Fails
// with ErrInsufficientFunds before any write if the balance is short.
func (l *Ledger) Debit(ctx context.Context, accountID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	return l.adjust(ctx, accountID, -amount)
}

func (l *Ledger) adjust(ctx context.Context, accountID string, delta int64) (int64, error) {
	mu := l.lock(accountID)
	mu.Lock()
	defer mu.Unlock()

	var newBal int64
	err := database.WithTx(l.db, func(tx *sql.Tx) error {
		bal, err := l.accounts.BalanceTx(ctx, tx, accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnknownAccount
		}
		if err != nil {
			return err
		}
		newBal = bal + delta
		if newBal < 0 {
			return ErrInsufficientFunds
		}
		return l.accounts.SetBalanceTx(ctx, tx, accountID, newBal)
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}
