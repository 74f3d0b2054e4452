package bank

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/lovebank/internal/database"
	"github.com/jask/lovebank/internal/database/repository"
)

func newTestLedger(t *testing.T) (*Ledger, *sql.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return NewLedger(db, repository.NewAccountRepo(db)), db
}

func TestCreditAndDebit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)
	require.NoError(t, ledger.Ensure(ctx, "7", "Nika"))

	bal, err := ledger.Credit(ctx, "7", 300)
	require.NoError(t, err)
	require.EqualValues(t, 300, bal)

	bal, err = ledger.Debit(ctx, "7", 100)
	require.NoError(t, err)
	require.EqualValues(t, 200, bal)

	bal, err = ledger.Balance(ctx, "7")
	require.NoError(t, err)
	require.EqualValues(t, 200, bal)
}

func TestDebitInsufficientFunds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)
	require.NoError(t, ledger.Ensure(ctx, "7", "Nika"))

	_, err := ledger.Credit(ctx, "7", 100)
	require.NoError(t, err)

	_, err = ledger.Debit(ctx, "7", 101)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed debit wrote nothing.
	bal, err := ledger.Balance(ctx, "7")
	require.NoError(t, err)
	require.EqualValues(t, 100, bal)
}

func TestLedgerUnknownAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	_, err := ledger.Credit(ctx, "missing", 100)
	require.ErrorIs(t, err, ErrUnknownAccount)
	_, err = ledger.Debit(ctx, "missing", 100)
	require.ErrorIs(t, err, ErrUnknownAccount)
	_, err = ledger.Balance(ctx, "missing")
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)
	require.NoError(t, ledger.Ensure(ctx, "7", "Nika"))

	_, err := ledger.Credit(ctx, "7", 0)
	require.Error(t, err)
	_, err = ledger.Debit(ctx, "7", -5)
	require.Error(t, err)
}

// Balance must never be observed negative under any interleaving of
// concurrent credits and debits.
func TestLedgerConcurrentNeverNegative(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)
	require.NoError(t, ledger.Ensure(ctx, "7", "Nika"))

	_, err := ledger.Credit(ctx, "7", 500)
	require.NoError(t, err)

	const workers = 8
	const rounds = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	debited := int64(0)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if w%2 == 0 {
					bal, err := ledger.Credit(ctx, "7", 10)
					require.NoError(t, err)
					require.GreaterOrEqual(t, bal, int64(0))
				} else {
					bal, err := ledger.Debit(ctx, "7", 30)
					if err != nil {
						require.ErrorIs(t, err, ErrInsufficientFunds)
						continue
					}
					require.GreaterOrEqual(t, bal, int64(0))
					mu.Lock()
					debited += 30
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	bal, err := ledger.Balance(ctx, "7")
	require.NoError(t, err)
	require.GreaterOrEqual(t, bal, int64(0))
	// credits all land: 500 + 4 workers * 25 rounds * 10
	require.EqualValues(t, 500+4*rounds*10-debited, bal)
}

func TestLedgerConcurrentAccountsIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	ids := []string{"1", "2", "3", "4"}
	for _, id := range ids {
		require.NoError(t, ledger.Ensure(ctx, id, "acct "+id))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := ledger.Credit(ctx, id, 5)
				require.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		bal, err := ledger.Balance(ctx, id)
		require.NoError(t, err)
		require.EqualValues(t, 100, bal)
	}
}
