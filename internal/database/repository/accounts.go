package repository

import (
	"context"
	"database/sql"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Ensure creates the account row if it does not exist yet. The display
// name is refreshed on every call; balance is never touched here.
func (r *AccountRepo) Ensure(ctx context.Context, id, displayName string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, display_name, balance, created_at, updated_at)
	VALUES (?, ?, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 display_name=excluded.display_name,
	 updated_at=CURRENT_TIMESTAMP;
	`, id, displayName)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, id string) (Account, error) {
	var a Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, balance, created_at, updated_at FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.DisplayName, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// BalanceTx reads the balance inside tx. Returns sql.ErrNoRows for an
// unknown account.
func (r *AccountRepo) BalanceTx(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var bal int64
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, id).Scan(&bal)
	return bal, err
}

// SetBalanceTx writes the balance inside tx.
func (r *AccountRepo) SetBalanceTx(ctx context.Context, tx *sql.Tx, id string, balance int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, balance, id)
	return err
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, display_name, balance, created_at, updated_at FROM accounts ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
