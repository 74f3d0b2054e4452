package repository

import (
	"context"
	"database/sql"

	"github.com/jask/lovebank/internal/database"
)

// PendingRepo handles pending exchanges.
type PendingRepo struct {
	db *sql.DB
}

func NewPendingRepo(db *sql.DB) *PendingRepo {
	return &PendingRepo{db: db}
}

func (r *PendingRepo) Put(ctx context.Context, p PendingExchange) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO pending_exchanges(token, account_id, item_code, cost, created_at)
	VALUES (?, ?, ?, ?, ?)
	`, p.Token, p.AccountID, p.ItemCode, p.Cost, database.Now())
	return err
}

// Get returns the pending exchange for token, or sql.ErrNoRows.
func (r *PendingRepo) Get(ctx context.Context, token string) (PendingExchange, error) {
	var p PendingExchange
	err := r.db.QueryRowContext(ctx, `
	SELECT token, account_id, item_code, cost, created_at
	FROM pending_exchanges WHERE token = ?
	`, token).Scan(&p.Token, &p.AccountID, &p.ItemCode, &p.Cost, &p.CreatedAt)
	return p, err
}

// Delete removes the pending exchange and reports whether a row was
// actually deleted. The row count is what lets a confirm win the race
// against a concurrent confirm or cancel on the same token.
func (r *PendingRepo) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_exchanges WHERE token = ?`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
