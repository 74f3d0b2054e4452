package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jask/lovebank/internal/database"
)

// FingerprintRepo handles the anti-duplicate content log.
type FingerprintRepo struct {
	db *sql.DB
}

func NewFingerprintRepo(db *sql.DB) *FingerprintRepo {
	return &FingerprintRepo{db: db}
}

// MarkIfNew records (accountID, contentHash) and reports true iff the
// pair was not present before. The primary key makes the check-and-set
// a single statement, so two concurrent callers never both get true.
func (r *FingerprintRepo) MarkIfNew(ctx context.Context, accountID, contentHash string) (bool, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fingerprints(account_id, content_hash, created_at) VALUES (?, ?, ?)`,
		accountID, contentHash, database.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *FingerprintRepo) Count(ctx context.Context, accountID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fingerprints WHERE account_id = ?`, accountID).Scan(&n)
	return n, err
}
