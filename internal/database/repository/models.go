package repository

import "time"

// Account represents an account row. Balance is in euros (whole units).
type Account struct {
	ID          string
	DisplayName string
	Balance     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fingerprint records content already credited for an account.
type Fingerprint struct {
	AccountID   string
	ContentHash string
	CreatedAt   time.Time
}

// PendingExchange is a proposed redemption awaiting confirmation.
type PendingExchange struct {
	Token     string
	AccountID string
	ItemCode  string
	Cost      int64
	CreatedAt time.Time
}
