package bank

import "errors"

var (
	// ErrUnknownAccount means a ledger operation ran before Ensure.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrInsufficientFunds is returned by debits and by redemption
	// affordability checks. No state is mutated when it is returned.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrItemNotFound means the catalog has no item with that code and cost.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownToken means the pending exchange is gone or never existed.
	ErrUnknownToken = errors.New("unknown or already resolved token")
	// ErrNotOwner means someone else's confirmation token was used. The
	// pending record is left untouched.
	ErrNotOwner = errors.New("pending exchange belongs to another account")
)
