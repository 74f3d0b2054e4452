package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/lovebank/internal/database/repository"
)

// PendingOffer is a persisted redemption proposal awaiting the
// confirm/cancel choice. The token is the only handle to it.
type PendingOffer struct {
	Token string
	Item  Item
}

// ConfirmResult reports a completed redemption.
type ConfirmResult struct {
	Item       Item
	NewBalance int64
}

// Redeemer drives the select -> pending -> confirm/cancel lifecycle.
// Confirmation is the only path that mutates balance; selection only
// writes the pending record.
type Redeemer struct {
	Catalog Catalog
	Ledger  *Ledger
	Pending *repository.PendingRepo
	Notify  Notifier           // optional
	Log     *zap.SugaredLogger // optional
}

// Select validates the item and affordability, persists a pending
// exchange under a fresh token and returns it. Nothing is debited.
func (r *Redeemer) Select(ctx context.Context, accountID, code string, cost int64) (PendingOffer, error) {
	item, ok := r.Catalog.Find(code, cost)
	if !ok {
		return PendingOffer{}, ErrItemNotFound
	}
	bal, err := r.Ledger.Balance(ctx, accountID)
	if err != nil {
		return PendingOffer{}, err
	}
	if bal < cost {
		return PendingOffer{}, ErrInsufficientFunds
	}

	token := uuid.NewString()
	if err := r.Pending.Put(ctx, repository.PendingExchange{
		Token:     token,
		AccountID: accountID,
		ItemCode:  code,
		Cost:      cost,
	}); err != nil {
		return PendingOffer{}, fmt.Errorf("persist pending exchange: %w", err)
	}
	return PendingOffer{Token: token, Item: item}, nil
}

// Confirm resolves a pending exchange. The token must exist and belong
// to accountID; item and affordability are re-validated because both
// may have changed since selection. Deleting the record first, keyed on
// the delete row count, makes a double confirm lose cleanly.
func (r *Redeemer) Confirm(ctx context.Context, accountID, token string) (ConfirmResult, error) {
	p, err := r.Pending.Get(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return ConfirmResult{}, ErrUnknownToken
	}
	if err != nil {
		return ConfirmResult{}, err
	}
	if p.AccountID != accountID {
		return ConfirmResult{}, ErrNotOwner
	}

	item, ok := r.Catalog.Find(p.ItemCode, p.Cost)
	if !ok {
		_, _ = r.Pending.Delete(ctx, token)
		return ConfirmResult{}, ErrItemNotFound
	}
	bal, err := r.Ledger.Balance(ctx, accountID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if bal < p.Cost {
		_, _ = r.Pending.Delete(ctx, token)
		return ConfirmResult{}, ErrInsufficientFunds
	}

	deleted, err := r.Pending.Delete(ctx, token)
	if err != nil {
		return ConfirmResult{}, err
	}
	if !deleted {
		// Lost the race against another confirm or a cancel.
		return ConfirmResult{}, ErrUnknownToken
	}

	newBal, err := r.Ledger.Debit(ctx, accountID, p.Cost)
	if err != nil {
		return ConfirmResult{}, err
	}

	if r.Notify != nil {
		r.Notify.Notify(ctx, fmt.Sprintf(
			"🛒 Redeemed: account %s spent %d€ → %s. Balance: %d€.",
			accountID, p.Cost, item.Label, newBal))
	}
	if r.Log != nil {
		r.Log.Infow("exchange confirmed", "account", accountID, "item", item.Code, "cost", p.Cost)
	}
	return ConfirmResult{Item: item, NewBalance: newBal}, nil
}

// Cancel drops the pending exchange. Cancelling a token that is gone
// already is a no-op.
func (r *Redeemer) Cancel(ctx context.Context, token string) error {
	_, err := r.Pending.Delete(ctx, token)
	return err
}
