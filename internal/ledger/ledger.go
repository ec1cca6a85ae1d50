// Package ledger holds user balances and the append-only audit trail that
// accompanies every balance change.
//
// Debit and Credit never open their own transaction: they run against the
// caller's repository.AuctionTx so that a balance change commits or rolls
// back together with the bid or settlement it belongs to.
package ledger

import (
	"context"
	"fmt"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/shopspring/decimal"
)

// HistoryLimit caps the number of entries returned by History
const HistoryLimit = 50

// Reason describes why a balance changes; it becomes the audit entry
type Reason struct {
	Type        model.TransactionType
	AuctionID   *int64
	BidID       *int64
	Description string
}

// Ledger applies balance changes and serves balance reads
type Ledger struct {
	repo repository.AuctionDB
}

// NewLedger creates a new Ledger instance
func NewLedger(repo repository.AuctionDB) *Ledger {
	return &Ledger{repo: repo}
}

// Debit decreases a user's balance by amount inside tx and records the entry.
// It fails with ErrInsufficientFunds when the locked balance is below amount.
func (l *Ledger) Debit(ctx context.Context, tx repository.AuctionTx, userID string, amount decimal.Decimal, reason Reason) (model.BalanceTransaction, error) {
	if !amount.IsPositive() {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: %w - non-positive debit", auctionerrors.ErrInvalidInput)
	}

	user, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: debit %s: %w", userID, err)
	}
	if user.Balance.LessThan(amount) {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: %w - balance %s, debit %s",
			auctionerrors.ErrInsufficientFunds, model.FormatMoney(user.Balance), model.FormatMoney(amount))
	}

	return l.apply(ctx, tx, user, user.Balance.Sub(amount), amount, reason)
}

// Credit increases a user's balance by amount inside tx and records the entry
func (l *Ledger) Credit(ctx context.Context, tx repository.AuctionTx, userID string, amount decimal.Decimal, reason Reason) (model.BalanceTransaction, error) {
	if !amount.IsPositive() {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: %w - non-positive credit", auctionerrors.ErrInvalidInput)
	}

	user, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: credit %s: %w", userID, err)
	}

	return l.apply(ctx, tx, user, user.Balance.Add(amount), amount, reason)
}

// Note appends an audit entry that carries no balance change
func (l *Ledger) Note(ctx context.Context, tx repository.AuctionTx, userID string, amount decimal.Decimal, reason Reason) (model.BalanceTransaction, error) {
	entry := newEntry(userID, amount, reason)
	if err := tx.InsertTransaction(ctx, &entry); err != nil {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: note %s for %s: %w", reason.Type, userID, err)
	}
	return entry, nil
}

func (l *Ledger) apply(ctx context.Context, tx repository.AuctionTx, user model.User, balance, amount decimal.Decimal, reason Reason) (model.BalanceTransaction, error) {
	if err := tx.UpdateBalance(ctx, user.UserID, user.Balance, balance); err != nil {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: %s for %s: %w", reason.Type, user.UserID, err)
	}

	entry := newEntry(user.UserID, amount, reason)
	if err := tx.InsertTransaction(ctx, &entry); err != nil {
		return model.BalanceTransaction{}, fmt.Errorf("ledger: %s for %s: %w", reason.Type, user.UserID, err)
	}
	return entry, nil
}

func newEntry(userID string, amount decimal.Decimal, reason Reason) model.BalanceTransaction {
	return model.BalanceTransaction{
		UserID:      userID,
		AuctionID:   reason.AuctionID,
		BidID:       reason.BidID,
		Type:        reason.Type,
		Amount:      amount,
		Description: reason.Description,
	}
}

// OpenAccount provisions an account with the default balance if it does not exist
func (l *Ledger) OpenAccount(ctx context.Context, userID, name string) error {
	if userID == "" {
		return fmt.Errorf("ledger: %w - empty user ID", auctionerrors.ErrUnauthorized)
	}
	if err := l.repo.EnsureUser(ctx, userID, name, model.DefaultBalance); err != nil {
		return fmt.Errorf("ledger: open account %s: %w", userID, err)
	}
	return nil
}

// Balance returns a user's current balance
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	user, err := l.repo.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger: balance for %s: %w", userID, err)
	}
	return user.Balance, nil
}

// History returns a user's most recent ledger entries, newest first
func (l *Ledger) History(ctx context.Context, userID string) ([]model.BalanceTransaction, error) {
	entries, err := l.repo.ListTransactions(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("ledger: history for %s: %w", userID, err)
	}
	return entries, nil
}
