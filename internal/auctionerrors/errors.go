package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrPriceConflict   = errors.New("auction price changed concurrently")
	ErrBalanceConflict = errors.New("balance changed concurrently")
	ErrTxConflict      = errors.New("transaction conflict")
)

// access errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// business logic errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuctionClosed     = errors.New("bidding is closed for this auction")
	ErrBidTooLow         = errors.New("bid must be higher than current price")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAlreadyEnded      = errors.New("auction already ended")
)

// IsRetryable reports whether err came from losing a race with a concurrent
// transaction (compare-and-swap miss, deadlock, busy store)
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPriceConflict) ||
		errors.Is(err, ErrBalanceConflict) ||
		errors.Is(err, ErrTxConflict)
}
