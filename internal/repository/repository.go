package repository

import (
	"context"
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the storage interface for auctions, bids and the ledger.
// Reads outside WithTx are advisory snapshots; every mutation that has to
// stay consistent goes through an AuctionTx.
type AuctionDB interface {
	// WithTx runs fn inside one store transaction. fn's error rolls back.
	WithTx(ctx context.Context, fn func(tx AuctionTx) error) error

	GetAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	CreateAuction(ctx context.Context, auction *model.Auction) error
	SetAuctionLocked(ctx context.Context, auctionID int64, locked bool) error
	ListExpiredAuctionIDs(ctx context.Context, now time.Time) ([]int64, error)

	GetTopBid(ctx context.Context, auctionID int64) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)

	GetUser(ctx context.Context, userID string) (model.User, error)
	EnsureUser(ctx context.Context, userID, name string, balance decimal.Decimal) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.BalanceTransaction, error)

	Close() error
}

// AuctionTx is the transactional view of the store. Reads taken through it
// lock the row they return until the transaction ends.
type AuctionTx interface {
	GetAuctionForUpdate(ctx context.Context, auctionID int64) (model.Auction, error)
	GetUserForUpdate(ctx context.Context, userID string) (model.User, error)
	GetTopBid(ctx context.Context, auctionID int64) (model.Bid, error)

	InsertBid(ctx context.Context, bid *model.Bid) error
	InsertTransaction(ctx context.Context, entry *model.BalanceTransaction) error

	// UpdateBalance sets a user's balance if it still equals expected.
	UpdateBalance(ctx context.Context, userID string, expected, balance decimal.Decimal) error
	// UpdateAuctionPrice sets current_price if it still equals expected.
	UpdateAuctionPrice(ctx context.Context, auctionID int64, expected, price decimal.Decimal) error
	UpdateAuctionFlags(ctx context.Context, auctionID int64, flags AuctionFlags) error
}

// AuctionFlags is the lifecycle state written when an auction terminates
type AuctionFlags struct {
	IsActive      bool
	IsLocked      bool
	EndedManually bool
}
