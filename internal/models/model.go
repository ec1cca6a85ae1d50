package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBalance is the balance a newly provisioned account starts with
var DefaultBalance = decimal.RequireFromString("1000.00")

// User represents a participant and their spendable ledger balance
type User struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Auction represents an item listed by a seller
type Auction struct {
	AuctionID     int64           `json:"auction_id"`
	SellerID      string          `json:"seller_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	ClosingDate   time.Time       `json:"closing_date"`
	IsActive      bool            `json:"is_active"`
	IsLocked      bool            `json:"is_locked"`
	EndedManually bool            `json:"ended_manually"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AcceptsBids reports whether bidding is open at the given instant
func (a Auction) AcceptsBids(now time.Time) bool {
	return a.IsActive && !a.IsLocked && now.Before(a.ClosingDate)
}

// Bid represents a user's accepted bid on an auction
type Bid struct {
	BidID     int64           `json:"bid_id"`
	AuctionID int64           `json:"auction_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionType labels a ledger audit entry
type TransactionType string

const (
	TxBidHold          TransactionType = "bid_hold"
	TxBidRefund        TransactionType = "bid_refund"
	TxAuctionWinCredit TransactionType = "auction_win_credit"
	TxAuctionWin       TransactionType = "auction_win"
)

// BalanceTransaction is an append-only ledger audit entry.
// AuctionID and BidID are provenance only and may be nil.
type BalanceTransaction struct {
	TransactionID int64           `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	AuctionID     *int64          `json:"auction_id,omitempty"`
	BidID         *int64          `json:"bid_id,omitempty"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	AuctionTitle  string          `json:"auction_title,omitempty"`
}
