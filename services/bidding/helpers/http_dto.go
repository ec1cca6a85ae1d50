package helpers

import (
	"time"

	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request DTOs. Amounts bind from a JSON number or a decimal string.
type PlaceBidRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type LockRequest struct {
	Lock *bool `json:"lock" binding:"required"`
}

type CreateAuctionRequest struct {
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	StartingPrice *decimal.Decimal `json:"startingPrice" binding:"required"`
	ClosingDate   time.Time        `json:"closingDate" binding:"required"`
}

// Response DTOs. Amounts are decimal strings with two fraction digits.
type BidResponse struct {
	BidID     int64  `json:"bid_id"`
	AuctionID int64  `json:"auction_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID     int64  `json:"auction_id"`
	SellerID      string `json:"seller_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartingPrice string `json:"starting_price"`
	CurrentPrice  string `json:"current_price"`
	ClosingDate   string `json:"closing_date"`
	IsActive      bool   `json:"is_active"`
	IsLocked      bool   `json:"is_locked"`
	EndedManually bool   `json:"ended_manually"`
	CreatedAt     string `json:"created_at"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	TransactionID int64  `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	AuctionID     *int64 `json:"auction_id,omitempty"`
	AuctionTitle  string `json:"auction_title,omitempty"`
	BidID         *int64 `json:"bid_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		UserID:    b.UserID,
		Amount:    model.FormatMoney(b.Amount),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func NewBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}

func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:     a.AuctionID,
		SellerID:      a.SellerID,
		Title:         a.Title,
		Description:   a.Description,
		StartingPrice: model.FormatMoney(a.StartingPrice),
		CurrentPrice:  model.FormatMoney(a.CurrentPrice),
		ClosingDate:   formatTime(a.ClosingDate),
		IsActive:      a.IsActive,
		IsLocked:      a.IsLocked,
		EndedManually: a.EndedManually,
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

func NewTransactionResponses(entries []model.BalanceTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TransactionResponse{
			TransactionID: e.TransactionID,
			Type:          string(e.Type),
			Amount:        model.FormatMoney(e.Amount),
			Description:   e.Description,
			AuctionID:     e.AuctionID,
			AuctionTitle:  e.AuctionTitle,
			BidID:         e.BidID,
			CreatedAt:     formatTime(e.CreatedAt),
		})
	}
	return out
}
