// Package settlement resolves the winning bid of a terminating auction and
// moves the proceeds to the seller.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
)

// Settler applies the settlement of a single auction inside a caller's transaction
type Settler struct {
	ledger *ledger.Ledger
}

// NewSettler creates a new Settler instance
func NewSettler(l *ledger.Ledger) *Settler {
	return &Settler{ledger: l}
}

// Settle credits the seller with the top bid and records the win for the
// bidder. Both termination paths settle the same way. An auction without
// bids settles as unsold and changes no balance.
//
// The winner's funds were held when the bid was placed, so the winner's
// balance is not touched again.
func (s *Settler) Settle(ctx context.Context, tx repository.AuctionTx, auction model.Auction, path model.SettlementPath) (model.SettlementOutcome, error) {
	outcome := model.SettlementOutcome{
		AuctionID: auction.AuctionID,
		SellerID:  auction.SellerID,
	}

	top, err := tx.GetTopBid(ctx, auction.AuctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return outcome, nil
	}
	if err != nil {
		return model.SettlementOutcome{}, fmt.Errorf("settlement: %s of auction %d: %w", path, auction.AuctionID, err)
	}

	auctionID := auction.AuctionID
	bidID := top.BidID

	_, err = s.ledger.Credit(ctx, tx, auction.SellerID, top.Amount, ledger.Reason{
		Type:        model.TxAuctionWinCredit,
		AuctionID:   &auctionID,
		BidID:       &bidID,
		Description: fmt.Sprintf("Received payment for auction %q", auction.Title),
	})
	if err != nil {
		return model.SettlementOutcome{}, fmt.Errorf("settlement: credit seller of auction %d: %w", auction.AuctionID, err)
	}

	_, err = s.ledger.Note(ctx, tx, top.UserID, top.Amount, ledger.Reason{
		Type:        model.TxAuctionWin,
		AuctionID:   &auctionID,
		BidID:       &bidID,
		Description: fmt.Sprintf("Won auction: %s", auction.Title),
	})
	if err != nil {
		return model.SettlementOutcome{}, fmt.Errorf("settlement: record win of auction %d: %w", auction.AuctionID, err)
	}

	outcome.Sold = true
	outcome.WinningBid = &top
	return outcome, nil
}
