package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/events"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/metrics"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// DefaultMaxAttempts bounds how often a bid transaction is tried when it
// loses a race with a concurrent writer
const DefaultMaxAttempts = 3

// BidResult describes an accepted bid and the ledger entries it produced
type BidResult struct {
	Bid           model.Bid
	PreviousPrice decimal.Decimal
	Hold          model.BalanceTransaction
	Refund        *model.BalanceTransaction
}

// BiddingService accepts bids as single all-or-nothing store transactions
type BiddingService struct {
	repo        repository.AuctionDB
	ledger      *ledger.Ledger
	publisher   events.Publisher
	maxAttempts int
	now         func() time.Time
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithPublisher sets where bid events are published after commit
func WithPublisher(p events.Publisher) Option {
	return func(s *BiddingService) { s.publisher = p }
}

// WithMaxAttempts sets the bounded retry budget for contended bids
func WithMaxAttempts(n int) Option {
	return func(s *BiddingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, l *ledger.Ledger, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:        repo,
		ledger:      l,
		publisher:   events.NopPublisher{},
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a bid: it inserts the bid, holds the
// bidder's funds, refunds the previous top bidder and advances the price,
// all in one transaction.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID int64, bidderID string, amount decimal.Decimal) (BidResult, error) {
	result, err := s.placeBid(ctx, auctionID, bidderID, amount)
	metrics.BidsTotal.WithLabelValues(metrics.BidOutcome(err)).Inc()
	return result, err
}

func (s *BiddingService) placeBid(ctx context.Context, auctionID int64, bidderID string, amount decimal.Decimal) (BidResult, error) {
	if err := s.validateBid(ctx, auctionID, bidderID, amount); err != nil {
		return BidResult{}, err
	}

	var (
		result BidResult
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = s.commitBid(ctx, auctionID, bidderID, amount)
		if err == nil || !auctionerrors.IsRetryable(err) || attempt >= s.maxAttempts {
			break
		}
		metrics.BidRetriesTotal.Inc()
		utils.Warn("service: bid lost a concurrent update, retrying", map[string]any{
			"auction_id": auctionID,
			"user_id":    bidderID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
	}
	if err != nil {
		return BidResult{}, fmt.Errorf("service: failed to place bid on auction %d by user %s: %w", auctionID, bidderID, err)
	}

	s.publishBid(ctx, result)
	return result, nil
}

// validateBid checks input validity and business rules before any write.
// The checks are repeated against locked rows inside the transaction.
func (s *BiddingService) validateBid(ctx context.Context, auctionID int64, bidderID string, amount decimal.Decimal) error {
	if bidderID == "" {
		return fmt.Errorf("service: %w - missing bidder identity", auctionerrors.ErrUnauthorized)
	}
	if auctionID <= 0 {
		return fmt.Errorf("service: %w - malformed auction ID", auctionerrors.ErrInvalidInput)
	}
	if !model.IsValidAmount(amount) {
		return fmt.Errorf("service: %w - bid amount must be positive with at most two decimals", auctionerrors.ErrInvalidInput)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("service: failed to load auction: %w", err)
	}
	if err := checkBiddable(auction, amount, s.now()); err != nil {
		return err
	}

	bidder, err := s.repo.GetUser(ctx, bidderID)
	if err != nil {
		return fmt.Errorf("service: failed to load bidder: %w", err)
	}
	if bidder.Balance.LessThan(amount) {
		return fmt.Errorf("service: %w - balance is %s", auctionerrors.ErrInsufficientFunds, model.FormatMoney(bidder.Balance))
	}

	return nil
}

func checkBiddable(auction model.Auction, amount decimal.Decimal, now time.Time) error {
	if !auction.AcceptsBids(now) {
		return fmt.Errorf("service: %w - auction %d", auctionerrors.ErrAuctionClosed, auction.AuctionID)
	}
	if amount.LessThanOrEqual(auction.CurrentPrice) {
		return fmt.Errorf("service: %w - current price is %s", auctionerrors.ErrBidTooLow, model.FormatMoney(auction.CurrentPrice))
	}
	return nil
}

// commitBid runs the atomic unit against freshly locked rows
func (s *BiddingService) commitBid(ctx context.Context, auctionID int64, bidderID string, amount decimal.Decimal) (BidResult, error) {
	var result BidResult

	err := s.repo.WithTx(ctx, func(tx repository.AuctionTx) error {
		auction, err := tx.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if err := checkBiddable(auction, amount, s.now()); err != nil {
			return err
		}

		previous, err := tx.GetTopBid(ctx, auctionID)
		hasPrevious := err == nil
		if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
			return err
		}

		// a clock that stepped back must not date a bid before the one it beats
		createdAt := s.now().UTC()
		if hasPrevious && createdAt.Before(previous.CreatedAt) {
			createdAt = previous.CreatedAt
		}
		bid := model.Bid{
			AuctionID: auctionID,
			UserID:    bidderID,
			Amount:    amount,
			CreatedAt: createdAt,
		}
		if err := tx.InsertBid(ctx, &bid); err != nil {
			return err
		}

		hold, err := s.ledger.Debit(ctx, tx, bidderID, amount, ledger.Reason{
			Type:        model.TxBidHold,
			AuctionID:   ptr(auctionID),
			BidID:       ptr(bid.BidID),
			Description: fmt.Sprintf("Bid placed on auction: %s", auction.Title),
		})
		if err != nil {
			return err
		}

		// Raising your own top bid holds the extra amount on top of the
		// earlier hold; only a different bidder's hold is released here.
		var refund *model.BalanceTransaction
		if hasPrevious && previous.UserID != bidderID {
			entry, err := s.ledger.Credit(ctx, tx, previous.UserID, previous.Amount, ledger.Reason{
				Type:        model.TxBidRefund,
				AuctionID:   ptr(auctionID),
				BidID:       ptr(previous.BidID),
				Description: fmt.Sprintf("Bid refunded - outbid on auction: %s", auction.Title),
			})
			if err != nil {
				return err
			}
			refund = &entry
		}

		if err := tx.UpdateAuctionPrice(ctx, auctionID, auction.CurrentPrice, amount); err != nil {
			return err
		}

		result = BidResult{
			Bid:           bid,
			PreviousPrice: auction.CurrentPrice,
			Hold:          hold,
			Refund:        refund,
		}
		return nil
	})
	if err != nil {
		return BidResult{}, err
	}
	return result, nil
}

func (s *BiddingService) publishBid(ctx context.Context, result BidResult) {
	event := events.BidPlaced{
		AuctionID:     result.Bid.AuctionID,
		BidID:         result.Bid.BidID,
		UserID:        result.Bid.UserID,
		Amount:        model.FormatMoney(result.Bid.Amount),
		PreviousPrice: model.FormatMoney(result.PreviousPrice),
		Timestamp:     result.Bid.CreatedAt,
	}
	if result.Refund != nil {
		event.RefundedUser = result.Refund.UserID
	}
	if err := s.publisher.Publish(ctx, events.BidSubject(result.Bid.AuctionID), event); err != nil {
		utils.Warn("service: failed to publish bid event", map[string]any{
			"auction_id": result.Bid.AuctionID,
			"bid_id":     result.Bid.BidID,
			"error":      err.Error(),
		})
	}
}

// GetBidsForAuction returns all bids for an auction, newest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID int64) ([]model.Bid, error) {
	if auctionID <= 0 {
		return nil, fmt.Errorf("service: %w - malformed auction ID", auctionerrors.ErrInvalidInput)
	}
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to load auction: %w", err)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

func ptr[T any](v T) *T {
	return &v
}
