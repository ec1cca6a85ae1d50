package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/internal/metrics"
	"auction-engine/internal/repository"
	"auction-engine/internal/settlement"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// NewAuction holds the seller-supplied fields of a listing
type NewAuction struct {
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	ClosingDate   time.Time
}

// Service owns auction state transitions: listing, locking, manual end and
// the expiry sweep
type Service struct {
	repo      repository.AuctionDB
	settler   *settlement.Settler
	publisher events.Publisher
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sets where termination events are published after commit
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new lifecycle Service instance
func NewService(repo repository.AuctionDB, settler *settlement.Settler, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		settler:   settler,
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuction lists a new active auction for sellerID. The current price
// starts at the starting price.
func (s *Service) CreateAuction(ctx context.Context, sellerID string, in NewAuction) (model.Auction, error) {
	if sellerID == "" {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - missing seller identity", auctionerrors.ErrUnauthorized)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - title is required", auctionerrors.ErrInvalidInput)
	}
	if !model.IsValidAmount(in.StartingPrice) {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - starting price must be positive with at most two decimals", auctionerrors.ErrInvalidInput)
	}
	if !in.ClosingDate.After(s.now()) {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - closing date must be in the future", auctionerrors.ErrInvalidInput)
	}

	auction := model.Auction{
		SellerID:      sellerID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		ClosingDate:   in.ClosingDate.UTC(),
		IsActive:      true,
	}
	if err := s.repo.CreateAuction(ctx, &auction); err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: failed to create auction: %w", err)
	}

	utils.Info("lifecycle: auction created", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  sellerID,
	})
	return auction, nil
}

// GetAuction returns an auction by id
func (s *Service) GetAuction(ctx context.Context, auctionID int64) (model.Auction, error) {
	if auctionID <= 0 {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - malformed auction ID", auctionerrors.ErrInvalidInput)
	}
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: %w", err)
	}
	return auction, nil
}

// authorizeSeller loads the auction and checks that actorID listed it
func (s *Service) authorizeSeller(ctx context.Context, auctionID int64, actorID string) (model.Auction, error) {
	if actorID == "" {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - missing identity", auctionerrors.ErrUnauthorized)
	}
	if auctionID <= 0 {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - malformed auction ID", auctionerrors.ErrInvalidInput)
	}
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("lifecycle: %w", err)
	}
	if auction.SellerID != actorID {
		return model.Auction{}, fmt.Errorf("lifecycle: %w - user %s does not own auction %d",
			auctionerrors.ErrForbidden, actorID, auctionID)
	}
	return auction, nil
}

// Lock sets or clears the lock flag. Only the seller may call it and it
// never touches is_active.
func (s *Service) Lock(ctx context.Context, auctionID int64, actorID string, locked bool) error {
	if _, err := s.authorizeSeller(ctx, auctionID, actorID); err != nil {
		return err
	}
	if err := s.repo.SetAuctionLocked(ctx, auctionID, locked); err != nil {
		return fmt.Errorf("lifecycle: failed to set lock on auction %d: %w", auctionID, err)
	}

	utils.Info("lifecycle: auction lock changed", map[string]any{
		"auction_id": auctionID,
		"locked":     locked,
	})
	return nil
}

// EndManually settles the auction and ends it on the seller's request
func (s *Service) EndManually(ctx context.Context, auctionID int64, actorID string) (model.SettlementOutcome, error) {
	auction, err := s.authorizeSeller(ctx, auctionID, actorID)
	if err != nil {
		return model.SettlementOutcome{}, err
	}
	if !auction.IsActive {
		return model.SettlementOutcome{}, fmt.Errorf("lifecycle: %w - auction %d", auctionerrors.ErrAlreadyEnded, auctionID)
	}

	outcome, err := s.terminate(ctx, auctionID, model.PathManualEnd)
	if err != nil {
		return model.SettlementOutcome{}, err
	}
	return outcome, nil
}

// SweepExpired ends every active auction whose closing date has passed.
// Each auction is settled in its own transaction; a failure is reported in
// its result and does not stop the sweep.
func (s *Service) SweepExpired(ctx context.Context) ([]model.SweepResult, error) {
	metrics.SweepRunsTotal.Inc()

	ids, err := s.repo.ListExpiredAuctionIDs(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("lifecycle: failed to list expired auctions: %w", err)
	}

	results := make([]model.SweepResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := model.SweepResult{AuctionID: id}
		outcome, err := s.terminate(ctx, id, model.PathExpirySweep)
		switch {
		case errors.Is(err, auctionerrors.ErrAlreadyEnded):
			result.Status = model.SweepStatusSkipped
		case err != nil:
			result.Status = model.SweepStatusFailed
			result.Error = "settlement failed"
			utils.Error("lifecycle: failed to settle expired auction", map[string]any{
				"auction_id": id,
				"error":      err.Error(),
			})
		default:
			result.Status = model.SweepStatusSettled
			result.Sold = outcome.Sold
		}
		results = append(results, result)
	}

	utils.Info("lifecycle: expiry sweep finished", map[string]any{
		"candidates": len(ids),
	})
	return results, nil
}

// terminate settles an auction and writes its terminal flags in one
// transaction. The auction row is re-read under lock so that two
// terminations racing on the same auction settle it once.
func (s *Service) terminate(ctx context.Context, auctionID int64, path model.SettlementPath) (model.SettlementOutcome, error) {
	var (
		outcome model.SettlementOutcome
		flags   repository.AuctionFlags
	)

	err := s.repo.WithTx(ctx, func(tx repository.AuctionTx) error {
		auction, err := tx.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if !auction.IsActive {
			return fmt.Errorf("%w - auction %d", auctionerrors.ErrAlreadyEnded, auctionID)
		}

		outcome, err = s.settler.Settle(ctx, tx, auction, path)
		if err != nil {
			return err
		}

		flags = repository.AuctionFlags{IsActive: false, IsLocked: auction.IsLocked}
		if path == model.PathManualEnd {
			flags.IsLocked = true
			flags.EndedManually = true
		}
		return tx.UpdateAuctionFlags(ctx, auctionID, flags)
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues(string(path), settlementResult(err, false)).Inc()
		return model.SettlementOutcome{}, fmt.Errorf("lifecycle: %s of auction %d: %w", path, auctionID, err)
	}
	metrics.SettlementsTotal.WithLabelValues(string(path), settlementResult(nil, outcome.Sold)).Inc()

	utils.Info("lifecycle: auction ended", map[string]any{
		"auction_id": auctionID,
		"path":       string(path),
		"sold":       outcome.Sold,
	})
	s.publishEnded(ctx, outcome, path, flags.EndedManually)
	return outcome, nil
}

func settlementResult(err error, sold bool) string {
	switch {
	case errors.Is(err, auctionerrors.ErrAlreadyEnded):
		return "skipped"
	case err != nil:
		return "error"
	case sold:
		return "sold"
	default:
		return "unsold"
	}
}

func (s *Service) publishEnded(ctx context.Context, outcome model.SettlementOutcome, path model.SettlementPath, endedManually bool) {
	event := events.AuctionEnded{
		AuctionID:     outcome.AuctionID,
		Path:          string(path),
		Sold:          outcome.Sold,
		EndedManually: endedManually,
		Timestamp:     s.now().UTC(),
	}
	if outcome.WinningBid != nil {
		event.WinnerID = outcome.WinningBid.UserID
		event.FinalPrice = model.FormatMoney(outcome.WinningBid.Amount)
	}
	if err := s.publisher.Publish(ctx, events.EndedSubject(outcome.AuctionID), event); err != nil {
		utils.Warn("lifecycle: failed to publish auction ended event", map[string]any{
			"auction_id": outcome.AuctionID,
			"error":      err.Error(),
		})
	}
}
