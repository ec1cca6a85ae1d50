package bidding

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/events"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/settlement"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	store, err := repository.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "auctions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store repository.AuctionDB, userID, balance string) {
	t.Helper()
	require.NoError(t, store.EnsureUser(context.Background(), userID, userID, amount(balance)))
}

func seedAuction(t *testing.T, store repository.AuctionDB, seller, price string, closing time.Time) model.Auction {
	t.Helper()
	seedUser(t, store, seller, "1000.00")
	auction := model.Auction{
		SellerID:      seller,
		Title:         "Road Bike",
		StartingPrice: amount(price),
		CurrentPrice:  amount(price),
		ClosingDate:   closing,
		IsActive:      true,
	}
	require.NoError(t, store.CreateAuction(context.Background(), &auction))
	return auction
}

func balanceOf(t *testing.T, store repository.AuctionDB, userID string) decimal.Decimal {
	t.Helper()
	user, err := store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return user.Balance
}

func requireAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, actual.Equal(amount(expected)), "expected %s, got %s", expected, model.FormatMoney(actual))
}

// Tests the checks PlaceBid runs before it opens a transaction
func TestBiddingService_PlaceBid_Validation(t *testing.T) {
	now := time.Now().UTC()
	open := model.Auction{
		AuctionID:    1,
		SellerID:     "seller",
		CurrentPrice: amount("100.00"),
		ClosingDate:  now.Add(time.Hour),
		IsActive:     true,
	}

	tests := []struct {
		name          string
		auctionID     int64
		userID        string
		amount        string
		mockSetup     func(repo *repository.MockAuctionDB)
		expectedError error
	}{
		{
			name:          "missing_identity",
			auctionID:     1,
			userID:        "",
			amount:        "120.00",
			mockSetup:     func(repo *repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrUnauthorized,
		},
		{
			name:          "malformed_auction_id",
			auctionID:     0,
			userID:        "user1",
			amount:        "120.00",
			mockSetup:     func(repo *repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "zero_amount",
			auctionID:     1,
			userID:        "user1",
			amount:        "0",
			mockSetup:     func(repo *repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "negative_amount",
			auctionID:     1,
			userID:        "user1",
			amount:        "-50",
			mockSetup:     func(repo *repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:          "sub_cent_amount",
			auctionID:     1,
			userID:        "user1",
			amount:        "120.005",
			mockSetup:     func(repo *repository.MockAuctionDB) {},
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:      "auction_not_found",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(model.Auction{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedError: auctionerrors.ErrAuctionNotFound,
		},
		{
			name:      "auction_inactive",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				ended := open
				ended.IsActive = false
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(ended, nil)
			},
			expectedError: auctionerrors.ErrAuctionClosed,
		},
		{
			name:      "auction_locked",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				locked := open
				locked.IsLocked = true
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(locked, nil)
			},
			expectedError: auctionerrors.ErrAuctionClosed,
		},
		{
			name:      "auction_past_closing",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				expired := open
				expired.ClosingDate = now.Add(-time.Second)
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(expired, nil)
			},
			expectedError: auctionerrors.ErrAuctionClosed,
		},
		{
			name:      "bid_equal_to_current_price",
			auctionID: 1,
			userID:    "user1",
			amount:    "100.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(open, nil)
			},
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "bid_below_current_price",
			auctionID: 1,
			userID:    "user1",
			amount:    "99.99",
			mockSetup: func(repo *repository.MockAuctionDB) {
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(open, nil)
			},
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "bidder_without_account",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(open, nil)
				repo.EXPECT().GetUser(gomock.Any(), "user1").Return(model.User{}, auctionerrors.ErrUserNotFound)
			},
			expectedError: auctionerrors.ErrUserNotFound,
		},
		{
			name:      "insufficient_funds",
			auctionID: 1,
			userID:    "user1",
			amount:    "120.00",
			mockSetup: func(repo *repository.MockAuctionDB) {
				repo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(open, nil)
				repo.EXPECT().GetUser(gomock.Any(), "user1").Return(model.User{UserID: "user1", Balance: amount("119.99")}, nil)
			},
			expectedError: auctionerrors.ErrInsufficientFunds,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			tc.mockSetup(mockRepo)
			service := NewBiddingService(mockRepo, ledger.NewLedger(mockRepo), WithClock(func() time.Time { return now }))

			_, err := service.PlaceBid(context.Background(), tc.auctionID, tc.userID, amount(tc.amount))
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
		})
	}
}

// Tests that a lost compare-and-swap is retried and the retry budget is bounded
func TestBiddingService_PlaceBid_RetriesConflicts(t *testing.T) {
	now := time.Now().UTC()
	open := model.Auction{AuctionID: 1, SellerID: "seller", CurrentPrice: amount("100.00"), ClosingDate: now.Add(time.Hour), IsActive: true}

	tests := []struct {
		name        string
		failures    int
		maxAttempts int
		expectError bool
	}{
		{name: "succeeds_after_one_conflict", failures: 1, maxAttempts: 3},
		{name: "succeeds_on_last_attempt", failures: 2, maxAttempts: 3},
		{name: "gives_up_after_budget", failures: 3, maxAttempts: 3, expectError: true},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			mockRepo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(open, nil)
			mockRepo.EXPECT().GetUser(gomock.Any(), "user1").Return(model.User{UserID: "user1", Balance: amount("500.00")}, nil)

			attempts := 0
			mockRepo.EXPECT().WithTx(gomock.Any(), gomock.Any()).
				Times(min(tc.failures+1, tc.maxAttempts)).
				DoAndReturn(func(ctx context.Context, fn func(repository.AuctionTx) error) error {
					attempts++
					if attempts <= tc.failures {
						return fmt.Errorf("commit: %w", auctionerrors.ErrTxConflict)
					}
					tx := repository.NewMockAuctionTx(ctrl)
					tx.EXPECT().GetAuctionForUpdate(gomock.Any(), int64(1)).Return(open, nil)
					tx.EXPECT().GetTopBid(gomock.Any(), int64(1)).Return(model.Bid{}, auctionerrors.ErrNoBids)
					tx.EXPECT().InsertBid(gomock.Any(), gomock.Any()).DoAndReturn(
						func(_ context.Context, bid *model.Bid) error {
							bid.BidID = 42
							return nil
						})
					tx.EXPECT().GetUserForUpdate(gomock.Any(), "user1").Return(model.User{UserID: "user1", Balance: amount("500.00")}, nil)
					tx.EXPECT().UpdateBalance(gomock.Any(), "user1", gomock.Any(), gomock.Any()).Return(nil)
					tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
					tx.EXPECT().UpdateAuctionPrice(gomock.Any(), int64(1), gomock.Any(), gomock.Any()).Return(nil)
					return fn(tx)
				})

			service := NewBiddingService(mockRepo, ledger.NewLedger(mockRepo),
				WithClock(func() time.Time { return now }), WithMaxAttempts(tc.maxAttempts))

			result, err := service.PlaceBid(context.Background(), 1, "user1", amount("120.00"))
			if tc.expectError {
				require.ErrorIs(t, err, auctionerrors.ErrTxConflict)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(42), result.Bid.BidID)
			require.Nil(t, result.Refund)
		})
	}
}

func TestBiddingService_PlaceBid_PriceBoundary(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	service := NewBiddingService(store, ledger.NewLedger(store))
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "user1", "1000.00")

	_, err := service.PlaceBid(context.Background(), auction.AuctionID, "user1", amount("100.00"))
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	result, err := service.PlaceBid(context.Background(), auction.AuctionID, "user1", amount("100.01"))
	require.NoError(t, err)
	requireAmount(t, "100.01", result.Bid.Amount)
	requireAmount(t, "100.00", result.PreviousPrice)

	stored, err := store.GetAuction(context.Background(), auction.AuctionID)
	require.NoError(t, err)
	requireAmount(t, "100.01", stored.CurrentPrice)
}

func TestBiddingService_PlaceBid_InsufficientFundsLeavesNoTrace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	service := NewBiddingService(store, ledger.NewLedger(store))
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "poor", "150.00")

	_, err := service.PlaceBid(ctx, auction.AuctionID, "poor", amount("150.01"))
	require.ErrorIs(t, err, auctionerrors.ErrInsufficientFunds)

	bids, err := store.GetBidsByAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Empty(t, bids)

	history, err := store.ListTransactions(ctx, "poor", ledger.HistoryLimit)
	require.NoError(t, err)
	require.Empty(t, history)
	requireAmount(t, "150.00", balanceOf(t, store, "poor"))
}

// failingPriceStore fails the price update of every transaction after the
// bid, hold and refund have been written
type failingPriceStore struct {
	*repository.SQLStore
}

type failingPriceTx struct {
	repository.AuctionTx
}

func (s failingPriceStore) WithTx(ctx context.Context, fn func(tx repository.AuctionTx) error) error {
	return s.SQLStore.WithTx(ctx, func(tx repository.AuctionTx) error {
		return fn(failingPriceTx{tx})
	})
}

func (failingPriceTx) UpdateAuctionPrice(context.Context, int64, decimal.Decimal, decimal.Decimal) error {
	return errors.New("disk full")
}

func TestBiddingService_PlaceBid_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "alice", "500.00")
	seedUser(t, store, "bob", "500.00")

	service := NewBiddingService(store, ledger.NewLedger(store))
	_, err := service.PlaceBid(ctx, auction.AuctionID, "alice", amount("120.00"))
	require.NoError(t, err)

	broken := failingPriceStore{store}
	failing := NewBiddingService(broken, ledger.NewLedger(broken))
	_, err = failing.PlaceBid(ctx, auction.AuctionID, "bob", amount("150.00"))
	require.Error(t, err)

	bids, err := store.GetBidsByAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, "alice", bids[0].UserID)

	requireAmount(t, "380.00", balanceOf(t, store, "alice"))
	requireAmount(t, "500.00", balanceOf(t, store, "bob"))

	aliceHistory, err := store.ListTransactions(ctx, "alice", ledger.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, aliceHistory, 1)
	bobHistory, err := store.ListTransactions(ctx, "bob", ledger.HistoryLimit)
	require.NoError(t, err)
	require.Empty(t, bobHistory)

	stored, err := store.GetAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	requireAmount(t, "120.00", stored.CurrentPrice)
}

func TestBiddingService_PlaceBid_RefundsOutbidUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	pub := &events.MemoryPublisher{}
	service := NewBiddingService(store, ledger.NewLedger(store), WithPublisher(pub))
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "alice", "500.00")
	seedUser(t, store, "bob", "500.00")

	first, err := service.PlaceBid(ctx, auction.AuctionID, "alice", amount("120.00"))
	require.NoError(t, err)
	require.Nil(t, first.Refund)

	second, err := service.PlaceBid(ctx, auction.AuctionID, "bob", amount("150.00"))
	require.NoError(t, err)
	require.NotNil(t, second.Refund)
	require.Equal(t, "alice", second.Refund.UserID)
	require.Equal(t, model.TxBidRefund, second.Refund.Type)
	require.Equal(t, first.Bid.BidID, *second.Refund.BidID)
	require.Equal(t, second.Bid.BidID, *second.Hold.BidID)

	requireAmount(t, "500.00", balanceOf(t, store, "alice"))
	requireAmount(t, "350.00", balanceOf(t, store, "bob"))

	aliceHistory, err := store.ListTransactions(ctx, "alice", ledger.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, aliceHistory, 2)
	require.Equal(t, model.TxBidRefund, aliceHistory[0].Type)
	requireAmount(t, "120.00", aliceHistory[0].Amount)
	require.Equal(t, model.TxBidHold, aliceHistory[1].Type)
	require.Equal(t, "Road Bike", aliceHistory[0].AuctionTitle)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	placed, ok := msgs[1].Event.(events.BidPlaced)
	require.True(t, ok)
	require.Equal(t, events.BidSubject(auction.AuctionID), msgs[1].Subject)
	require.Equal(t, "150.00", placed.Amount)
	require.Equal(t, "120.00", placed.PreviousPrice)
	require.Equal(t, "alice", placed.RefundedUser)
}

func TestBiddingService_PlaceBid_SelfOutbidDoesNotRefund(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	service := NewBiddingService(store, ledger.NewLedger(store))
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "alice", "500.00")

	_, err := service.PlaceBid(ctx, auction.AuctionID, "alice", amount("120.00"))
	require.NoError(t, err)
	result, err := service.PlaceBid(ctx, auction.AuctionID, "alice", amount("130.00"))
	require.NoError(t, err)
	require.Nil(t, result.Refund)

	// both holds stay in place
	requireAmount(t, "250.00", balanceOf(t, store, "alice"))

	history, err := store.ListTransactions(ctx, "alice", ledger.HistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, entry := range history {
		require.Equal(t, model.TxBidHold, entry.Type)
	}
}

func TestBiddingService_PlaceBid_ClockStepsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Millisecond)
	now := base
	service := NewBiddingService(store, ledger.NewLedger(store), WithClock(func() time.Time { return now }))
	auction := seedAuction(t, store, "seller", "100.00", base.Add(time.Hour))
	for _, u := range []string{"u1", "u2", "u3"} {
		seedUser(t, store, u, "500.00")
	}

	_, err := service.PlaceBid(ctx, auction.AuctionID, "u1", amount("120.00"))
	require.NoError(t, err)

	now = base.Add(-2 * time.Second)
	second, err := service.PlaceBid(ctx, auction.AuctionID, "u2", amount("150.00"))
	require.NoError(t, err)
	require.NotNil(t, second.Refund)
	require.Equal(t, "u1", second.Refund.UserID)
	require.False(t, second.Bid.CreatedAt.Before(base), "bid dated before the bid it beat")

	third, err := service.PlaceBid(ctx, auction.AuctionID, "u3", amount("200.00"))
	require.NoError(t, err)
	require.NotNil(t, third.Refund)
	require.Equal(t, "u2", third.Refund.UserID)

	requireAmount(t, "500.00", balanceOf(t, store, "u1"))
	requireAmount(t, "500.00", balanceOf(t, store, "u2"))
	requireAmount(t, "300.00", balanceOf(t, store, "u3"))

	top, err := store.GetTopBid(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Equal(t, "u3", top.UserID)

	bids, err := service.GetBidsForAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.Equal(t, []string{"u3", "u2", "u1"}, []string{bids[0].UserID, bids[1].UserID, bids[2].UserID})
}

func TestBiddingService_PlaceBid_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	service := NewBiddingService(store, ledger.NewLedger(store), WithMaxAttempts(5))
	auction := seedAuction(t, store, "seller", "100.00", time.Now().Add(time.Hour))

	const bidders = 12
	for i := 0; i < bidders; i++ {
		seedUser(t, store, fmt.Sprintf("bidder-%d", i), "1000.00")
	}

	var wg sync.WaitGroup
	errs := make([]error, bidders)
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offer := amount("101.00").Add(decimal.NewFromInt(int64(i)))
			_, errs[i] = service.PlaceBid(ctx, auction.AuctionID, fmt.Sprintf("bidder-%d", i), offer)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)
			continue
		}
		accepted++
	}

	bids, err := store.GetBidsByAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, accepted)
	require.NotEmpty(t, bids)

	// newest first: amounts strictly decrease walking back in time
	for i := 1; i < len(bids); i++ {
		require.True(t, bids[i-1].Amount.GreaterThan(bids[i].Amount),
			"bid %d (%s) is not above bid %d (%s)", bids[i-1].BidID, bids[i-1].Amount, bids[i].BidID, bids[i].Amount)
	}

	stored, err := store.GetAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.True(t, stored.CurrentPrice.Equal(bids[0].Amount))

	// only the top bid remains held
	total := decimal.Zero
	for i := 0; i < bidders; i++ {
		total = total.Add(balanceOf(t, store, fmt.Sprintf("bidder-%d", i)))
	}
	requireAmount(t, "12000.00", total.Add(bids[0].Amount))
}

func TestBiddingService_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	l := ledger.NewLedger(store)
	service := NewBiddingService(store, l)
	auctions := lifecycle.NewService(store, settlement.NewSettler(l))

	auction := seedAuction(t, store, "S", "100.00", time.Now().Add(time.Hour))
	seedUser(t, store, "U1", "500.00")
	seedUser(t, store, "U2", "500.00")

	_, err := service.PlaceBid(ctx, auction.AuctionID, "U1", amount("120"))
	require.NoError(t, err)
	requireAmount(t, "380.00", balanceOf(t, store, "U1"))

	_, err = service.PlaceBid(ctx, auction.AuctionID, "U2", amount("150"))
	require.NoError(t, err)
	requireAmount(t, "350.00", balanceOf(t, store, "U2"))
	requireAmount(t, "500.00", balanceOf(t, store, "U1"))

	stored, err := store.GetAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	requireAmount(t, "150.00", stored.CurrentPrice)

	outcome, err := auctions.EndManually(ctx, auction.AuctionID, "S")
	require.NoError(t, err)
	require.True(t, outcome.Sold)
	requireAmount(t, "1150.00", balanceOf(t, store, "S"))

	stored, err = store.GetAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
	require.True(t, stored.IsLocked)
	require.True(t, stored.EndedManually)

	_, err = service.PlaceBid(ctx, auction.AuctionID, "U1", amount("200"))
	require.ErrorIs(t, err, auctionerrors.ErrAuctionClosed)
}

func TestBiddingService_GetBidsForAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	service := NewBiddingService(store, ledger.NewLedger(store))
	auction := seedAuction(t, store, "seller", "10.00", time.Now().Add(time.Hour))
	seedUser(t, store, "alice", "500.00")

	bids, err := service.GetBidsForAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Empty(t, bids)

	for _, offer := range []string{"11.00", "12.50", "20.00"} {
		_, err := service.PlaceBid(ctx, auction.AuctionID, "alice", amount(offer))
		require.NoError(t, err)
	}

	bids, err = service.GetBidsForAuction(ctx, auction.AuctionID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	requireAmount(t, "20.00", bids[0].Amount)
	requireAmount(t, "11.00", bids[2].Amount)

	_, err = service.GetBidsForAuction(ctx, auction.AuctionID+1)
	require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
}
