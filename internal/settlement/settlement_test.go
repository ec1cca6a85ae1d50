package settlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// amountIs matches a decimal argument by value rather than representation
type amountIs string

func (a amountIs) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(decimal.RequireFromString(string(a)))
}

func (a amountIs) String() string { return fmt.Sprintf("is amount %s", string(a)) }

func TestSettler_Settle(t *testing.T) {
	auction := model.Auction{
		AuctionID:    7,
		SellerID:     "seller",
		Title:        "Vintage Camera",
		CurrentPrice: decimal.RequireFromString("150.00"),
		ClosingDate:  time.Now().Add(-time.Minute),
		IsActive:     true,
	}
	errDisk := errors.New("disk I/O error")
	topBid := model.Bid{BidID: 3, AuctionID: 7, UserID: "winner", Amount: decimal.RequireFromString("150.00")}

	tests := []struct {
		name        string
		mockSetup   func(t *testing.T, tx *repository.MockAuctionTx)
		expectSold  bool
		expectError error
	}{
		{
			name: "sold_credits_seller_and_records_win",
			mockSetup: func(t *testing.T, tx *repository.MockAuctionTx) {
				tx.EXPECT().GetTopBid(gomock.Any(), int64(7)).Return(topBid, nil)
				tx.EXPECT().GetUserForUpdate(gomock.Any(), "seller").
					Return(model.User{UserID: "seller", Balance: decimal.RequireFromString("1000.00")}, nil)
				tx.EXPECT().UpdateBalance(gomock.Any(), "seller", amountIs("1000.00"), amountIs("1150.00")).Return(nil)
				tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *model.BalanceTransaction) error {
						require.Equal(t, model.TxAuctionWinCredit, entry.Type)
						require.Equal(t, "seller", entry.UserID)
						require.Equal(t, int64(3), *entry.BidID)
						return nil
					})
				tx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, entry *model.BalanceTransaction) error {
						require.Equal(t, model.TxAuctionWin, entry.Type)
						require.Equal(t, "winner", entry.UserID)
						require.True(t, entry.Amount.Equal(topBid.Amount))
						return nil
					})
			},
			expectSold: true,
		},
		{
			name: "no_bids_is_unsold",
			mockSetup: func(t *testing.T, tx *repository.MockAuctionTx) {
				tx.EXPECT().GetTopBid(gomock.Any(), int64(7)).Return(model.Bid{}, auctionerrors.ErrNoBids)
			},
			expectSold: false,
		},
		{
			name: "top_bid_read_fails",
			mockSetup: func(t *testing.T, tx *repository.MockAuctionTx) {
				tx.EXPECT().GetTopBid(gomock.Any(), int64(7)).Return(model.Bid{}, errDisk)
			},
			expectError: errDisk,
		},
		{
			name: "seller_account_missing",
			mockSetup: func(t *testing.T, tx *repository.MockAuctionTx) {
				tx.EXPECT().GetTopBid(gomock.Any(), int64(7)).Return(topBid, nil)
				tx.EXPECT().GetUserForUpdate(gomock.Any(), "seller").Return(model.User{}, auctionerrors.ErrUserNotFound)
			},
			expectError: auctionerrors.ErrUserNotFound,
		},
		{
			name: "seller_balance_conflict",
			mockSetup: func(t *testing.T, tx *repository.MockAuctionTx) {
				tx.EXPECT().GetTopBid(gomock.Any(), int64(7)).Return(topBid, nil)
				tx.EXPECT().GetUserForUpdate(gomock.Any(), "seller").
					Return(model.User{UserID: "seller", Balance: decimal.RequireFromString("1000.00")}, nil)
				tx.EXPECT().UpdateBalance(gomock.Any(), "seller", gomock.Any(), gomock.Any()).Return(auctionerrors.ErrBalanceConflict)
			},
			expectError: auctionerrors.ErrBalanceConflict,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			tx := repository.NewMockAuctionTx(ctrl)
			tc.mockSetup(t, tx)

			settler := NewSettler(ledger.NewLedger(repository.NewMockAuctionDB(ctrl)))
			outcome, err := settler.Settle(context.Background(), tx, auction, model.PathExpirySweep)

			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				return
			}

			require.NoError(t, err)
			require.Equal(t, int64(7), outcome.AuctionID)
			require.Equal(t, "seller", outcome.SellerID)
			require.Equal(t, tc.expectSold, outcome.Sold)
			if tc.expectSold {
				require.NotNil(t, outcome.WinningBid)
				require.Equal(t, "winner", outcome.WinningBid.UserID)
			} else {
				require.Nil(t, outcome.WinningBid)
			}
		})
	}
}
