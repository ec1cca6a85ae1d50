package handler

import (
	"context"
	"net/http"

	bidding "auction-engine/internal/biddingService"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_handler.go -package=handler

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, auctionID int64, bidderID string, amount decimal.Decimal) (bidding.BidResult, error)
	GetBidsForAuction(ctx context.Context, auctionID int64) ([]model.Bid, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /auctions/:id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID, ok := helpers.AuctionIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid auction ID or bid amount")
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	userID := helpers.UserID(c)
	result, err := h.service.PlaceBid(c.Request.Context(), auctionID, userID, *req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
			"amount":     req.Amount.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(result.Bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     result.Bid.BidID,
		"auction_id": auctionID,
		"user_id":    userID,
		"amount":     model.FormatMoney(result.Bid.Amount),
		"refunded":   result.Refund != nil,
	})
}

// GetBidsHandler handles GET /auctions/:id/bids
func (h *BiddingHandler) GetBidsHandler(c *gin.Context) {
	auctionID, ok := helpers.AuctionIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid auction ID")
		return
	}

	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}
