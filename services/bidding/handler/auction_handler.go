package handler

import (
	"context"
	"fmt"
	"net/http"

	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, sellerID string, in lifecycle.NewAuction) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID int64) (model.Auction, error)
	Lock(ctx context.Context, auctionID int64, actorID string, locked bool) error
	EndManually(ctx context.Context, auctionID int64, actorID string) (model.SettlementOutcome, error)
	SweepExpired(ctx context.Context) ([]model.SweepResult, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	sellerID := helpers.UserID(c)
	auction, err := h.service.CreateAuction(c.Request.Context(), sellerID, lifecycle.NewAuction{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: *req.StartingPrice,
		ClosingDate:   req.ClosingDate,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  sellerID,
	})
}

// GetAuctionHandler handles GET /auctions/:id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.AuctionIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid auction ID")
		return
	}

	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction retrieved successfully")
}

// LockAuctionHandler handles POST /auctions/:id/lock
func (h *AuctionHandler) LockAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.AuctionIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid auction ID")
		return
	}

	var req helpers.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LockAuctionHandler", err)
		return
	}

	userID := helpers.UserID(c)
	if err := h.service.Lock(c.Request.Context(), auctionID, userID, *req.Lock); err != nil {
		helpers.HandleServiceError(c, "LockAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponseFields(c, http.StatusOK, gin.H{"locked": *req.Lock}, "auction lock updated")
	helpers.LogSuccess("LockAuctionHandler", "auction lock updated", map[string]any{
		"auction_id": auctionID,
		"locked":     *req.Lock,
	})
}

// EndAuctionHandler handles POST /auctions/:id/end
func (h *AuctionHandler) EndAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.AuctionIDParam(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid auction ID")
		return
	}

	userID := helpers.UserID(c)
	outcome, err := h.service.EndManually(c.Request.Context(), auctionID, userID)
	if err != nil {
		helpers.HandleServiceError(c, "EndAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponseFields(c, http.StatusOK, gin.H{"ended": true, "sold": outcome.Sold}, "auction ended")
	helpers.LogSuccess("EndAuctionHandler", "auction ended", map[string]any{
		"auction_id": auctionID,
		"sold":       outcome.Sold,
	})
}

// ProcessEndedHandler handles POST /auctions/process-ended
func (h *AuctionHandler) ProcessEndedHandler(c *gin.Context) {
	results, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ProcessEndedHandler", err, nil)
		return
	}

	failed := 0
	for _, r := range results {
		if r.Status == model.SweepStatusFailed {
			failed++
		}
	}

	message := fmt.Sprintf("Processed %d ended auctions", len(results))
	utils.JSONResponseFields(c, http.StatusOK, gin.H{"results": results}, message)
	helpers.LogSuccess("ProcessEndedHandler", "expired auctions processed", map[string]any{
		"processed": len(results),
		"failed":    failed,
	})
}
