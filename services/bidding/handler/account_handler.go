package handler

import (
	"context"
	"net/http"

	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=account_handler.go -destination=mock_account_handler.go -package=handler

type LedgerInterface interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	History(ctx context.Context, userID string) ([]model.BalanceTransaction, error)
}

type AccountHandler struct {
	ledger LedgerInterface
}

func NewAccountHandler(ledger LedgerInterface) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// GetBalanceHandler handles GET /user/balance
func (h *AccountHandler) GetBalanceHandler(c *gin.Context) {
	userID := helpers.UserID(c)
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBalanceHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.BalanceResponse{
		UserID:  userID,
		Balance: model.FormatMoney(balance),
	}, "balance retrieved successfully")
}

// GetBalanceHistoryHandler handles GET /user/balance-history
func (h *AccountHandler) GetBalanceHistoryHandler(c *gin.Context) {
	userID := helpers.UserID(c)
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.ledger.History(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBalanceHistoryHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewTransactionResponses(entries), "balance history retrieved successfully")
	helpers.LogSuccess("GetBalanceHistoryHandler", "balance history retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(entries),
	})
}
