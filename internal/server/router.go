package server

import (
	"net/http"

	"auction-engine/internal/auth"
	"auction-engine/internal/metrics"
	handler "auction-engine/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles what the routes are served by
type Services struct {
	Bidding  handler.BiddingServiceInterface
	Auctions handler.AuctionServiceInterface
	Ledger   interface {
		handler.LedgerInterface
		AccountOpener
	}
	Tokens *auth.JWTManager
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	auctionHandler := handler.NewAuctionHandler(svc.Auctions)
	accountHandler := handler.NewAccountHandler(svc.Ledger)
	requireAuth := RequireAuth(svc.Tokens, svc.Ledger)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:id/bids", biddingHandler.GetBidsHandler)

		// triggered by the scheduler collaborator
		auctions.POST("/process-ended", auctionHandler.ProcessEndedHandler)

		protected := auctions.Group("", requireAuth)
		protected.POST("", auctionHandler.CreateAuctionHandler)
		protected.POST("/:id/bids", biddingHandler.PlaceBidHandler)
		protected.POST("/:id/lock", auctionHandler.LockAuctionHandler)
		protected.POST("/:id/end", auctionHandler.EndAuctionHandler)
	}

	user := router.Group("/user", requireAuth)
	{
		user.GET("/balance", accountHandler.GetBalanceHandler)
		user.GET("/balance-history", accountHandler.GetBalanceHistoryHandler)
	}

	return router
}
