package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-engine/internal/auth"
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/config"
	"auction-engine/internal/events"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/internal/sweeper"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("unknown LOG_LEVEL, keeping info", map[string]any{"level": cfg.LogLevel})
	}
	if cfg.UsesDevSecret() {
		utils.Warn("JWT_SECRET not set, using the development secret", nil)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
	}
	defer store.Close()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	l := ledger.NewLedger(store)
	biddingSvc := bidding.NewBiddingService(store, l,
		bidding.WithPublisher(publisher),
		bidding.WithMaxAttempts(cfg.BidRetries),
	)
	auctionSvc := lifecycle.NewService(store, settlement.NewSettler(l),
		lifecycle.WithPublisher(publisher),
	)

	if cfg.SweepInterval > 0 {
		locker, closeLocker := newLocker(cfg)
		defer closeLocker()
		go sweeper.NewScheduler(auctionSvc, locker, cfg.SweepInterval).Run(ctx)
	}

	router := server.SetupRouter(server.Services{
		Bidding:  biddingSvc,
		Auctions: auctionSvc,
		Ledger:   l,
		Tokens:   auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": cfg.Addr(), "driver": cfg.DBDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// newPublisher connects to NATS when configured and falls back to discarding events
func newPublisher(cfg config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		utils.Warn("event publishing disabled", map[string]any{"error": err.Error()})
		return events.NopPublisher{}
	}
	utils.Info("publishing events to NATS", map[string]any{"url": cfg.NATSURL})
	return pub
}

// newLocker uses Redis for the sweep lease when configured, otherwise a
// process-local lease. The returned func releases the Redis connection.
func newLocker(cfg config.Config) (sweeper.Locker, func()) {
	noop := func() {}
	if cfg.RedisAddr == "" {
		return sweeper.NewLocalLocker(), noop
	}
	locker, err := sweeper.NewRedisLocker(cfg.RedisAddr)
	if err != nil {
		utils.Warn("redis unavailable, sweep lease is process-local", map[string]any{"error": err.Error()})
		return sweeper.NewLocalLocker(), noop
	}
	return locker, func() {
		if err := locker.Close(); err != nil {
			utils.Warn("failed to close redis locker", map[string]any{"error": err.Error()})
		}
	}
}
