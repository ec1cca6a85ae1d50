package metrics

import (
	"errors"
	"net/http"

	"auction-engine/internal/auctionerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BidsTotal counts bid attempts by outcome
	BidsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "bids_total",
		Help:      "Bid attempts by outcome.",
	}, []string{"outcome"})

	// BidRetriesTotal counts bid transactions retried after losing a race
	BidRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "bid_retries_total",
		Help:      "Bid transactions retried after a concurrent update.",
	})

	// SettlementsTotal counts settlements by termination path and result
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "settlements_total",
		Help:      "Auction settlements by path and result.",
	}, []string{"path", "result"})

	// SweepRunsTotal counts expiry sweeps
	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "sweep_runs_total",
		Help:      "Expiry sweeps executed.",
	})

	// HTTPRequestDuration observes request latency by route and status
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auction",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler exposes the registered metrics for scraping
func Handler() http.Handler {
	return promhttp.Handler()
}

// BidOutcome maps a PlaceBid result to its metric label
func BidOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return "not_found"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return "closed"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, auctionerrors.ErrUnauthorized), errors.Is(err, auctionerrors.ErrUserNotFound):
		return "unauthorized"
	default:
		return "error"
	}
}
