package models

// SettlementPath identifies which termination path concluded an auction
type SettlementPath string

const (
	PathManualEnd   SettlementPath = "manual_end"
	PathExpirySweep SettlementPath = "expiry_sweep"
)

// SettlementOutcome is the result of resolving an auction's top bid
type SettlementOutcome struct {
	AuctionID  int64  `json:"auction_id"`
	Sold       bool   `json:"sold"`
	WinningBid *Bid   `json:"winning_bid,omitempty"`
	SellerID   string `json:"seller_id"`
}

// SweepResult reports what happened to one auction during an expiry sweep
type SweepResult struct {
	AuctionID int64  `json:"auction_id"`
	Status    string `json:"status"`
	Sold      bool   `json:"sold"`
	Error     string `json:"error,omitempty"`
}

const (
	SweepStatusSettled = "settled"
	SweepStatusSkipped = "skipped"
	SweepStatusFailed  = "failed"
)
