package domain

import "time"

// Side of a fill or order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// FollowerStatus is the lifecycle state of a copied order.
type FollowerStatus string

const (
	StatusPending  FollowerStatus = "PENDING"
	StatusExecuted FollowerStatus = "EXECUTED"
	StatusRejected FollowerStatus = "REJECTED"
)

// RawFill is a fill as observed on the venue, before any validation.
type RawFill struct {
	Hash      string // venue-assigned fill id, globally unique
	Wallet    string
	MarketID  string // condition id
	OutcomeID string // token id
	Side      Side
	Size      float64
	Price     float64
	Timestamp time.Time
}

// Valid reports whether the fill can produce a trade at all.
// Invalid fills are discarded silently, never rejected.
func (f RawFill) Valid() bool {
	return f.Hash != "" && f.Size > 0 && f.Price > 0
}

// LeaderTrade is an observed fill on a leader wallet. Immutable once
// recorded; TradeHash carries the dedup invariant.
type LeaderTrade struct {
	ID            int64
	WalletAddress string
	MarketID      string
	OutcomeID     string
	Side          Side
	Size          float64
	Price         float64
	TradedAt      time.Time
	TradeHash     string
}

// FollowerTrade is the order we derived from a LeaderTrade. Exactly one
// per leader trade that passed sanity filtering; rejections are a valid
// terminal status, not an error.
type FollowerTrade struct {
	ID              string // local UUID
	LeaderTradeID   int64
	MarketID        string
	OutcomeID       string
	Side            Side
	Size            float64
	Price           float64
	Status          FollowerStatus
	RejectionReason string // set iff Status == REJECTED
	IsDryRun        bool
	OrderID         string // venue order id, or synthetic id in dry-run
	ExecutedAt      time.Time
}

// Notional is the USDC value of the trade.
func (t FollowerTrade) Notional() float64 {
	return t.Size * t.Price
}

// OrderRequest is everything needed to place one limit order.
type OrderRequest struct {
	MarketID   string
	OutcomeID  string
	Side       Side
	Size       float64
	LimitPrice float64
}

// Notional is the USDC value of the requested order.
func (r OrderRequest) Notional() float64 {
	return r.Size * r.LimitPrice
}

// OrderResult is the venue's answer to an order placement.
type OrderResult struct {
	Success bool
	OrderID string
	ErrMsg  string
}
