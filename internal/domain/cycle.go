package domain

import "time"

// CycleResult is everything one polling cycle produced. Errors on
// individual wallets are counted, never fatal to the cycle.
type CycleResult struct {
	StartedAt    time.Time
	Duration     time.Duration
	DryRun       bool
	Wallets      int // active wallets iterated
	WalletErrors int // wallets skipped this cycle (fetch failed)
	FillsFetched int // raw fills returned by the venue
	NewTrades    int // leader trades recorded for the first time
	Executed     int
	Rejected     int
	Trades       []FollowerTrade // follower trades produced this cycle
}
