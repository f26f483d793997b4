package domain

import "time"

// BotConfig is the global mutable bot state. It is persisted by the
// storage adapter and re-read at the start of every cycle so operator
// changes apply without a restart. Components receive it by parameter,
// never through a global.
type BotConfig struct {
	Running           bool
	DryRun            bool
	RiskPct           float64       // default copy percentage when a wallet has none
	Interval          time.Duration // polling cadence
	MaxTradeSize      float64       // max notional per single copy order, USDC
	MaxWalletExposure float64       // max open notional per leader wallet, USDC
	MinOrderSize      float64       // copy orders below this notional are rejected
	MaxFillAge        time.Duration // fills older than this are not executed
	Lookback          time.Duration // history window when a wallet has no recorded trades
}

// CopyPctFor returns the effective copy percentage for a wallet,
// falling back to the global risk percentage.
func (c BotConfig) CopyPctFor(w LeaderWallet) float64 {
	if w.CopyPct > 0 {
		return w.CopyPct
	}
	return c.RiskPct
}
