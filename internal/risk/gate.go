// Package risk decides whether a candidate copy order may proceed.
package risk

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/alejandrodnm/polycopy/internal/ports"
)

// Limits are the thresholds the gate enforces. They come from the
// BotConfig read at cycle start, so operator changes apply next cycle.
type Limits struct {
	MaxTradeSize      float64 // USDC per order
	MaxWalletExposure float64 // USDC open per leader wallet
	MinOrderSize      float64 // USDC; smaller orders are rejected as dust
}

// Gate evaluates exposure, sizing, and duplicate-position rules against
// the ledger. It is stateless per call: every Evaluate reads current
// ledger state so concurrent cycles can't act on a stale exposure view.
type Gate struct {
	ledger ports.Ledger
}

// NewGate creates a Gate backed by the given ledger.
func NewGate(ledger ports.Ledger) *Gate {
	return &Gate{ledger: ledger}
}

// Evaluate runs the checks in order, short-circuiting on the first
// failure. The reason string is persisted verbatim on rejected
// follower trades, so it is written for the operator, not for code.
func (g *Gate) Evaluate(ctx context.Context, wallet string, req domain.OrderRequest, limits Limits) (bool, string, error) {
	notional := req.Notional()

	if limits.MinOrderSize > 0 && notional < limits.MinOrderSize {
		return false, fmt.Sprintf("Order notional $%.2f below minimum $%.2f", notional, limits.MinOrderSize), nil
	}

	if notional > limits.MaxTradeSize {
		return false, fmt.Sprintf("Trade size $%.2f exceeds max $%.2f", notional, limits.MaxTradeSize), nil
	}

	exposure, err := g.ledger.WalletExposure(ctx, wallet)
	if err != nil {
		return false, "", fmt.Errorf("risk.Evaluate: wallet exposure: %w", err)
	}
	if exposure+notional > limits.MaxWalletExposure {
		return false, fmt.Sprintf("Wallet exposure $%.2f exceeds max $%.2f", exposure+notional, limits.MaxWalletExposure), nil
	}

	open, err := g.ledger.HasOpenPosition(ctx, req.MarketID, req.OutcomeID, req.Side)
	if err != nil {
		return false, "", fmt.Errorf("risk.Evaluate: open position: %w", err)
	}
	if open {
		return false, "Duplicate active position detected", nil
	}

	return true, "OK", nil
}
