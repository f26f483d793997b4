package polymarket

// dryrun.go — order executor for test mode.
//
// Never touches the network. The synthetic order id is derived from the
// request itself, so the same leader fill always produces the same id —
// risk-free testing depends on this being deterministic, not just fast.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// DryRunExecutor implements ports.OrderExecutor with synthetic fills.
type DryRunExecutor struct{}

// NewDryRunExecutor creates the test-mode executor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{}
}

// PlaceOrder returns a deterministic synthetic success without any I/O.
func (d *DryRunExecutor) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%.6f|%.6f",
		req.MarketID, req.OutcomeID, req.Side, req.Size, req.LimitPrice))
	return domain.OrderResult{
		Success: true,
		OrderID: "dryrun-" + hex.EncodeToString(sum[:6]),
	}, nil
}
