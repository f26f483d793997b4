package ports

import (
	"context"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// OrderExecutor places copy orders on the venue.
//
// Two implementations exist: the real CLOB trading client, and a
// dry-run executor that returns deterministic synthetic successes
// without any network I/O. The engine picks one per cycle based on
// the bot's dry-run flag.
type OrderExecutor interface {
	// PlaceOrder signs and submits a limit order. A venue-side refusal
	// comes back as OrderResult{Success: false}, not as an error;
	// errors are reserved for transport/auth failures.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}
