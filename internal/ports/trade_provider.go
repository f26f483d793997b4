package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// FillProvider fetches recent fills for a leader wallet from the venue.
type FillProvider interface {
	// FetchWalletFills returns confirmed fills for the wallet strictly
	// after since. Malformed individual records are skipped, not errors.
	// Failures are classified as network, auth, or venue errors (see
	// the polymarket adapter) so the engine can scope its reaction.
	FetchWalletFills(ctx context.Context, address string, since time.Time) ([]domain.RawFill, error)
}
