package ports

import (
	"context"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// WalletRegistry owns the mutable set of leader wallets being followed.
// Membership changes take effect on the next cycle, never mid-cycle.
type WalletRegistry interface {
	// AddWallet registers a new leader wallet. Returns ErrWalletExists
	// if the address is already registered.
	AddWallet(ctx context.Context, address, nickname string, copyPct float64) (domain.LeaderWallet, error)

	// RemoveWallet hard-deletes a wallet. Returns ErrWalletReferenced
	// if any leader trade references the address; archive with
	// SetWalletActive(false) instead in that case.
	RemoveWallet(ctx context.Context, address string) error

	// SetWalletActive toggles whether the wallet is followed.
	SetWalletActive(ctx context.Context, address string, active bool) error

	// SetCopyPercentage changes the fraction of leader size replicated.
	SetCopyPercentage(ctx context.Context, address string, pct float64) error

	// ActiveWallets returns the wallets currently being followed, in
	// stable (creation) order.
	ActiveWallets(ctx context.Context) ([]domain.LeaderWallet, error)

	// ListWallets returns every registered wallet, active or not.
	ListWallets(ctx context.Context) ([]domain.LeaderWallet, error)
}
