package domain

import (
	"fmt"
	"strings"
	"time"
)

// LeaderWallet is a wallet whose trades are being copied.
type LeaderWallet struct {
	ID         int64
	Address    string  // Polygon address (0x..., 42 chars)
	Nickname   string
	Active     bool
	CopyPct    float64 // fraction of leader size to replicate, e.g. 10 = 10%
	CreatedAt  time.Time
}

// ValidateAddress checks the basic shape of a Polygon wallet address.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return fmt.Errorf("invalid wallet address %q: want 0x-prefixed 42 chars", address)
	}
	return nil
}

// WalletStats summarizes copy activity for one leader wallet.
type WalletStats struct {
	Address      string
	Nickname     string
	TradeCount   int
	Executed     int
	Rejected     int
	OpenNotional float64
	LastTradeAt  time.Time // zero if no leader trade recorded yet
}

// ActivityEntry is one row of the recent-activity feed: a follower
// trade joined with the nickname of the wallet it was copied from.
type ActivityEntry struct {
	Trade    FollowerTrade
	Nickname string
}

// TotalStats aggregates activity across all wallets.
type TotalStats struct {
	TotalWallets  int
	ActiveWallets int
	CopiedTrades  int
	Executed      int
	Rejected      int
	OpenNotional  float64
}
