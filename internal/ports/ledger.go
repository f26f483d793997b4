package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// Ledger is the durable record of every leader trade observed and every
// follower order derived from it. The trade hash is the dedup key space;
// the exposure queries are the risk gate's source of truth and must
// always read current state, never a cycle-scoped cache.
type Ledger interface {
	// HasSeen reports whether a trade hash is already recorded.
	HasSeen(ctx context.Context, tradeHash string) (bool, error)

	// RecordLeaderTrade inserts an observed leader fill. Returns
	// ErrDuplicateTrade if the hash is already present; callers treat
	// that as "already handled", not as a failure.
	RecordLeaderTrade(ctx context.Context, trade domain.LeaderTrade) (int64, error)

	// RecordFollowerTrade persists a derived order, whatever its status.
	// Rejections are expected rows, not errors.
	RecordFollowerTrade(ctx context.Context, trade domain.FollowerTrade) error

	// LastLeaderTradeTime returns the timestamp of the most recent
	// recorded leader trade for the wallet, or the zero time if none.
	LastLeaderTradeTime(ctx context.Context, address string) (time.Time, error)

	// WalletExposure returns the notional total of EXECUTED, still-open
	// follower trades derived from the wallet's leader trades.
	WalletExposure(ctx context.Context, address string) (float64, error)

	// GlobalExposure is WalletExposure summed over all wallets.
	GlobalExposure(ctx context.Context) (float64, error)

	// HasOpenPosition reports whether an EXECUTED follower trade already
	// exists for the (market, outcome, side) triple.
	HasOpenPosition(ctx context.Context, marketID, outcomeID string, side domain.Side) (bool, error)

	// RecentActivity returns the latest follower trades, newest first,
	// joined with the originating wallet's nickname.
	RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)

	// WalletStatsFor computes per-wallet copy statistics.
	WalletStatsFor(ctx context.Context, address string) (domain.WalletStats, error)

	// TotalStats aggregates statistics across all wallets.
	TotalStats(ctx context.Context) (domain.TotalStats, error)
}
