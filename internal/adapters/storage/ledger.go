package storage

// ledger.go — implements ports.Ledger.
//
// The trade_hash UNIQUE constraint is the dedup backstop: even if two
// cycles race, the second insert fails and is reported as
// domain.ErrDuplicateTrade. Exposure queries always hit the database;
// nothing here caches state across calls.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// HasSeen reports whether a trade hash is already recorded.
func (s *SQLiteStorage) HasSeen(ctx context.Context, tradeHash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM leader_trades WHERE trade_hash = ?`, tradeHash,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage.HasSeen: %w", err)
	}
	return n > 0, nil
}

// RecordLeaderTrade inserts an observed leader fill and returns its row id.
// Returns domain.ErrDuplicateTrade if the hash is already present.
func (s *SQLiteStorage) RecordLeaderTrade(ctx context.Context, t domain.LeaderTrade) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leader_trades
			(wallet_address, market_id, outcome_id, side, size, price, traded_at, trade_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.WalletAddress, t.MarketID, t.OutcomeID, string(t.Side),
		t.Size, t.Price, t.TradedAt.UTC(), t.TradeHash,
	)
	if err != nil {
		// UNIQUE violation or anything else: disambiguate by re-checking
		// the hash, so callers get the sentinel they can act on.
		if seen, seenErr := s.HasSeen(ctx, t.TradeHash); seenErr == nil && seen {
			return 0, domain.ErrDuplicateTrade
		}
		return 0, fmt.Errorf("storage.RecordLeaderTrade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.RecordLeaderTrade: last insert id: %w", err)
	}
	return id, nil
}

// RecordFollowerTrade persists a derived order, whatever its status.
func (s *SQLiteStorage) RecordFollowerTrade(ctx context.Context, t domain.FollowerTrade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follower_trades
			(id, leader_trade_id, market_id, outcome_id, side, size, price,
			 status, rejection_reason, is_dry_run, order_id, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.LeaderTradeID, t.MarketID, t.OutcomeID, string(t.Side),
		t.Size, t.Price, string(t.Status), t.RejectionReason,
		t.IsDryRun, t.OrderID, t.ExecutedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.RecordFollowerTrade: %w", err)
	}
	return nil
}

// LastLeaderTradeTime returns the most recent traded_at for the wallet,
// or the zero time if the wallet has no recorded trades.
func (s *SQLiteStorage) LastLeaderTradeTime(ctx context.Context, address string) (time.Time, error) {
	var ts sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(traded_at) FROM leader_trades WHERE wallet_address = ?`, address,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage.LastLeaderTradeTime: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time.UTC(), nil
}

// openBuyFilter selects EXECUTED BUY follower trades that have no later
// EXECUTED SELL on the same (market, outcome). A sell closes the
// position; until one is observed the buy counts as open exposure.
const openBuyFilter = `
	f.status = 'EXECUTED' AND f.side = 'BUY'
	AND NOT EXISTS (
		SELECT 1 FROM follower_trades f2
		WHERE f2.market_id = f.market_id
		  AND f2.outcome_id = f.outcome_id
		  AND f2.side = 'SELL'
		  AND f2.status = 'EXECUTED'
		  AND f2.executed_at >= f.executed_at
	)`

// WalletExposure returns the notional total of open EXECUTED follower
// trades derived from the wallet's leader trades. Wallet active status
// is ignored: archived wallets' open trades still count.
func (s *SQLiteStorage) WalletExposure(ctx context.Context, address string) (float64, error) {
	var exposure float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(f.size * f.price), 0)
		FROM follower_trades f
		JOIN leader_trades l ON l.id = f.leader_trade_id
		WHERE l.wallet_address = ? AND `+openBuyFilter,
		address,
	).Scan(&exposure)
	if err != nil {
		return 0, fmt.Errorf("storage.WalletExposure: %w", err)
	}
	return exposure, nil
}

// GlobalExposure is WalletExposure summed over all wallets.
func (s *SQLiteStorage) GlobalExposure(ctx context.Context) (float64, error) {
	var exposure float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(f.size * f.price), 0)
		FROM follower_trades f
		WHERE `+openBuyFilter,
	).Scan(&exposure)
	if err != nil {
		return 0, fmt.Errorf("storage.GlobalExposure: %w", err)
	}
	return exposure, nil
}

// HasOpenPosition reports whether an EXECUTED follower trade already
// exists for the (market, outcome, side) triple without a later
// opposite-side EXECUTED trade closing it.
func (s *SQLiteStorage) HasOpenPosition(ctx context.Context, marketID, outcomeID string, side domain.Side) (bool, error) {
	opposite := domain.SideSell
	if side == domain.SideSell {
		opposite = domain.SideBuy
	}

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM follower_trades f
		WHERE f.market_id = ? AND f.outcome_id = ? AND f.side = ?
		  AND f.status = 'EXECUTED'
		  AND NOT EXISTS (
			SELECT 1 FROM follower_trades f2
			WHERE f2.market_id = f.market_id
			  AND f2.outcome_id = f.outcome_id
			  AND f2.side = ?
			  AND f2.status = 'EXECUTED'
			  AND f2.executed_at >= f.executed_at
		  )`,
		marketID, outcomeID, string(side), string(opposite),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage.HasOpenPosition: %w", err)
	}
	return n > 0, nil
}

// RecentActivity returns the latest follower trades, newest first.
func (s *SQLiteStorage) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.leader_trade_id, f.market_id, f.outcome_id, f.side,
		       f.size, f.price, f.status, f.rejection_reason, f.is_dry_run,
		       f.order_id, f.executed_at,
		       COALESCE(w.nickname, 'unknown')
		FROM follower_trades f
		JOIN leader_trades l ON l.id = f.leader_trade_id
		LEFT JOIN leader_wallets w ON w.address = l.wallet_address
		ORDER BY f.executed_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentActivity: %w", err)
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var side, status string
		if err := rows.Scan(
			&e.Trade.ID, &e.Trade.LeaderTradeID, &e.Trade.MarketID, &e.Trade.OutcomeID,
			&side, &e.Trade.Size, &e.Trade.Price, &status, &e.Trade.RejectionReason,
			&e.Trade.IsDryRun, &e.Trade.OrderID, &e.Trade.ExecutedAt, &e.Nickname,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentActivity: scan: %w", err)
		}
		e.Trade.Side = domain.Side(side)
		e.Trade.Status = domain.FollowerStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WalletStatsFor computes per-wallet copy statistics.
func (s *SQLiteStorage) WalletStatsFor(ctx context.Context, address string) (domain.WalletStats, error) {
	stats := domain.WalletStats{Address: address}

	err := s.db.QueryRowContext(ctx,
		`SELECT nickname FROM leader_wallets WHERE address = ?`, address,
	).Scan(&stats.Nickname)
	if err == sql.ErrNoRows {
		return stats, domain.ErrWalletNotFound
	}
	if err != nil {
		return stats, fmt.Errorf("storage.WalletStatsFor: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COALESCE(SUM(CASE WHEN f.status = 'EXECUTED' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN f.status = 'REJECTED' THEN 1 ELSE 0 END), 0)
		FROM follower_trades f
		JOIN leader_trades l ON l.id = f.leader_trade_id
		WHERE l.wallet_address = ?`, address,
	).Scan(&stats.TradeCount, &stats.Executed, &stats.Rejected)
	if err != nil {
		return stats, fmt.Errorf("storage.WalletStatsFor: counts: %w", err)
	}

	stats.OpenNotional, err = s.WalletExposure(ctx, address)
	if err != nil {
		return stats, err
	}

	stats.LastTradeAt, err = s.LastLeaderTradeTime(ctx, address)
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// TotalStats aggregates statistics across all wallets.
func (s *SQLiteStorage) TotalStats(ctx context.Context) (domain.TotalStats, error) {
	var stats domain.TotalStats

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1), COALESCE(SUM(active), 0) FROM leader_wallets`,
	).Scan(&stats.TotalWallets, &stats.ActiveWallets)
	if err != nil {
		return stats, fmt.Errorf("storage.TotalStats: wallets: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COALESCE(SUM(CASE WHEN status = 'EXECUTED' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'REJECTED' THEN 1 ELSE 0 END), 0)
		FROM follower_trades`,
	).Scan(&stats.CopiedTrades, &stats.Executed, &stats.Rejected)
	if err != nil {
		return stats, fmt.Errorf("storage.TotalStats: trades: %w", err)
	}

	stats.OpenNotional, err = s.GlobalExposure(ctx)
	if err != nil {
		return stats, err
	}
	return stats, nil
}
