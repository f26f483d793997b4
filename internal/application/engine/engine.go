// Package engine orchestrates copy-trading cycles: fetch leader
// activity, dedup against the ledger, risk-gate each candidate, place
// the order, record the outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/alejandrodnm/polycopy/internal/ports"
	"github.com/alejandrodnm/polycopy/internal/risk"
)

// Engine runs one polling cycle at a time. It is the only writer of
// leader/follower trade records; the registry and bot state are owned
// elsewhere and only read here.
type Engine struct {
	fills    ports.FillProvider
	live     ports.OrderExecutor
	dry      ports.OrderExecutor
	ledger   ports.Ledger
	registry ports.WalletRegistry
	gate     *risk.Gate
	notifier ports.Notifier
}

// New creates an Engine with all dependencies injected. notifier may be
// nil. live may be nil when the bot only ever runs in dry-run mode.
func New(
	fills ports.FillProvider,
	live ports.OrderExecutor,
	dry ports.OrderExecutor,
	ledger ports.Ledger,
	registry ports.WalletRegistry,
	gate *risk.Gate,
	notifier ports.Notifier,
) *Engine {
	return &Engine{
		fills:    fills,
		live:     live,
		dry:      dry,
		ledger:   ledger,
		registry: registry,
		gate:     gate,
		notifier: notifier,
	}
}

// RunCycle executes one full cycle with the given bot state. An error on
// one wallet never aborts the others; only a registry read failure (no
// wallets to iterate at all) fails the cycle.
func (e *Engine) RunCycle(ctx context.Context, cfg domain.BotConfig) (domain.CycleResult, error) {
	result := domain.CycleResult{StartedAt: time.Now().UTC(), DryRun: cfg.DryRun}

	wallets, err := e.registry.ActiveWallets(ctx)
	if err != nil {
		return result, fmt.Errorf("engine.RunCycle: active wallets: %w", err)
	}
	result.Wallets = len(wallets)

	for _, wallet := range wallets {
		if err := e.processWallet(ctx, cfg, wallet, &result); err != nil {
			result.WalletErrors++
			logWalletError(wallet, err)
		}
	}

	result.Duration = time.Since(result.StartedAt)

	if e.notifier != nil {
		if err := e.notifier.NotifyCycle(ctx, result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("cycle complete",
		"wallets", result.Wallets,
		"wallet_errors", result.WalletErrors,
		"fills", result.FillsFetched,
		"new_trades", result.NewTrades,
		"executed", result.Executed,
		"rejected", result.Rejected,
		"dry_run", result.DryRun,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, nil
}

// processWallet fetches and handles the fills of one leader wallet.
func (e *Engine) processWallet(ctx context.Context, cfg domain.BotConfig, wallet domain.LeaderWallet, result *domain.CycleResult) error {
	since, err := e.sinceFor(ctx, cfg, wallet)
	if err != nil {
		return err
	}

	fills, err := e.fills.FetchWalletFills(ctx, wallet.Address, since)
	if err != nil {
		return fmt.Errorf("fetch fills: %w", err)
	}
	result.FillsFetched += len(fills)

	for _, fill := range fills {
		if !fill.Valid() {
			// Non-positive size/price or missing id: invalid, not rejected.
			slog.Debug("discarding invalid fill",
				"wallet", wallet.Nickname, "hash", fill.Hash,
				"size", fill.Size, "price", fill.Price)
			continue
		}

		seen, err := e.ledger.HasSeen(ctx, fill.Hash)
		if err != nil {
			slog.Error("dedup lookup failed, skipping fill", "hash", fill.Hash, "err", err)
			continue
		}
		if seen {
			continue
		}

		if err := e.processFill(ctx, cfg, wallet, fill, result); err != nil {
			slog.Error("fill processing failed",
				"wallet", wallet.Nickname, "hash", fill.Hash, "err", err)
		}
	}
	return nil
}

// sinceFor returns the fetch lower bound: the most recent recorded
// leader trade, or a rolling lookback window for a fresh wallet.
// Freshness beats completeness here — copying a day-old fill is worse
// than missing it.
func (e *Engine) sinceFor(ctx context.Context, cfg domain.BotConfig, wallet domain.LeaderWallet) (time.Time, error) {
	last, err := e.ledger.LastLeaderTradeTime(ctx, wallet.Address)
	if err != nil {
		return time.Time{}, fmt.Errorf("last trade time: %w", err)
	}
	if !last.IsZero() {
		return last, nil
	}

	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = 15 * time.Minute
	}
	return time.Now().UTC().Add(-lookback), nil
}

// processFill turns one genuinely new leader fill into ledger records
// and, when the gate allows it, a placed order.
func (e *Engine) processFill(ctx context.Context, cfg domain.BotConfig, wallet domain.LeaderWallet, fill domain.RawFill, result *domain.CycleResult) error {
	// Record the leader side first: the audit trail must exist even if
	// everything after this fails. If this write fails we must NOT
	// place an order — a retry could not dedup it and would double-trade.
	leaderID, err := e.ledger.RecordLeaderTrade(ctx, domain.LeaderTrade{
		WalletAddress: wallet.Address,
		MarketID:      fill.MarketID,
		OutcomeID:     fill.OutcomeID,
		Side:          fill.Side,
		Size:          fill.Size,
		Price:         fill.Price,
		TradedAt:      fill.Timestamp,
		TradeHash:     fill.Hash,
	})
	if errors.Is(err, domain.ErrDuplicateTrade) {
		// Lost a race with another recording of the same hash: already
		// handled, nothing to do.
		return nil
	}
	if err != nil {
		return fmt.Errorf("record leader trade: %w", err)
	}
	result.NewTrades++

	copySize := fill.Size * cfg.CopyPctFor(wallet) / 100

	ft := domain.FollowerTrade{
		ID:            uuid.NewString(),
		LeaderTradeID: leaderID,
		MarketID:      fill.MarketID,
		OutcomeID:     fill.OutcomeID,
		Side:          fill.Side,
		Size:          copySize,
		Price:         fill.Price,
		IsDryRun:      cfg.DryRun,
		ExecutedAt:    time.Now().UTC(),
	}

	if cfg.MaxFillAge > 0 && time.Since(fill.Timestamp) > cfg.MaxFillAge {
		ft.Status = domain.StatusRejected
		ft.RejectionReason = fmt.Sprintf("Fill is %s old, exceeds max age %s",
			time.Since(fill.Timestamp).Round(time.Second), cfg.MaxFillAge)
		return e.record(ctx, ft, result)
	}

	req := domain.OrderRequest{
		MarketID:   fill.MarketID,
		OutcomeID:  fill.OutcomeID,
		Side:       fill.Side,
		Size:       copySize,
		LimitPrice: fill.Price,
	}

	allowed, reason, err := e.gate.Evaluate(ctx, wallet.Address, req, risk.Limits{
		MaxTradeSize:      cfg.MaxTradeSize,
		MaxWalletExposure: cfg.MaxWalletExposure,
		MinOrderSize:      cfg.MinOrderSize,
	})
	if err != nil {
		// Gate could not read the ledger. Do not trade on an unknown
		// exposure; leave an auditable rejection instead.
		ft.Status = domain.StatusRejected
		ft.RejectionReason = fmt.Sprintf("Risk evaluation unavailable: %v", err)
		return e.record(ctx, ft, result)
	}
	if !allowed {
		slog.Info("risk rejected",
			"wallet", wallet.Nickname, "market", fill.MarketID, "reason", reason)
		ft.Status = domain.StatusRejected
		ft.RejectionReason = reason
		return e.record(ctx, ft, result)
	}

	// Order placement is not safely cancellable once sent, so shield it
	// from shutdown; the HTTP client's own timeout still bounds it.
	res, err := e.executor(cfg).PlaceOrder(context.WithoutCancel(ctx), req)
	switch {
	case err != nil:
		ft.Status = domain.StatusRejected
		ft.RejectionReason = err.Error()
		logPlacementError(wallet, err)
	case !res.Success:
		ft.Status = domain.StatusRejected
		ft.RejectionReason = res.ErrMsg
		slog.Warn("order refused by venue",
			"wallet", wallet.Nickname, "market", fill.MarketID, "reason", res.ErrMsg)
	default:
		ft.Status = domain.StatusExecuted
		ft.OrderID = res.OrderID
		slog.Info("copied trade",
			"wallet", wallet.Nickname, "side", fill.Side,
			"size", copySize, "price", fill.Price,
			"order_id", res.OrderID, "dry_run", cfg.DryRun)
	}

	return e.record(ctx, ft, result)
}

// executor picks live or dry-run per the bot state read at cycle start.
func (e *Engine) executor(cfg domain.BotConfig) ports.OrderExecutor {
	if cfg.DryRun || e.live == nil {
		return e.dry
	}
	return e.live
}

// record persists the follower trade and updates cycle counters.
func (e *Engine) record(ctx context.Context, ft domain.FollowerTrade, result *domain.CycleResult) error {
	if err := e.ledger.RecordFollowerTrade(ctx, ft); err != nil {
		return fmt.Errorf("record follower trade: %w", err)
	}
	switch ft.Status {
	case domain.StatusExecuted:
		result.Executed++
	case domain.StatusRejected:
		result.Rejected++
	}
	result.Trades = append(result.Trades, ft)
	return nil
}

func logWalletError(wallet domain.LeaderWallet, err error) {
	// Auth failures are potentially systemic (bad credentials), so they
	// get error level; transient network/venue trouble is routine.
	attrs := []any{"wallet", wallet.Nickname, "address", wallet.Address, "err", err}
	if isAuthErr(err) {
		slog.Error("wallet skipped: auth failure", attrs...)
		return
	}
	slog.Warn("wallet skipped this cycle", attrs...)
}

func logPlacementError(wallet domain.LeaderWallet, err error) {
	if isAuthErr(err) {
		slog.Error("order placement auth failure", "wallet", wallet.Nickname, "err", err)
		return
	}
	slog.Warn("order placement failed", "wallet", wallet.Nickname, "err", err)
}

// isAuthErr matches any error carrying the AuthFailure marker, keeping
// this package decoupled from the venue adapter's concrete error types.
func isAuthErr(err error) bool {
	var marker interface{ AuthFailure() }
	return errors.As(err, &marker)
}
