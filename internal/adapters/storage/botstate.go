package storage

// botstate.go — implements ports.BotStateStore over the bot_state
// key/value table. Every value is stored as text; durations as integer
// seconds. The runner re-reads this at the start of each cycle, so a
// SaveBotConfig from an operator command applies on the next tick
// without a restart.

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

const (
	keyRunning           = "running"
	keyDryRun            = "dry_run"
	keyRiskPct           = "risk_pct"
	keyIntervalSeconds   = "interval_seconds"
	keyMaxTradeSize      = "max_trade_size"
	keyMaxWalletExposure = "max_wallet_exposure"
	keyMinOrderSize      = "min_order_usdc"
	keyMaxFillAgeSeconds = "max_fill_age_seconds"
	keyLookbackSeconds   = "lookback_seconds"
)

// EnsureBotConfig seeds bot_state with the given defaults for any key
// not yet present. Existing values always win: the database is the
// authority once the bot has run at least once.
func (s *SQLiteStorage) EnsureBotConfig(ctx context.Context, seed domain.BotConfig) error {
	defaults := map[string]string{
		keyRunning:           formatBool(seed.Running),
		keyDryRun:            formatBool(seed.DryRun),
		keyRiskPct:           formatFloat(seed.RiskPct),
		keyIntervalSeconds:   formatSeconds(seed.Interval),
		keyMaxTradeSize:      formatFloat(seed.MaxTradeSize),
		keyMaxWalletExposure: formatFloat(seed.MaxWalletExposure),
		keyMinOrderSize:      formatFloat(seed.MinOrderSize),
		keyMaxFillAgeSeconds: formatSeconds(seed.MaxFillAge),
		keyLookbackSeconds:   formatSeconds(seed.Lookback),
	}
	for k, v := range defaults {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO bot_state (key, value) VALUES (?, ?)`, k, v,
		); err != nil {
			return fmt.Errorf("storage.EnsureBotConfig: seed %s: %w", k, err)
		}
	}
	return nil
}

// LoadBotConfig reads the full mutable bot state.
func (s *SQLiteStorage) LoadBotConfig(ctx context.Context) (domain.BotConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM bot_state`)
	if err != nil {
		return domain.BotConfig{}, fmt.Errorf("storage.LoadBotConfig: %w", err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.BotConfig{}, fmt.Errorf("storage.LoadBotConfig: scan: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return domain.BotConfig{}, fmt.Errorf("storage.LoadBotConfig: %w", err)
	}

	cfg := domain.BotConfig{
		Running:           kv[keyRunning] == "true",
		DryRun:            kv[keyDryRun] == "true",
		RiskPct:           parseFloat(kv[keyRiskPct]),
		Interval:          parseSeconds(kv[keyIntervalSeconds]),
		MaxTradeSize:      parseFloat(kv[keyMaxTradeSize]),
		MaxWalletExposure: parseFloat(kv[keyMaxWalletExposure]),
		MinOrderSize:      parseFloat(kv[keyMinOrderSize]),
		MaxFillAge:        parseSeconds(kv[keyMaxFillAgeSeconds]),
		Lookback:          parseSeconds(kv[keyLookbackSeconds]),
	}
	return cfg, nil
}

// SaveBotConfig writes the full mutable bot state.
func (s *SQLiteStorage) SaveBotConfig(ctx context.Context, cfg domain.BotConfig) error {
	values := map[string]string{
		keyRunning:           formatBool(cfg.Running),
		keyDryRun:            formatBool(cfg.DryRun),
		keyRiskPct:           formatFloat(cfg.RiskPct),
		keyIntervalSeconds:   formatSeconds(cfg.Interval),
		keyMaxTradeSize:      formatFloat(cfg.MaxTradeSize),
		keyMaxWalletExposure: formatFloat(cfg.MaxWalletExposure),
		keyMinOrderSize:      formatFloat(cfg.MinOrderSize),
		keyMaxFillAgeSeconds: formatSeconds(cfg.MaxFillAge),
		keyLookbackSeconds:   formatSeconds(cfg.Lookback),
	}
	for k, v := range values {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO bot_state (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v,
		); err != nil {
			return fmt.Errorf("storage.SaveBotConfig: set %s: %w", k, err)
		}
	}
	return nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseSeconds(s string) time.Duration {
	n, _ := strconv.ParseInt(s, 10, 64)
	return time.Duration(n) * time.Second
}
