package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polycopy/config"
	"github.com/alejandrodnm/polycopy/internal/adapters/notify"
	"github.com/alejandrodnm/polycopy/internal/adapters/polymarket"
	"github.com/alejandrodnm/polycopy/internal/adapters/storage"
	"github.com/alejandrodnm/polycopy/internal/application/engine"
	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/alejandrodnm/polycopy/internal/ports"
	"github.com/alejandrodnm/polycopy/internal/risk"
)

const usage = `usage: copytrader [flags] [command]

Without a command the bot runs as a daemon, polling leader wallets on
the configured interval until interrupted.

commands:
  wallet add <address> [-nick NAME] [-pct N]   follow a leader wallet
  wallet list                                  list followed wallets
  wallet on|off <address>                      enable/disable a wallet
  wallet set-pct <address> <pct>               per-wallet copy percentage
  wallet remove <address>                      delete a wallet (if unreferenced)
  start | stop                                 resume/pause copying
  set-mode live|dry-run                        toggle real order placement
  set-risk [-max-trade N] [-max-exposure N] [-pct N]
  status                                       bot state, limits, per-wallet stats
  activity                                     recent follower trades
  run-once                                     execute a single cycle and exit
`

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print a trade table after each cycle")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Operator commands should work without a config file next to them.
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := store.EnsureBotConfig(ctx, seededBotConfig(cfg)); err != nil {
		slog.Error("failed to seed bot state", "err", err)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 && args[0] != "run-once" {
		if err := runCommand(ctx, store, args); err != nil {
			slog.Error("command failed", "cmd", args[0], "err", err)
			os.Exit(1)
		}
		return
	}

	runner, err := buildRunner(cfg, store, *table)
	if err != nil {
		slog.Error("failed to build engine", "err", err)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 && args[0] == "run-once" {
		result, err := runner.RunOnce(ctx)
		if err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		slog.Info("single cycle done",
			"new_trades", result.NewTrades, "executed", result.Executed,
			"rejected", result.Rejected, "dry_run", result.DryRun)
		return
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("copy trader exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("copy trader stopped cleanly")
}

// buildRunner wires the full engine. The live executor is only built
// when a signing key is present; without one the bot can still run,
// forced into dry-run by the engine.
func buildRunner(cfg *config.Config, store *storage.SQLiteStorage, table bool) (*engine.Runner, error) {
	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.DataBase)

	var live *polymarket.TradingClient
	if key := os.Getenv("POLY_PRIVATE_KEY"); key != "" {
		auth, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.DataBase, key)
		if err != nil {
			return nil, fmt.Errorf("bad POLY_PRIVATE_KEY: %w", err)
		}
		live = polymarket.NewTradingClient(auth)
		slog.Info("live trading available", "address", auth.Address())
	} else {
		slog.Warn("POLY_PRIVATE_KEY not set — orders will be simulated regardless of mode")
	}

	gate := risk.NewGate(store)
	notifier := notify.NewConsole(table)

	// A nil *TradingClient must stay a nil interface so the engine's
	// fallback to dry-run works.
	var liveExec ports.OrderExecutor
	if live != nil {
		liveExec = live
	}

	eng := engine.New(client, liveExec, polymarket.NewDryRunExecutor(), store, store, gate, notifier)
	return engine.NewRunner(eng, store), nil
}

func seededBotConfig(cfg *config.Config) domain.BotConfig {
	seed := cfg.SeedBotConfig()
	return domain.BotConfig{
		Running:           true,
		DryRun:            seed.DryRun,
		RiskPct:           seed.RiskPct,
		Interval:          seed.Interval,
		MaxTradeSize:      seed.MaxTradeSize,
		MaxWalletExposure: seed.MaxWalletExposure,
		MinOrderSize:      seed.MinOrderSize,
		MaxFillAge:        seed.MaxFillAge,
		Lookback:          seed.Lookback,
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
