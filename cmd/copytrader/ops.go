package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/alejandrodnm/polycopy/internal/adapters/notify"
	"github.com/alejandrodnm/polycopy/internal/adapters/storage"
	"github.com/alejandrodnm/polycopy/internal/domain"
)

// runCommand dispatches the operator subcommands. They talk straight to
// the database, so they work while the daemon is running; the daemon
// picks up state changes on its next tick.
func runCommand(ctx context.Context, store *storage.SQLiteStorage, args []string) error {
	console := notify.NewConsole(true)

	switch args[0] {
	case "wallet":
		return runWalletCommand(ctx, store, console, args[1:])

	case "start":
		return setRunning(ctx, store, true)

	case "stop":
		return setRunning(ctx, store, false)

	case "set-mode":
		if len(args) < 2 || (args[1] != "live" && args[1] != "dry-run") {
			return fmt.Errorf("usage: set-mode live|dry-run")
		}
		cfg, err := store.LoadBotConfig(ctx)
		if err != nil {
			return err
		}
		cfg.DryRun = args[1] == "dry-run"
		if err := store.SaveBotConfig(ctx, cfg); err != nil {
			return err
		}
		fmt.Printf("mode set to %s\n", args[1])
		return nil

	case "set-risk":
		return runSetRisk(ctx, store, args[1:])

	case "status":
		cfg, err := store.LoadBotConfig(ctx)
		if err != nil {
			return err
		}
		exposure, err := store.GlobalExposure(ctx)
		if err != nil {
			return err
		}
		totals, err := store.TotalStats(ctx)
		if err != nil {
			return err
		}
		wallets, err := store.ListWallets(ctx)
		if err != nil {
			return err
		}
		perWallet := make([]domain.WalletStats, 0, len(wallets))
		for _, w := range wallets {
			s, err := store.WalletStatsFor(ctx, w.Address)
			if err != nil {
				return err
			}
			perWallet = append(perWallet, s)
		}
		console.PrintStatus(cfg, exposure, perWallet, totals)
		return nil

	case "activity":
		entries, err := store.RecentActivity(ctx, 20)
		if err != nil {
			return err
		}
		console.PrintActivity(entries)
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runWalletCommand(ctx context.Context, store *storage.SQLiteStorage, console *notify.Console, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: wallet add|list|on|off|set-pct|remove")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("wallet add", flag.ContinueOnError)
		nick := fs.String("nick", "", "human-readable name for the wallet")
		pct := fs.Float64("pct", 0, "copy percentage (0 = use global default)")
		if len(args) < 2 {
			return fmt.Errorf("usage: wallet add <address> [-nick NAME] [-pct N]")
		}
		address := args[1]
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		nickname := *nick
		if nickname == "" {
			nickname = shortAddr(address)
		}
		w, err := store.AddWallet(ctx, address, nickname, *pct)
		if err != nil {
			return err
		}
		fmt.Printf("following %s (%s)\n", w.Nickname, w.Address)
		return nil

	case "list":
		wallets, err := store.ListWallets(ctx)
		if err != nil {
			return err
		}
		console.PrintWallets(wallets)
		return nil

	case "on", "off":
		if len(args) < 2 {
			return fmt.Errorf("usage: wallet %s <address>", args[0])
		}
		active := args[0] == "on"
		if err := store.SetWalletActive(ctx, args[1], active); err != nil {
			return err
		}
		fmt.Printf("wallet %s active=%v\n", shortAddr(args[1]), active)
		return nil

	case "set-pct":
		if len(args) < 3 {
			return fmt.Errorf("usage: wallet set-pct <address> <pct>")
		}
		pct, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("bad percentage %q: %w", args[2], err)
		}
		if err := store.SetCopyPercentage(ctx, args[1], pct); err != nil {
			return err
		}
		fmt.Printf("wallet %s copy pct=%.1f%%\n", shortAddr(args[1]), pct)
		return nil

	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: wallet remove <address>")
		}
		if err := store.RemoveWallet(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("wallet %s removed\n", shortAddr(args[1]))
		return nil

	default:
		return fmt.Errorf("unknown wallet command %q", args[0])
	}
}

func setRunning(ctx context.Context, store *storage.SQLiteStorage, running bool) error {
	cfg, err := store.LoadBotConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Running = running
	if err := store.SaveBotConfig(ctx, cfg); err != nil {
		return err
	}
	if running {
		fmt.Println("bot started")
	} else {
		fmt.Println("bot paused")
	}
	return nil
}

func runSetRisk(ctx context.Context, store *storage.SQLiteStorage, args []string) error {
	fs := flag.NewFlagSet("set-risk", flag.ContinueOnError)
	maxTrade := fs.Float64("max-trade", 0, "max USDC per copy order")
	maxExposure := fs.Float64("max-exposure", 0, "max open USDC per leader wallet")
	pct := fs.Float64("pct", 0, "global default copy percentage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := store.LoadBotConfig(ctx)
	if err != nil {
		return err
	}
	if *maxTrade > 0 {
		cfg.MaxTradeSize = *maxTrade
	}
	if *maxExposure > 0 {
		cfg.MaxWalletExposure = *maxExposure
	}
	if *pct > 0 {
		cfg.RiskPct = *pct
	}
	if err := store.SaveBotConfig(ctx, cfg); err != nil {
		return err
	}
	fmt.Printf("risk limits: trade $%.2f, exposure $%.2f, copy %.1f%%\n",
		cfg.MaxTradeSize, cfg.MaxWalletExposure, cfg.RiskPct)
	return nil
}

func shortAddr(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
