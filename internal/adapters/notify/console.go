package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyCycle imprime el resultado de un ciclo en el modo configurado.
func (c *Console) NotifyCycle(_ context.Context, result domain.CycleResult) error {
	if len(result.Trades) == 0 {
		if result.WalletErrors > 0 {
			fmt.Fprintf(c.out, "[%s] no new trades (%d wallet errors)\n",
				result.StartedAt.Format("15:04:05"), result.WalletErrors)
		}
		return nil
	}

	c.printCompact(result)
	if c.table {
		c.printTable(result.Trades)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(result domain.CycleResult) {
	mode := "live"
	if result.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(c.out, "[%s] %s: %d wallets, %d fills → %d new, exec:%d rej:%d (%v)\n",
		result.StartedAt.Format("15:04:05"), mode,
		result.Wallets, result.FillsFetched, result.NewTrades,
		result.Executed, result.Rejected,
		result.Duration.Round(time.Millisecond))
}

// printTable imprime los trades del ciclo.
func (c *Console) printTable(trades []domain.FollowerTrade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Side", "Size", "Price", "Notional", "Status", "Order/Reason")

	for _, t := range trades {
		table.Append(
			string(t.Side),
			fmt.Sprintf("%.2f", t.Size),
			fmt.Sprintf("%.3f", t.Price),
			fmt.Sprintf("$%.2f", t.Notional()),
			string(t.Status),
			statusDetail(t),
		)
	}
	table.Render()
}

func statusDetail(t domain.FollowerTrade) string {
	if t.Status == domain.StatusRejected {
		return truncate(t.RejectionReason, 50)
	}
	return t.OrderID
}

// PrintWallets imprime la lista de leader wallets para el CLI.
func (c *Console) PrintWallets(wallets []domain.LeaderWallet) {
	if len(wallets) == 0 {
		fmt.Fprintln(c.out, "no leader wallets configured")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Nickname", "Address", "Active", "Copy%")
	for _, w := range wallets {
		table.Append(
			fmt.Sprintf("%d", w.ID),
			w.Nickname,
			w.Address,
			activeLabel(w.Active),
			copyPctLabel(w.CopyPct),
		)
	}
	table.Render()
}

// PrintStatus imprime el estado del bot: configuración, exposición y
// estadísticas por wallet.
func (c *Console) PrintStatus(cfg domain.BotConfig, exposure float64, stats []domain.WalletStats, totals domain.TotalStats) {
	state := "PAUSED"
	if cfg.Running {
		state = "RUNNING"
	}
	mode := "LIVE"
	if cfg.DryRun {
		mode = "DRY-RUN"
	}

	fmt.Fprintf(c.out, "\n  State:     %s (%s)\n", state, mode)
	fmt.Fprintf(c.out, "  Interval:  %v\n", cfg.Interval)
	fmt.Fprintf(c.out, "  Copy pct:  %.1f%% (default)\n", cfg.RiskPct)
	fmt.Fprintf(c.out, "  Limits:    trade $%.2f | wallet exposure $%.2f | min order $%.2f\n",
		cfg.MaxTradeSize, cfg.MaxWalletExposure, cfg.MinOrderSize)
	fmt.Fprintf(c.out, "  Wallets:   %d (%d active)\n", totals.TotalWallets, totals.ActiveWallets)
	fmt.Fprintf(c.out, "  Exposure:  $%.2f open\n", exposure)
	fmt.Fprintf(c.out, "  Trades:    %d copied, %d executed, %d rejected\n\n",
		totals.CopiedTrades, totals.Executed, totals.Rejected)

	if len(stats) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Wallet", "Trades", "Executed", "Rejected", "Open$", "Last Trade")
	for _, s := range stats {
		table.Append(
			s.Nickname,
			fmt.Sprintf("%d", s.TradeCount),
			fmt.Sprintf("%d", s.Executed),
			fmt.Sprintf("%d", s.Rejected),
			fmt.Sprintf("$%.2f", s.OpenNotional),
			lastTradeLabel(s.LastTradeAt),
		)
	}
	table.Render()
}

// PrintActivity imprime el feed de actividad reciente.
func (c *Console) PrintActivity(entries []domain.ActivityEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no activity yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Leader", "Side", "Size", "Price", "Status", "Detail")
	for _, e := range entries {
		t := e.Trade
		table.Append(
			t.ExecutedAt.Local().Format("01-02 15:04"),
			e.Nickname,
			string(t.Side),
			fmt.Sprintf("%.2f", t.Size),
			fmt.Sprintf("%.3f", t.Price),
			string(t.Status),
			truncate(statusDetail(t), 40),
		)
	}
	table.Render()
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}

func copyPctLabel(pct float64) string {
	if pct <= 0 {
		return "default"
	}
	return fmt.Sprintf("%.1f", pct)
}

func lastTradeLabel(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Minute).String() + " ago"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
