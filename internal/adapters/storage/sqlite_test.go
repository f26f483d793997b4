package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/polycopy/internal/adapters/storage"
	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	walletA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func openDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeLeaderTrade(wallet, hash string) domain.LeaderTrade {
	return domain.LeaderTrade{
		WalletAddress: wallet,
		MarketID:      "0xcond1",
		OutcomeID:     "token-yes",
		Side:          domain.SideBuy,
		Size:          100,
		Price:         0.40,
		TradedAt:      time.Now().UTC().Truncate(time.Second),
		TradeHash:     hash,
	}
}

func makeFollowerTrade(id string, leaderID int64, status domain.FollowerStatus) domain.FollowerTrade {
	return domain.FollowerTrade{
		ID:            id,
		LeaderTradeID: leaderID,
		MarketID:      "0xcond1",
		OutcomeID:     "token-yes",
		Side:          domain.SideBuy,
		Size:          10,
		Price:         0.40,
		Status:        status,
		ExecutedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestRegistry_AddAndList(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	w, err := db.AddWallet(ctx, walletA, "whale", 15)
	require.NoError(t, err)
	assert.True(t, w.Active)
	assert.Equal(t, 15.0, w.CopyPct)
	assert.NotZero(t, w.ID)

	// Mismo address dos veces
	_, err = db.AddWallet(ctx, walletA, "whale-again", 10)
	assert.ErrorIs(t, err, domain.ErrWalletExists)

	_, err = db.AddWallet(ctx, "not-an-address", "bad", 10)
	assert.Error(t, err)

	wallets, err := db.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, walletA, wallets[0].Address)
}

func TestRegistry_ActiveWalletsExcludesArchived(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, err := db.AddWallet(ctx, walletA, "a", 0)
	require.NoError(t, err)
	_, err = db.AddWallet(ctx, walletB, "b", 0)
	require.NoError(t, err)

	require.NoError(t, db.SetWalletActive(ctx, walletA, false))

	active, err := db.ActiveWallets(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, walletB, active[0].Address)

	all, err := db.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegistry_RemoveWallet(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	err := db.RemoveWallet(ctx, walletA)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	_, err = db.AddWallet(ctx, walletA, "a", 0)
	require.NoError(t, err)

	// Con trades registrados el borrado se rechaza
	_, err = db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)
	err = db.RemoveWallet(ctx, walletA)
	assert.ErrorIs(t, err, domain.ErrWalletReferenced)

	_, err = db.AddWallet(ctx, walletB, "b", 0)
	require.NoError(t, err)
	require.NoError(t, db.RemoveWallet(ctx, walletB))
}

func TestRegistry_SetCopyPercentage(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, err := db.AddWallet(ctx, walletA, "a", 0)
	require.NoError(t, err)

	require.NoError(t, db.SetCopyPercentage(ctx, walletA, 25))
	assert.Error(t, db.SetCopyPercentage(ctx, walletA, -5))
	assert.ErrorIs(t, db.SetCopyPercentage(ctx, walletB, 10), domain.ErrWalletNotFound)

	wallets, err := db.ListWallets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25.0, wallets[0].CopyPct)
}

func TestLedger_DedupByTradeHash(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	seen, err := db.HasSeen(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, seen)

	id, err := db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)
	assert.Positive(t, id)

	// El mismo hash no entra dos veces, ni desde otro wallet
	_, err = db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTrade)
	_, err = db.RecordLeaderTrade(ctx, makeLeaderTrade(walletB, "h1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTrade)

	seen, err = db.HasSeen(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestLedger_LastLeaderTradeTime(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	last, err := db.LastLeaderTradeTime(ctx, walletA)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	older := makeLeaderTrade(walletA, "h1")
	older.TradedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := makeLeaderTrade(walletA, "h2")

	_, err = db.RecordLeaderTrade(ctx, older)
	require.NoError(t, err)
	_, err = db.RecordLeaderTrade(ctx, newer)
	require.NoError(t, err)

	last, err = db.LastLeaderTradeTime(ctx, walletA)
	require.NoError(t, err)
	assert.True(t, newer.TradedAt.Equal(last), "want %v, got %v", newer.TradedAt, last)
}

func TestLedger_WalletExposure(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	id, err := db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)

	executed := makeFollowerTrade("f1", id, domain.StatusExecuted)
	require.NoError(t, db.RecordFollowerTrade(ctx, executed))

	// Los rechazados no cuentan como exposición
	require.NoError(t, db.RecordFollowerTrade(ctx, makeFollowerTrade("f2", id, domain.StatusRejected)))

	exposure, err := db.WalletExposure(ctx, walletA)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, exposure, 0.001) // 10 * 0.40

	global, err := db.GlobalExposure(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, global, 0.001)

	// Un SELL ejecutado posterior cierra la posición
	sell := makeFollowerTrade("f3", id, domain.StatusExecuted)
	sell.Side = domain.SideSell
	sell.ExecutedAt = executed.ExecutedAt.Add(time.Minute)
	require.NoError(t, db.RecordFollowerTrade(ctx, sell))

	exposure, err = db.WalletExposure(ctx, walletA)
	require.NoError(t, err)
	assert.Zero(t, exposure)
}

func TestLedger_HasOpenPosition(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	open, err := db.HasOpenPosition(ctx, "0xcond1", "token-yes", domain.SideBuy)
	require.NoError(t, err)
	assert.False(t, open)

	id, err := db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)

	buy := makeFollowerTrade("f1", id, domain.StatusExecuted)
	require.NoError(t, db.RecordFollowerTrade(ctx, buy))

	open, err = db.HasOpenPosition(ctx, "0xcond1", "token-yes", domain.SideBuy)
	require.NoError(t, err)
	assert.True(t, open)

	// Otro outcome no cuenta
	open, err = db.HasOpenPosition(ctx, "0xcond1", "token-no", domain.SideBuy)
	require.NoError(t, err)
	assert.False(t, open)

	sell := makeFollowerTrade("f2", id, domain.StatusExecuted)
	sell.Side = domain.SideSell
	sell.ExecutedAt = buy.ExecutedAt.Add(time.Minute)
	require.NoError(t, db.RecordFollowerTrade(ctx, sell))

	open, err = db.HasOpenPosition(ctx, "0xcond1", "token-yes", domain.SideBuy)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestLedger_RecentActivity(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, err := db.AddWallet(ctx, walletA, "whale", 0)
	require.NoError(t, err)

	id, err := db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		ft := makeFollowerTrade(fmt.Sprintf("f%d", i), id, domain.StatusExecuted)
		ft.ExecutedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.RecordFollowerTrade(ctx, ft))
	}

	entries, err := db.RecentActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Más recientes primero, con el nickname del wallet líder
	assert.Equal(t, "f4", entries[0].Trade.ID)
	assert.Equal(t, "whale", entries[0].Nickname)
}

func TestLedger_Stats(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	_, err := db.AddWallet(ctx, walletA, "whale", 0)
	require.NoError(t, err)

	_, err = db.WalletStatsFor(ctx, walletB)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	id, err := db.RecordLeaderTrade(ctx, makeLeaderTrade(walletA, "h1"))
	require.NoError(t, err)
	require.NoError(t, db.RecordFollowerTrade(ctx, makeFollowerTrade("f1", id, domain.StatusExecuted)))
	require.NoError(t, db.RecordFollowerTrade(ctx, makeFollowerTrade("f2", id, domain.StatusRejected)))

	stats, err := db.WalletStatsFor(ctx, walletA)
	require.NoError(t, err)
	assert.Equal(t, "whale", stats.Nickname)
	assert.Equal(t, 2, stats.TradeCount)
	assert.Equal(t, 1, stats.Executed)
	assert.Equal(t, 1, stats.Rejected)
	assert.InDelta(t, 4.0, stats.OpenNotional, 0.001)
	assert.False(t, stats.LastTradeAt.IsZero())

	totals, err := db.TotalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.TotalWallets)
	assert.Equal(t, 1, totals.ActiveWallets)
	assert.Equal(t, 2, totals.CopiedTrades)
	assert.Equal(t, 1, totals.Executed)
	assert.Equal(t, 1, totals.Rejected)
}

func TestBotState_SeedLoadSave(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	seed := domain.BotConfig{
		Running:           true,
		DryRun:            true,
		RiskPct:           10,
		Interval:          30 * time.Second,
		MaxTradeSize:      1000,
		MaxWalletExposure: 5000,
		MinOrderSize:      1,
		MaxFillAge:        10 * time.Minute,
		Lookback:          15 * time.Minute,
	}
	require.NoError(t, db.EnsureBotConfig(ctx, seed))

	cfg, err := db.LoadBotConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed, cfg)

	// El seed no pisa valores existentes
	cfg.DryRun = false
	cfg.MaxTradeSize = 250
	require.NoError(t, db.SaveBotConfig(ctx, cfg))
	require.NoError(t, db.EnsureBotConfig(ctx, seed))

	reloaded, err := db.LoadBotConfig(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded.DryRun)
	assert.Equal(t, 250.0, reloaded.MaxTradeSize)
}
