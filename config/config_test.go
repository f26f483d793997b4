package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/polycopy/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
engine:
  interval_seconds: 60
  lookback_minutes: 30
  max_fill_age_minutes: 5
  default_copy_pct: 20
  real_trading: true
risk:
  max_trade_size: 250
  max_wallet_exposure: 2000
  min_order_usdc: 2
api:
  clob_base: "http://localhost:8080"
  data_base: "http://localhost:8081"
storage:
  dsn: "test.db"
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Interval())
	assert.Equal(t, 30*time.Minute, cfg.Lookback())
	assert.Equal(t, 5*time.Minute, cfg.MaxFillAge())
	assert.Equal(t, 20.0, cfg.Engine.DefaultCopyPct)
	assert.True(t, cfg.Engine.RealTrading)
	assert.Equal(t, 250.0, cfg.Risk.MaxTradeSize)
	assert.Equal(t, "http://localhost:8080", cfg.API.CLOBBase)
	assert.Equal(t, "test.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	path := writeConfig(t, `
risk:
  max_trade_size: 500
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 15*time.Minute, cfg.Lookback())
	assert.Equal(t, 10*time.Minute, cfg.MaxFillAge())
	assert.Equal(t, 10.0, cfg.Engine.DefaultCopyPct)
	assert.False(t, cfg.Engine.RealTrading)
	assert.Equal(t, 500.0, cfg.Risk.MaxTradeSize)
	assert.Equal(t, 5000.0, cfg.Risk.MaxWalletExposure)
	assert.Equal(t, 1.0, cfg.Risk.MinOrderUSDC)
	assert.Equal(t, "https://clob.polymarket.com", cfg.API.CLOBBase)
	assert.Equal(t, "https://data-api.polymarket.com", cfg.API.DataBase)
	assert.Equal(t, "copytrader.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("COPYTRADER_DSN", ":memory:")

	path := writeConfig(t, `
log:
  level: info
storage:
  dsn: "file.db"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
}

func TestSeedBotConfig(t *testing.T) {
	cfg := config.Default()
	seed := cfg.SeedBotConfig()

	// Sin real_trading explícito el bot arranca en dry-run
	assert.True(t, seed.DryRun)
	assert.Equal(t, 10.0, seed.RiskPct)
	assert.Equal(t, 30*time.Second, seed.Interval)
	assert.Equal(t, 1000.0, seed.MaxTradeSize)
	assert.Equal(t, 5000.0, seed.MaxWalletExposure)
	assert.Equal(t, 1.0, seed.MinOrderSize)
}
