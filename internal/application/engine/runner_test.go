package engine_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/polycopy/internal/application/engine"
	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/alejandrodnm/polycopy/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeState serves a fixed BotConfig.
type fakeState struct {
	cfg domain.BotConfig
}

func (f *fakeState) LoadBotConfig(context.Context) (domain.BotConfig, error) { return f.cfg, nil }
func (f *fakeState) SaveBotConfig(context.Context, domain.BotConfig) error { return nil }

// slowRegistry counts cycles and can hold them open to simulate a slow
// cycle spanning several ticks.
type slowRegistry struct {
	cycles  atomic.Int32
	release chan struct{}
}

func (r *slowRegistry) AddWallet(context.Context, string, string, float64) (domain.LeaderWallet, error) {
	return domain.LeaderWallet{}, nil
}
func (r *slowRegistry) RemoveWallet(context.Context, string) error { return nil }
func (r *slowRegistry) SetWalletActive(context.Context, string, bool) error { return nil }
func (r *slowRegistry) SetCopyPercentage(context.Context, string, float64) error { return nil }
func (r *slowRegistry) ListWallets(context.Context) ([]domain.LeaderWallet, error) {
	return nil, nil
}

func (r *slowRegistry) ActiveWallets(context.Context) ([]domain.LeaderWallet, error) {
	r.cycles.Add(1)
	if r.release != nil {
		<-r.release
	}
	return nil, nil
}

func newRunnerUnderTest(registry *slowRegistry, cfg domain.BotConfig) *engine.Runner {
	ledger := &recordingLedger{}
	eng := engine.New(nil, nil, nil, ledger, registry, risk.NewGate(ledger), nil)
	return engine.NewRunner(eng, &fakeState{cfg: cfg})
}

// recordingLedger is a no-op ledger; the runner tests never reach it
// because the registry returns no wallets.
type recordingLedger struct{}

func (recordingLedger) HasSeen(context.Context, string) (bool, error) { return false, nil }
func (recordingLedger) RecordLeaderTrade(context.Context, domain.LeaderTrade) (int64, error) {
	return 0, nil
}
func (recordingLedger) RecordFollowerTrade(context.Context, domain.FollowerTrade) error { return nil }
func (recordingLedger) LastLeaderTradeTime(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}
func (recordingLedger) WalletExposure(context.Context, string) (float64, error) { return 0, nil }
func (recordingLedger) GlobalExposure(context.Context) (float64, error)         { return 0, nil }
func (recordingLedger) HasOpenPosition(context.Context, string, string, domain.Side) (bool, error) {
	return false, nil
}
func (recordingLedger) RecentActivity(context.Context, int) ([]domain.ActivityEntry, error) {
	return nil, nil
}
func (recordingLedger) WalletStatsFor(context.Context, string) (domain.WalletStats, error) {
	return domain.WalletStats{}, nil
}
func (recordingLedger) TotalStats(context.Context) (domain.TotalStats, error) {
	return domain.TotalStats{}, nil
}

func TestRunner_SkipsTickWhileCycleInFlight(t *testing.T) {
	registry := &slowRegistry{release: make(chan struct{})}
	runner := newRunnerUnderTest(registry, domain.BotConfig{
		Running:  true,
		Interval: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	// Varias ticks mientras el primer ciclo sigue bloqueado
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), registry.cycles.Load())

	close(registry.release)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunner_PausedBotRunsNoCycles(t *testing.T) {
	registry := &slowRegistry{}
	runner := newRunnerUnderTest(registry, domain.BotConfig{
		Running:  false,
		Interval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	time.Sleep(80 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, registry.cycles.Load())
}

func TestRunner_WaitsForInFlightCycleOnShutdown(t *testing.T) {
	registry := &slowRegistry{release: make(chan struct{})}
	runner := newRunnerUnderTest(registry, domain.BotConfig{
		Running:  true,
		Interval: time.Hour, // solo el ciclo inicial
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, int32(1), registry.cycles.Load())

	cancel()
	select {
	case <-done:
		t.Fatal("runner returned before releasing the in-flight cycle")
	case <-time.After(50 * time.Millisecond):
	}

	close(registry.release)
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunner_RunOnceExecutesSingleCycle(t *testing.T) {
	registry := &slowRegistry{}
	runner := newRunnerUnderTest(registry, domain.BotConfig{Running: true})

	result, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Wallets)
	assert.Equal(t, int32(1), registry.cycles.Load())
}
