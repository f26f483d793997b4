package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/polycopy/internal/domain"
	"github.com/alejandrodnm/polycopy/internal/ports"
)

// Runner drives the engine on a ticker. Each tick re-reads the bot
// state so operator changes (pause, dry-run toggle, new limits, new
// interval) apply on the next tick without a restart.
type Runner struct {
	engine *Engine
	state  ports.BotStateStore

	mu sync.Mutex // held for the duration of a cycle
	wg sync.WaitGroup
}

// NewRunner creates a Runner around the given engine and bot state.
func NewRunner(engine *Engine, state ports.BotStateStore) *Runner {
	return &Runner{engine: engine, state: state}
}

// Run blocks until ctx is cancelled. A tick that fires while the
// previous cycle is still in flight is skipped, never queued. On
// shutdown the in-flight cycle is allowed to finish.
func (r *Runner) Run(ctx context.Context) error {
	cfg, err := r.state.LoadBotConfig(ctx)
	if err != nil {
		return err
	}

	interval := tickInterval(cfg)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("copy trader started",
		"interval", interval, "running", cfg.Running, "dry_run", cfg.DryRun)

	r.tick(ctx, cfg)

	for {
		select {
		case <-ctx.Done():
			slog.Info("copy trader stopping, waiting for in-flight cycle")
			r.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			cfg, err := r.state.LoadBotConfig(ctx)
			if err != nil {
				slog.Error("bot state unreadable, skipping tick", "err", err)
				continue
			}
			if next := tickInterval(cfg); next != interval {
				interval = next
				ticker.Reset(interval)
				slog.Info("poll interval changed", "interval", interval)
			}
			r.tick(ctx, cfg)
		}
	}
}

// RunOnce executes a single cycle with the current bot state, for the
// operator's `run-once` command. It shares the busy lock with the
// ticker, so it never overlaps a cycle of the same process. A run-once
// from a separate process only has the trade-hash dedup as a guard.
func (r *Runner) RunOnce(ctx context.Context) (domain.CycleResult, error) {
	cfg, err := r.state.LoadBotConfig(ctx)
	if err != nil {
		return domain.CycleResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.RunCycle(ctx, cfg)
}

func (r *Runner) tick(ctx context.Context, cfg domain.BotConfig) {
	if !cfg.Running {
		slog.Debug("bot paused, skipping tick")
		return
	}
	if !r.mu.TryLock() {
		slog.Warn("previous cycle still running, skipping tick")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.mu.Unlock()
		if _, err := r.engine.RunCycle(ctx, cfg); err != nil {
			slog.Error("cycle failed", "err", err)
		}
	}()
}

func tickInterval(cfg domain.BotConfig) time.Duration {
	if cfg.Interval <= 0 {
		return 30 * time.Second
	}
	return cfg.Interval
}
