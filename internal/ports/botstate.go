package ports

import (
	"context"

	"github.com/alejandrodnm/polycopy/internal/domain"
)

// BotStateStore persists the global mutable bot state. The runner loads
// it fresh at the start of every cycle; operator commands save it.
type BotStateStore interface {
	LoadBotConfig(ctx context.Context) (domain.BotConfig, error)
	SaveBotConfig(ctx context.Context, cfg domain.BotConfig) error
}
