package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/metrics"
)

// Responder generates replies to chat messages.
type Responder interface {
	GenerateResponse(ctx context.Context, req ai.Request) (ai.Reply, error)
	Stats() ai.Stats
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	AI      Responder
	Metrics *metrics.Metrics
	Version string
}
