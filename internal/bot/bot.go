// Package bot implements lifecycle management and component orchestration
// for the relay bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Poller receives Telegram updates until ctx is cancelled. *bot.Bot from
// go-telegram/bot satisfies it.
type Poller interface {
	Start(ctx context.Context)
}

// Runner is a component that runs until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	poller    Poller
	scheduler *Scheduler
	server    Runner
}

// NewBot creates a new instance of the bot. server may be nil when the
// keep-alive endpoint is disabled.
func NewBot(logger *slog.Logger, poller Poller, scheduler *Scheduler, server Runner) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		poller:    poller,
		scheduler: scheduler,
		server:    server,
	}
}

// Run starts the Telegram listener, the scheduler and the keep-alive server,
// and blocks until ctx is cancelled or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.poller.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return errors.New("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.server != nil {
		g.Go(func() error {
			return b.server.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
