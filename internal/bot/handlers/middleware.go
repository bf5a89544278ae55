// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover creates a middleware that turns a handler panic into a logged
// error and the configured unexpected-error reply. The bot keeps running.
func Recover(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				log := deps.Logger.With("middleware", "Recover")
				log.ErrorContext(ctx, "Handler panicked", "panic", r, "update_id", update.ID, "stack", string(debug.Stack()))

				if update.Message == nil {
					return
				}
				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   deps.Config.Messages.UnexpectedError,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unexpected error message", "error", err, "chat_id", update.Message.Chat.ID)
				}
			}()
			next(ctx, bot, update)
		}
	}
}

// CountCommand creates a middleware that records command usage.
func CountCommand(deps HandlerDeps, command string) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if deps.Metrics != nil {
				deps.Metrics.RecordCommand(command)
			}
			next(ctx, bot, update)
		}
	}
}
