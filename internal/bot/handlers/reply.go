package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/database"
)

const (
	aiProcessingTimeout = 2 * time.Minute
	sendMessageTimeout  = 10 * time.Second
	dbTimeout           = 5 * time.Second
	saveRetries         = 3
)

// sendText sends text to chatID. A non-empty parseMode enables Markdown or HTML.
func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string, parseMode models.ParseMode) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	_, err := b.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	return err
}

// sendWithFallback sends text and, if that fails, the plain errText instead.
func sendWithFallback(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string, parseMode models.ParseMode, errText string) {
	err := sendText(ctx, b, chatID, text, parseMode)
	if err == nil {
		return
	}
	log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	if err := sendText(ctx, b, chatID, errText, ""); err != nil {
		log.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", chatID)
	}
}

// SaveMessageWithRetry attempts to save a message to the database with retry logic.
func SaveMessageWithRetry(ctx context.Context, deps HandlerDeps, msg *database.Message, msgType string) {
	log := deps.Logger.With("handler", "message")
	var err error

	for attempt := 1; attempt <= saveRetries; attempt++ {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Context cancelled, aborting save", "type", msgType, "error", ctx.Err(), "chat_id", msg.ChatID)
			return
		}

		dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
		err = deps.Store.SaveMessage(dbCtx, msg)
		cancel()

		if err == nil {
			log.DebugContext(ctx, "Message saved", "type", msgType, "db_message_id", msg.ID, "chat_id", msg.ChatID)
			return
		}

		log.WarnContext(ctx, "Failed to save message, retrying", "type", msgType, "error", err, "chat_id", msg.ChatID, "attempt", attempt)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(100*attempt) * time.Millisecond):
		}
	}

	log.ErrorContext(ctx, "Failed to save message after retries", "type", msgType, "error", err, "chat_id", msg.ChatID, "retries", saveRetries)
}
