package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

const resetTimeout = 30 * time.Second

// NewResetHandler returns a handler for the /reset command.
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps}.Handle
}

type resetHandler struct {
	deps HandlerDeps
}

func (h resetHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")
	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Reset handler called with nil Message or From", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Reset command received", "user", text.FormatUserInfo(update.Message.From), "chat_id", chatID)

	timeoutCtx, cancel := context.WithTimeout(ctx, resetTimeout)
	defer cancel()

	deleted, err := h.deps.Store.DeleteChatHistory(timeoutCtx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to clear chat history", "error", err, "chat_id", chatID)
		if sendErr := sendText(ctx, b, chatID, h.deps.Config.Messages.ResetError, ""); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	log.InfoContext(ctx, "Chat history cleared", "chat_id", chatID, "deleted", deleted)

	confirm := fmt.Sprintf("%s\n\nRemoved %d stored %s.", h.deps.Config.Messages.ResetConfirm, deleted, pluralMessages(deleted))
	sendWithFallback(ctx, b, log, chatID, confirm, "", h.deps.Config.Messages.ResetError)
}

func pluralMessages(n int64) string {
	if n == 1 {
		return "message"
	}
	return "messages"
}
