package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Start command received", "user", text.FormatUserInfo(update.Message.From), "chat_id", chatID)

	name := text.EscapeMarkdownV1(update.Message.From.FirstName)
	if name == "" {
		name = "there"
	}
	welcome := strings.ReplaceAll(h.deps.Config.Messages.Welcome, "{name}", name)

	sendWithFallback(ctx, b, log, chatID, welcome, models.ParseModeMarkdownV1, h.deps.Config.Messages.StartError)
}
