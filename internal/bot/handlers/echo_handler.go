package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

const echoPrefix = "🔄 Echo: "

// NewEchoHandler returns a handler for the /echo command.
func NewEchoHandler(deps HandlerDeps) bot.HandlerFunc {
	return echoHandler{deps}.Handle
}

type echoHandler struct {
	deps HandlerDeps
}

func (h echoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "echo")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Echo handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID
	args := text.CommandArgs(update.Message.Text)

	if strings.TrimSpace(args) == "" {
		sendWithFallback(ctx, b, log, chatID, h.deps.Config.Messages.EchoUsage, "", h.deps.Config.Messages.EchoError)
		return
	}

	reply := text.Truncate(echoPrefix+args, text.MaxMessageLength)
	sendWithFallback(ctx, b, log, chatID, reply, "", h.deps.Config.Messages.EchoError)

	log.InfoContext(ctx, "Echo command received", "user", text.FormatUserInfo(update.Message.From), "text", text.SanitizeForLog(args))
}
