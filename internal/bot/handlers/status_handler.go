package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

const startedAtLayout = "2006-01-02 15:04:05"

// NewStatusHandler returns a handler for the /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Status command received", "user", text.FormatUserInfo(update.Message.From), "chat_id", chatID)

	report, err := h.report(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build status report", "error", err, "chat_id", chatID)
		if sendErr := sendText(ctx, b, chatID, h.deps.Config.Messages.StatusError, ""); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	sendWithFallback(ctx, b, log, chatID, report, models.ParseModeMarkdownV1, h.deps.Config.Messages.StatusError)
}

func (h statusHandler) report(ctx context.Context) (string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stored, err := h.deps.Store.CountMessages(dbCtx)
	if err != nil {
		return "", fmt.Errorf("count messages: %w", err)
	}
	chats, err := h.deps.Store.CountActiveChats(dbCtx)
	if err != nil {
		return "", fmt.Errorf("count active chats: %w", err)
	}

	snap := h.deps.Metrics.Snapshot()
	stats := h.deps.AI.Stats()

	current := "fallback replies only"
	if stats.Current != "" {
		current = text.EscapeMarkdownV1(stats.Current)
	}

	var sb strings.Builder
	sb.WriteString("📊 *Bot Status Report*\n\n")
	sb.WriteString("🟢 *Status:* Online and Running\n")
	fmt.Fprintf(&sb, "⏰ *Uptime:* %s\n", text.FormatUptime(snap.Uptime))
	fmt.Fprintf(&sb, "🕐 *Started:* %s\n", snap.StartedAt.Format(startedAtLayout))
	fmt.Fprintf(&sb, "💬 *Messages Processed:* %d\n", snap.MessagesProcessed)
	fmt.Fprintf(&sb, "🤖 *Bot Version:* %s\n\n", text.EscapeMarkdownV1(h.deps.Version))
	sb.WriteString("*Conversation Memory:*\n")
	fmt.Fprintf(&sb, "• Stored messages: %d\n", stored)
	fmt.Fprintf(&sb, "• Active conversations: %d\n\n", chats)
	sb.WriteString("*AI Providers:*\n")
	fmt.Fprintf(&sb, "• Healthy: %d/%d\n", stats.Healthy, stats.Providers)
	fmt.Fprintf(&sb, "• Current: %s\n\n", current)
	sb.WriteString("All systems operational! 🚀")

	return sb.String(), nil
}
