package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// typingInterval stays below the five seconds a typing status is shown for.
const typingInterval = 4 * time.Second

// keepTyping sends the typing action now and then every typingInterval until
// the returned stop function is called.
func keepTyping(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	send := func() {
		_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
		if err != nil && ctx.Err() == nil {
			log.DebugContext(ctx, "Failed to send typing action", "error", err, "chat_id", chatID)
		}
	}

	send()
	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
