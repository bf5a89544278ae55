// Package telegram handles the setup and registration of Telegram bot handlers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/config"
)

// ErrNilBot is returned when a nil bot instance is passed in.
var ErrNilBot = errors.New("bot instance cannot be nil")

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
// API errors raised while polling are logged through logger.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	base := []bot.Option{
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram API error", "error", err)
		}),
	}
	b, err := bot.New(token, append(base, opts...)...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// FetchBotInfo reads the bot's own identity with getMe.
func FetchBotInfo(ctx context.Context, b *bot.Bot) (config.BotInfo, error) {
	if b == nil {
		return config.BotInfo{}, ErrNilBot
	}
	me, err := b.GetMe(ctx)
	if err != nil {
		return config.BotInfo{}, fmt.Errorf("failed to get bot info: %w", err)
	}
	return config.BotInfo{ID: me.ID, Username: me.Username, FirstName: me.FirstName}, nil
}

// RegisterHandlers registers command handlers with the Telegram bot instance,
// each wrapped in its own middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return ErrNilBot
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for _, name := range sortedKeys(registeredHandlers) {
		regHandler := registeredHandlers[name]
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "command", regHandler.Command)
			continue
		}
		b.RegisterHandlerMatchFunc(regHandler.Match, regHandler.Handler, regHandler.Middleware...)
		log.Debug("Registered handler", "command", regHandler.Command, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// SetCommands publishes the command list shown in Telegram clients.
func SetCommands(ctx context.Context, b *bot.Bot, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return ErrNilBot
	}
	ordered := make([]handlers.RegisteredHandler, 0, len(registeredHandlers))
	for _, h := range registeredHandlers {
		ordered = append(ordered, h)
	}
	slices.SortFunc(ordered, func(x, y handlers.RegisteredHandler) int { return x.Order - y.Order })

	commands := make([]models.BotCommand, 0, len(ordered))
	for _, h := range ordered {
		commands = append(commands, models.BotCommand{Command: h.Command, Description: h.Description})
	}
	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]handlers.RegisteredHandler) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
