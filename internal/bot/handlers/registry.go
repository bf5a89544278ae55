package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	Command     string
	Description string
	// Order is the position in the published command list.
	Order      int
	Handler    tgbot.HandlerFunc
	Middleware []tgbot.Middleware
	// BotUsername is this bot's username. Commands addressed to another
	// bot with "/cmd@name" do not match.
	BotUsername string
}

// Match reports whether update carries this handler's command. Matching is
// case-insensitive and a "@botname" suffix must name this bot.
func (r RegisteredHandler) Match(update *models.Update) bool {
	if update.Message == nil {
		return false
	}
	cmd, target, ok := text.CommandFromMessage(update.Message.Text)
	if !ok || cmd != r.Command {
		return false
	}
	return target == "" || strings.EqualFold(target, r.BotUsername)
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// It configures each command with appropriate handlers and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	add := func(command, description string, h tgbot.HandlerFunc) {
		handlers["/"+command] = RegisteredHandler{
			Command:     command,
			Order:       len(handlers),
			Description: description,
			Handler:     h,
			Middleware:  []tgbot.Middleware{Recover(deps), CountCommand(deps, command)},
			BotUsername: deps.Config.Telegram.BotInfo.Username,
		}
	}

	add("start", "Show the welcome message", NewStartHandler(deps))
	add("help", "Show help and available commands", NewHelpHandler(deps))
	add("status", "Check bot status", NewStatusHandler(deps))
	add("echo", "Echo your message back", NewEchoHandler(deps))
	add("reset", "Clear the conversation history", NewResetHandler(deps))

	return handlers
}
