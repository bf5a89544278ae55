package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "bot.log"

	DefaultGroupReplyMode = "mention"
	DefaultPollTimeout    = 10 * time.Second

	DefaultAIRequestTimeout     = 30 * time.Second
	DefaultAIMaxHistoryMessages = 10
	DefaultAIMaxReplyLength     = 200
	DefaultAIInitialBackoff     = time.Second
	DefaultAIMaxBackoff         = time.Minute

	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	DefaultDBPath        = "storage.db"
	DefaultRetentionDays = 30

	DefaultServerAddr = ":8080"
)

// DefaultHuggingFaceEndpoints are the free inference endpoints tried in order
// when no providers are configured.
var DefaultHuggingFaceEndpoints = []string{
	"https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium",
	"https://api-inference.huggingface.co/models/facebook/blenderbot-400M-distill",
	"https://api-inference.huggingface.co/models/microsoft/DialoGPT-small",
}

// DefaultTasks are the scheduled tasks enabled out of the box.
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
	"history_prune":   {Enabled: true, Schedule: "0 30 3 * * *"},
}

// DefaultMessages are the reply texts used unless overridden in config.yaml.
var DefaultMessages = MessagesConfig{
	Welcome: `🤖 *Welcome to the 24/7 Bot!*

Hello {name}! 👋

I'm your friendly bot that's available around the clock to help you.

*Available Commands:*
• /start - Show this welcome message
• /help - Get help and available commands
• /status - Check bot status
• /echo <message> - Echo your message back
• /reset - Clear our conversation history

You can also just send me any message and I'll respond!

Type /help for more information.`,

	Help: "🆘 *Bot Help & Commands*\n\n" +
		"*Available Commands:*\n\n" +
		"🏁 `/start` - Welcome message and bot introduction\n" +
		"❓ `/help` - Show this help message\n" +
		"📊 `/status` - Display bot status and uptime\n" +
		"🔄 `/echo <message>` - Echo your message back\n" +
		"🧹 `/reset` - Forget the conversation history of this chat\n\n" +
		"*Message Handling:*\n" +
		"You can send me any text message and I'll reply with help from a free AI service!\n\n" +
		"*Bot Features:*\n" +
		"• 24/7 availability\n" +
		"• AI-powered conversation with short-term memory\n" +
		"• Command processing\n" +
		"• Error handling and logging\n\n" +
		"*Need more help?*\n" +
		"This bot is designed to be simple and user-friendly. Just start chatting!\n\n" +
		"*Bot Status:* Online ✅",

	StartError:      "Sorry, something went wrong. Please try again later.",
	HelpError:       "Sorry, I couldn't display the help message. Please try again.",
	StatusError:     "Sorry, I couldn't retrieve the status information.",
	EchoUsage:       "Usage: /echo <message>\n\nExample: /echo Hello World!",
	EchoError:       "Sorry, I couldn't echo your message. Please try again.",
	ResetConfirm:    "🧹 Conversation history cleared. Let's start fresh!",
	ResetError:      "Sorry, I couldn't clear the conversation history. Please try again.",
	InvalidMessage:  "I received your message, but it seems to be empty or invalid. Please try again!",
	MessageError:    "Sorry, I encountered an error processing your message. Please try again!",
	UnexpectedError: "🚨 Sorry, an unexpected error occurred. The issue has been logged and I'll keep working normally!",
}
