package config

import "time"

// Config defines the application configuration. Values come from defaults,
// an optional config.yaml and environment variables (see LoadConfig).
type Config struct {
	// Debug is parsed from the DEBUG environment variable and forces debug logging.
	Debug bool `mapstructure:"-"`

	Logger    LoggerConfig    `mapstructure:"logger"    validate:"required"`
	Telegram  TelegramConfig  `mapstructure:"telegram"  validate:"required"`
	AI        AIConfig        `mapstructure:"ai"        validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	Messages  MessagesConfig  `mapstructure:"messages"  validate:"required"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
	// File receives a copy of every log line. Empty disables file logging.
	File string `mapstructure:"file"`
}

// TelegramConfig holds Telegram connection and behavior settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// GroupReplyMode controls plain-message handling in groups:
	// "mention" answers only when the bot is mentioned or replied to, "all" answers everything.
	GroupReplyMode string        `mapstructure:"group_reply_mode" validate:"required,oneof=all mention"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"     validate:"min=1s,max=2m"`

	// BotInfo is filled at runtime from getMe.
	BotInfo BotInfo `mapstructure:"-"`
}

// BotInfo identifies the running bot account.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// AIConfig holds AI relay settings.
type AIConfig struct {
	RequestTimeout     time.Duration `mapstructure:"request_timeout"      validate:"min=1s,max=10m"`
	MaxHistoryMessages int           `mapstructure:"max_history_messages" validate:"min=0,max=100"`
	MaxReplyLength     int           `mapstructure:"max_reply_length"     validate:"min=0"`

	HuggingFaceToken string `mapstructure:"huggingface_token"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	OpenAIBaseURL    string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	Health    HealthConfig     `mapstructure:"health"`
	Providers []ProviderConfig `mapstructure:"providers" validate:"dive"`
}

// HealthConfig controls provider cooldown after failures.
type HealthConfig struct {
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"min=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"     validate:"min=0"`
}

// ProviderConfig describes one AI backend in the failover chain.
type ProviderConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Type string `mapstructure:"type" validate:"required,oneof=huggingface gemini openai"`
	// Endpoint is the inference URL (huggingface) or API base URL (openai).
	Endpoint          string  `mapstructure:"endpoint" validate:"omitempty,url"`
	Model             string  `mapstructure:"model"`
	APIKey            string  `mapstructure:"api_key"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxTokens         int     `mapstructure:"max_tokens"  validate:"min=0"`
	SystemInstruction string  `mapstructure:"system_instruction"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// RetentionDays bounds stored history age. 0 keeps everything.
	RetentionDays int `mapstructure:"retention_days" validate:"min=0"`
}

// SchedulerConfig lists scheduled tasks by registry name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a task and sets its cron schedule (with seconds field).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// ServerConfig holds the keep-alive HTTP server settings.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing reply texts.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"          validate:"required"`
	Help            string `mapstructure:"help"             validate:"required"`
	StartError      string `mapstructure:"start_error"      validate:"required"`
	HelpError       string `mapstructure:"help_error"       validate:"required"`
	StatusError     string `mapstructure:"status_error"     validate:"required"`
	EchoUsage       string `mapstructure:"echo_usage"       validate:"required"`
	EchoError       string `mapstructure:"echo_error"       validate:"required"`
	ResetConfirm    string `mapstructure:"reset_confirm"    validate:"required"`
	ResetError      string `mapstructure:"reset_error"      validate:"required"`
	InvalidMessage  string `mapstructure:"invalid_message"  validate:"required"`
	MessageError    string `mapstructure:"message_error"    validate:"required"`
	UnexpectedError string `mapstructure:"unexpected_error" validate:"required"`
}
