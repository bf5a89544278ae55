package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set in the environment win. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("env file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	slog.Debug("env file loaded", "path", path)
	return nil
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional)
// 3. environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("%w: failed to bind environment: %v", ErrConfiguration, err)
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	cfg.Debug = ParseBool(v.GetString("debug"))
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	}

	level, ok := NormalizeLevel(cfg.Logger.Level)
	if !ok {
		slog.Warn("Invalid log level, using info instead", "level", cfg.Logger.Level)
	}
	cfg.Logger.Level = level
	if cfg.Debug {
		cfg.Logger.Level = "debug"
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_BOT_TOKEN environment variable is required", ErrConfiguration)
	}

	applyProviderDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if !HasValidTokenFormat(cfg.Telegram.Token) {
		slog.Warn("Bot token format appears to be invalid, expected format is 'bot_id:token'")
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	slog.Debug("Configuration file loaded", "path", path)
	return nil
}

// bindEnv maps the documented environment variables onto config keys.
// When several variables are listed for one key the first non-empty one wins.
// BOT_TOKEN is resolved in LoadConfig so a blank TELEGRAM_BOT_TOKEN does not
// hide it.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"telegram.token":            {"TELEGRAM_BOT_TOKEN"},
		"debug":                     {"DEBUG"},
		"logger.level":              {"LOG_LEVEL"},
		"logger.json":               {"LOG_JSON"},
		"logger.file":               {"LOG_FILE"},
		"database.path":             {"DB_PATH"},
		"server.addr":               {"KEEPALIVE_ADDR", "PORT_ADDR"},
		"ai.huggingface_token":      {"HF_API_TOKEN", "HUGGINGFACE_API_TOKEN"},
		"ai.gemini_api_key":         {"GEMINI_API_KEY"},
		"ai.openai_api_key":         {"OPENAI_API_KEY"},
		"ai.openai_base_url":        {"OPENAI_BASE_URL"},
		"telegram.group_reply_mode": {"GROUP_REPLY_MODE"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", "false")

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)
	v.SetDefault("logger.file", DefaultLogFile)

	v.SetDefault("telegram.group_reply_mode", DefaultGroupReplyMode)
	v.SetDefault("telegram.poll_timeout", DefaultPollTimeout)

	v.SetDefault("ai.request_timeout", DefaultAIRequestTimeout)
	v.SetDefault("ai.max_history_messages", DefaultAIMaxHistoryMessages)
	v.SetDefault("ai.max_reply_length", DefaultAIMaxReplyLength)
	v.SetDefault("ai.openai_base_url", DefaultOpenAIBaseURL)
	v.SetDefault("ai.health.initial_backoff", DefaultAIInitialBackoff)
	v.SetDefault("ai.health.max_backoff", DefaultAIMaxBackoff)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.retention_days", DefaultRetentionDays)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.addr", DefaultServerAddr)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.start_error", DefaultMessages.StartError)
	v.SetDefault("messages.help_error", DefaultMessages.HelpError)
	v.SetDefault("messages.status_error", DefaultMessages.StatusError)
	v.SetDefault("messages.echo_usage", DefaultMessages.EchoUsage)
	v.SetDefault("messages.echo_error", DefaultMessages.EchoError)
	v.SetDefault("messages.reset_confirm", DefaultMessages.ResetConfirm)
	v.SetDefault("messages.reset_error", DefaultMessages.ResetError)
	v.SetDefault("messages.invalid_message", DefaultMessages.InvalidMessage)
	v.SetDefault("messages.message_error", DefaultMessages.MessageError)
	v.SetDefault("messages.unexpected_error", DefaultMessages.UnexpectedError)
}

// applyProviderDefaults builds the provider chain when none is configured and
// fills shared credentials into configured providers that lack their own.
// Keyed providers go first; the free Hugging Face endpoints always follow.
func applyProviderDefaults(cfg *Config) {
	ai := &cfg.AI
	if len(ai.Providers) == 0 {
		if ai.GeminiAPIKey != "" {
			ai.Providers = append(ai.Providers, ProviderConfig{
				Name:  "gemini",
				Type:  "gemini",
				Model: DefaultGeminiModel,
			})
		}
		if ai.OpenAIAPIKey != "" {
			ai.Providers = append(ai.Providers, ProviderConfig{
				Name:     "openai",
				Type:     "openai",
				Endpoint: ai.OpenAIBaseURL,
				Model:    DefaultOpenAIModel,
			})
		}
		for _, endpoint := range DefaultHuggingFaceEndpoints {
			ai.Providers = append(ai.Providers, ProviderConfig{
				Name:     endpoint[strings.LastIndex(endpoint, "/")+1:],
				Type:     "huggingface",
				Endpoint: endpoint,
			})
		}
	}

	for i := range ai.Providers {
		p := &ai.Providers[i]
		if p.APIKey != "" {
			continue
		}
		switch p.Type {
		case "huggingface":
			p.APIKey = ai.HuggingFaceToken
		case "gemini":
			p.APIKey = ai.GeminiAPIKey
		case "openai":
			p.APIKey = ai.OpenAIAPIKey
		}
	}
}

// ParseBool reports whether s is one of the accepted truthy spellings:
// true, 1, yes, on (case-insensitive).
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// NormalizeLevel maps user supplied level names (including DEBUG, INFO, WARNING,
// ERROR and CRITICAL) to one of debug, info, warn or error. The boolean is
// false when the input was not recognized and info was substituted.
func NormalizeLevel(level string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return "debug", true
	case "info", "":
		return "info", true
	case "warn", "warning":
		return "warn", true
	case "error", "critical":
		return "error", true
	default:
		return "info", false
	}
}
