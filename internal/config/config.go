// Package config provides configuration loading, validation, and management
// for the bot. It reads an optional YAML file and the process environment,
// applies defaults and validates the result.
package config

import (
	"errors"
	"strings"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// HasValidTokenFormat reports whether token looks like "bot_id:secret".
func HasValidTokenFormat(token string) bool {
	return strings.Count(token, ":") == 1
}

// Summary returns a loggable view of the configuration without secrets.
func (c *Config) Summary() map[string]any {
	providers := make([]string, 0, len(c.AI.Providers))
	for _, p := range c.AI.Providers {
		providers = append(providers, p.Type+":"+p.Name)
	}
	return map[string]any{
		"bot_token_present": c.Telegram.Token != "",
		"bot_token_length":  len(c.Telegram.Token),
		"debug_mode":        c.Debug,
		"log_level":         c.Logger.Level,
		"group_reply_mode":  c.Telegram.GroupReplyMode,
		"ai_providers":      providers,
		"db_path":           c.Database.Path,
		"keepalive_enabled": c.Server.Enabled,
	}
}
