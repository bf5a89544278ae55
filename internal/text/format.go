package text

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"
)

// FormatUserInfo renders a user for log lines as
// "ID:<id> | @<username> | Name:<first> <last>", omitting missing parts.
func FormatUserInfo(user *models.User) string {
	if user == nil {
		return "Unknown User"
	}

	parts := make([]string, 0, 3)
	if user.ID != 0 {
		parts = append(parts, "ID:"+strconv.FormatInt(user.ID, 10))
	}
	if user.Username != "" {
		parts = append(parts, "@"+user.Username)
	}
	if user.FirstName != "" {
		name := "Name:" + user.FirstName
		if user.LastName != "" {
			name += " " + user.LastName
		}
		parts = append(parts, name)
	}

	if len(parts) == 0 {
		return "Unknown User"
	}
	return strings.Join(parts, " | ")
}

// IsValidMessage reports whether s is non-blank and within Telegram's
// message length limit.
func IsValidMessage(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return utf8.RuneCountInString(s) <= MaxMessageLength
}

// CommandFromMessage returns the lowercased command name of s without the
// leading slash. target is the bot username from an "@botname" suffix, or ""
// when there is none. ok is false when s is not a command.
func CommandFromMessage(s string) (command, target string, ok bool) {
	if !strings.HasPrefix(s, "/") {
		return "", "", false
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", "", false
	}
	command = strings.TrimPrefix(fields[0], "/")
	command, target, _ = strings.Cut(command, "@")
	return strings.ToLower(command), target, true
}

// CommandArgs returns the text after the first space of a command message,
// or "" when there is none.
func CommandArgs(s string) string {
	_, args, found := strings.Cut(s, " ")
	if !found {
		return ""
	}
	return args
}

// FormatUptime renders d as "2 days, 3 hours, 1 minute". Seconds are shown
// only when no larger unit is present; below one second it returns
// "Less than a minute".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 && len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	if len(parts) == 0 {
		return "Less than a minute"
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
