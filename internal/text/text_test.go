package text_test

import (
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/text"
)

func TestFormatUserInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{name: "nil user", user: nil, expected: "Unknown User"},
		{name: "empty user", user: &models.User{}, expected: "Unknown User"},
		{name: "id only", user: &models.User{ID: 42}, expected: "ID:42"},
		{
			name:     "full user",
			user:     &models.User{ID: 42, Username: "jdoe", FirstName: "John", LastName: "Doe"},
			expected: "ID:42 | @jdoe | Name:John Doe",
		},
		{
			name:     "no username",
			user:     &models.User{ID: 7, FirstName: "Ana"},
			expected: "ID:7 | Name:Ana",
		},
		{
			name:     "last name without first name is ignored",
			user:     &models.User{ID: 7, LastName: "Silva"},
			expected: "ID:7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.FormatUserInfo(tt.user); got != tt.expected {
				t.Errorf("FormatUserInfo() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsValidMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty", input: "", expected: false},
		{name: "whitespace only", input: " \n\t ", expected: false},
		{name: "normal", input: "hello", expected: true},
		{name: "at limit", input: strings.Repeat("a", text.MaxMessageLength), expected: true},
		{name: "over limit", input: strings.Repeat("a", text.MaxMessageLength+1), expected: false},
		{name: "multibyte at limit", input: strings.Repeat("é", text.MaxMessageLength), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.IsValidMessage(tt.input); got != tt.expected {
				t.Errorf("IsValidMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCommandFromMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		command string
		target  string
		ok      bool
	}{
		{name: "plain text", input: "hello", command: "", ok: false},
		{name: "empty", input: "", command: "", ok: false},
		{name: "simple command", input: "/start", command: "start", ok: true},
		{name: "with args", input: "/echo hi there", command: "echo", ok: true},
		{name: "with bot suffix", input: "/Help@RelayBot", command: "help", target: "RelayBot", ok: true},
		{name: "suffix with args", input: "/reset@OtherBot now", command: "reset", target: "OtherBot", ok: true},
		{name: "leading space is not a command", input: " /start", command: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			command, target, ok := text.CommandFromMessage(tt.input)
			if command != tt.command || target != tt.target || ok != tt.ok {
				t.Errorf("CommandFromMessage() = (%q, %q, %v), want (%q, %q, %v)",
					command, target, ok, tt.command, tt.target, tt.ok)
			}
		})
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "/echo", expected: ""},
		{input: "/echo hello", expected: "hello"},
		{input: "/echo  two  spaces", expected: " two  spaces"},
		{input: "/echo@bot hi", expected: "hi"},
	}

	for _, tt := range tests {
		if got := text.CommandArgs(tt.input); got != tt.expected {
			t.Errorf("CommandArgs(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "zero", input: 0, expected: "Less than a minute"},
		{name: "negative", input: -time.Hour, expected: "Less than a minute"},
		{name: "one second", input: time.Second, expected: "1 second"},
		{name: "seconds", input: 45 * time.Second, expected: "45 seconds"},
		{name: "seconds hidden with minutes", input: 2*time.Minute + 5*time.Second, expected: "2 minutes"},
		{name: "one hour one minute", input: time.Hour + time.Minute, expected: "1 hour, 1 minute"},
		{
			name:     "days hours minutes",
			input:    2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second,
			expected: "2 days, 3 hours, 4 minutes",
		},
		{name: "exactly one day", input: 24 * time.Hour, expected: "1 day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.FormatUptime(tt.input); got != tt.expected {
				t.Errorf("FormatUptime() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain", input: "Hello world", expected: "Hello world"},
		{name: "collapses spaces", input: "  Hello   \t world  ", expected: "Hello world"},
		{name: "crlf", input: "a\r\nb\rc", expected: "a\nb\nc"},
		{name: "many newlines", input: "a\n\n\n\n\nb", expected: "a\n\nb"},
		{name: "invisible characters", input: "he\u200bllo\ufeff", expected: "he llo"},
		{name: "control characters", input: "a\x00b\x07c", expected: "a b c"},
		{name: "only whitespace", input: "  \u3000", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	t.Parallel()

	if got := text.SanitizeForLog("hi <script>alert(1)</script> 😀!"); got != "hi scriptalert(1)script !" {
		t.Errorf("SanitizeForLog() = %q", got)
	}

	long := strings.Repeat("x", 500)
	got := text.SanitizeForLog(long)
	if len([]rune(got)) != text.MaxLogTextLength || !strings.HasSuffix(got, "...") {
		t.Errorf("SanitizeForLog() did not truncate, got %d runes", len([]rune(got)))
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{input: "hello", max: 10, expected: "hello"},
		{input: "hello", max: 3, expected: "hel"},
		{input: "héllo", max: 2, expected: "hé"},
		{input: "hello", max: 0, expected: "hello"},
	}

	for _, tt := range tests {
		if got := text.Truncate(tt.input, tt.max); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
		}
	}
}

func TestEscapeMarkdownV1(t *testing.T) {
	t.Parallel()

	if got := text.EscapeMarkdownV1("snake_case *bold* `code` [link]"); got != "snake\\_case \\*bold\\* \\`code\\` \\[link]" {
		t.Errorf("EscapeMarkdownV1() = %q", got)
	}
}
