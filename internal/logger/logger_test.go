package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "hello w...", truncateString("hello world!", 10))
	assert.Equal(t, "...", truncateString("hello", 2))
	assert.Equal(t, "héé...", truncateString("hééééééé", 6))
}

func TestNewLogger_WritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "bot.log")
	log, closer, err := NewLogger("warn", true, path)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("visible", "key", "value")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestNewLogger_BadFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, _, err := NewLogger("info", false, filepath.Join(t.TempDir(), "missing", "bot.log"))
	assert.Error(t, err)
}

func TestMiddleware_TraceID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, false, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seen string
	next := func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		seen = TraceID(ctx)
		log.InfoContext(ctx, "handler line")
	}

	update := &models.Update{
		ID: 7,
		Message: &models.Message{
			ID:   3,
			Chat: models.Chat{ID: 42, Type: models.ChatTypePrivate},
			From: &models.User{ID: 99},
			Text: "hello there",
		},
	}
	Middleware(log)(next)(context.Background(), nil, update)

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "chat_id=42")
	assert.Contains(t, buf.String(), "Finished processing update")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "trace_id="+seen), line)
	}
	assert.Contains(t, lines[1], "handler line")
}

func TestTraceHandler_JSONAndWithoutID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, true, nil)).With("component", "test")

	log.InfoContext(WithTraceID(context.Background(), "abc"), "with id")
	log.InfoContext(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"trace_id":"abc"`)
	assert.Contains(t, lines[0], `"component":"test"`)
	assert.NotContains(t, lines[1], "trace_id")
}

func TestTraceID_Missing(t *testing.T) {
	t.Parallel()
	assert.Empty(t, TraceID(context.Background()))
	assert.Equal(t, "abc", TraceID(WithTraceID(context.Background(), "abc")))
}
