package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/config"
)

type recordedCall struct {
	method string
	body   map[string]string
}

func newFakeAPI(t *testing.T) (*bot.Bot, func() []recordedCall) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := map[string]string{}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var raw map[string]json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			for k, v := range raw {
				params[k] = string(v)
			}
		} else if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				params[k] = v[0]
			}
		}
		method := path.Base(r.URL.Path)

		mu.Lock()
		calls = append(calls, recordedCall{method: method, body: params})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if method == "getMe" {
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":4242,"is_bot":true,"first_name":"Relay","username":"relay_bot"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
	}))
	t.Cleanup(srv.Close)

	b, err := NewTelegramBot("123:abc", slog.New(slog.NewTextHandler(io.Discard, nil)),
		bot.WithSkipGetMe(), bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	return b, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func testHandlers() map[string]handlers.RegisteredHandler {
	deps := handlers.HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{Messages: config.DefaultMessages},
	}
	return handlers.RegisterAllCommands(deps)
}

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	t.Parallel()

	_, err := NewTelegramBot("", nil)
	assert.Error(t, err)
}

func TestFetchBotInfo(t *testing.T) {
	t.Parallel()

	b, _ := newFakeAPI(t)
	info, err := FetchBotInfo(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, config.BotInfo{ID: 4242, Username: "relay_bot", FirstName: "Relay"}, info)

	_, err = FetchBotInfo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilBot)
}

func TestSetCommands_PublishesInOrder(t *testing.T) {
	t.Parallel()

	b, calls := newFakeAPI(t)
	require.NoError(t, SetCommands(context.Background(), b, testHandlers()))

	recorded := calls()
	require.Len(t, recorded, 1)
	assert.Equal(t, "setMyCommands", recorded[0].method)

	var commands []models.BotCommand
	require.NoError(t, json.Unmarshal([]byte(recorded[0].body["commands"]), &commands))
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Command)
		assert.NotEmpty(t, c.Description)
	}
	assert.Equal(t, []string{"start", "help", "status", "echo", "reset"}, names)
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	b, _ := newFakeAPI(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.NoError(t, RegisterHandlers(b, log, testHandlers()))
	assert.NoError(t, RegisterHandlers(b, log, nil))
	assert.ErrorIs(t, RegisterHandlers(nil, log, testHandlers()), ErrNilBot)
}

func TestTokenPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "***", tokenPrefix("123:abc"))
	assert.Equal(t, "12345678...", tokenPrefix("12345678:secret"))
}
