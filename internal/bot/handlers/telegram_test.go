package handlers

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
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/metrics"
)

// apiCall is one request received by fakeTelegram.
type apiCall struct {
	Method string
	Params map[string]string
}

// fakeTelegram is a Bot API server that records calls and answers with
// canned results.
type fakeTelegram struct {
	mu        sync.Mutex
	calls     []apiCall
	failSends int
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *bot.Bot) {
	t.Helper()

	ft := &fakeTelegram{}
	srv := httptest.NewServer(http.HandlerFunc(ft.serve))
	t.Cleanup(srv.Close)

	b, err := bot.New("123:abc", bot.WithSkipGetMe(), bot.WithServerURL(srv.URL))
	require.NoError(t, err)
	return ft, b
}

func (ft *fakeTelegram) serve(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	params := map[string]string{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				params[k] = val
			default:
				b, _ := json.Marshal(val)
				params[k] = string(b)
			}
		}
	} else if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			params[k] = v[0]
		}
	}

	ft.mu.Lock()
	ft.calls = append(ft.calls, apiCall{Method: method, Params: params})
	fail := method == "sendMessage" && ft.failSends > 0
	if fail {
		ft.failSends--
	}
	ft.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case fail:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`)
	case method == "sendMessage":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":100,"date":0,"chat":{"id":1,"type":"private"},"text":"ok"}}`)
	case method == "getMe":
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":999,"is_bot":true,"first_name":"Relay","username":"relay_bot"}}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
	}
}

func (ft *fakeTelegram) byMethod(method string) []apiCall {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	var out []apiCall
	for _, c := range ft.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (ft *fakeTelegram) sentTexts() []string {
	var out []string
	for _, c := range ft.byMethod("sendMessage") {
		out = append(out, c.Params["text"])
	}
	return out
}

// fakeResponder is a Responder with a scripted reply.
type fakeResponder struct {
	mu       sync.Mutex
	reply    ai.Reply
	err      error
	requests []ai.Request
	stats    ai.Stats
}

func (f *fakeResponder) GenerateResponse(_ context.Context, req ai.Request) (ai.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeResponder) Stats() ai.Stats { return f.stats }

func (f *fakeResponder) lastRequest(t *testing.T) ai.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

// failingStore fails every operation.
type failingStore struct{ database.Store }

func (failingStore) DeleteChatHistory(context.Context, int64) (int64, error) {
	return 0, context.DeadlineExceeded
}

func (failingStore) CountMessages(context.Context) (int64, error) {
	return 0, io.ErrUnexpectedEOF
}

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(t.TempDir() + "/handlers.db")
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func newTestDeps(t *testing.T, responder *fakeResponder) HandlerDeps {
	t.Helper()

	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			GroupReplyMode: config.DefaultGroupReplyMode,
			BotInfo:        config.BotInfo{ID: 999, Username: "relay_bot", FirstName: "Relay"},
		},
		AI:       config.AIConfig{MaxHistoryMessages: 10},
		Messages: config.DefaultMessages,
	}
	if responder == nil {
		responder = &fakeResponder{}
	}
	return HandlerDeps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:  cfg,
		Store:   newTestStore(t),
		AI:      responder,
		Metrics: metrics.NewAt(time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)),
		Version: "1.0.0",
	}
}

func textUpdate(chatID int64, chatType models.ChatType, txt string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Date: int(time.Now().Unix()),
			Chat: models.Chat{ID: chatID, Type: chatType},
			From: &models.User{ID: 7, FirstName: "Ada", LastName: "Lovelace", Username: "ada"},
			Text: txt,
		},
	}
}

// scrape returns the Prometheus exposition of deps.Metrics.
func scrape(t *testing.T, deps HandlerDeps) string {
	t.Helper()
	rec := httptest.NewRecorder()
	deps.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
