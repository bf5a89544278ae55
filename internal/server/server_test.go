package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/metrics"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeReporter []ai.ProviderHealth

func (f fakeReporter) HealthReport() []ai.ProviderHealth { return f }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoot(t *testing.T) {
	t.Parallel()

	rec := get(t, New(":0", Deps{}).Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bot is alive!", rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	healthy := ai.ProviderHealth{Name: "gemini", Available: true, State: "healthy"}
	cooling := ai.ProviderHealth{Name: "openai", Available: false, State: "cooldown", Failures: 2}

	tests := []struct {
		name       string
		db         Pinger
		providers  ProviderReporter
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{name: "all ok", db: fakePinger{}, providers: fakeReporter{healthy, cooling}, wantCode: http.StatusOK, wantStatus: "ok", wantDB: "ok"},
		{name: "no providers configured", db: fakePinger{}, providers: fakeReporter{}, wantCode: http.StatusOK, wantStatus: "ok", wantDB: "ok"},
		{name: "database down", db: fakePinger{err: errors.New("closed")}, providers: fakeReporter{healthy}, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded", wantDB: "unavailable"},
		{name: "all providers cooling down", db: fakePinger{}, providers: fakeReporter{cooling}, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded", wantDB: "ok"},
		{name: "no database", providers: fakeReporter{healthy}, wantCode: http.StatusOK, wantStatus: "ok", wantDB: "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := metrics.NewAt(time.Now().Add(-90 * time.Minute))
			m.RecordMessage()
			m.RecordMessage()

			srv := New(":0", Deps{Metrics: m, Database: tt.db, Providers: tt.providers})
			rec := get(t, srv.Handler(), "/health")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDB, body.Database)
			assert.Equal(t, int64(2), body.MessagesProcessed)
			assert.Equal(t, "1 hour, 30 minutes", body.Uptime)
			assert.NotNil(t, body.Providers)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.RecordCommand("start")

	rec := get(t, New(":0", Deps{Metrics: m}).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relaybot_commands_total")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New("", Deps{}).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.True(t, strings.HasPrefix(string(body), "Bot is alive"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	err := New("not-an-address", Deps{}).Run(context.Background())
	assert.Error(t, err)
}
