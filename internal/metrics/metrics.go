// Package metrics holds the bot's runtime counters and Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relaybot"

// AI request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics tracks runtime counters with atomics and exports Prometheus
// collectors registered on a private registry.
type Metrics struct {
	startedAt time.Time
	processed atomic.Int64

	registry *prometheus.Registry

	updates         *prometheus.CounterVec
	commands        *prometheus.CounterVec
	messages        prometheus.Counter
	aiRequests      *prometheus.CounterVec
	aiLatency       *prometheus.HistogramVec
	fallbackReplies prometheus.Counter
	taskRuns        *prometheus.CounterVec
}

// New creates a Metrics instance whose uptime starts now.
func New() *Metrics {
	return NewAt(time.Now())
}

// NewAt creates a Metrics instance with the given start time.
func NewAt(startedAt time.Time) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		startedAt: startedAt,
		registry:  reg,
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Telegram updates received, by type.",
		}, []string{"type"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Bot commands handled, by command.",
		}, []string{"command"}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Text messages relayed to the AI service.",
		}),
		aiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "AI provider calls, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		aiLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "AI provider call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		fallbackReplies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_replies_total",
			Help:      "Replies produced by the rule-based fallback.",
		}),
		taskRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_task_runs_total",
			Help:      "Scheduled task runs, by task and outcome.",
		}, []string{"task", "outcome"}),
	}
}

// StartedAt returns the process start time.
func (m *Metrics) StartedAt() time.Time { return m.startedAt }

// Uptime returns the time elapsed since StartedAt.
func (m *Metrics) Uptime() time.Duration { return time.Since(m.startedAt) }

// MessagesProcessed returns the number of relayed text messages.
func (m *Metrics) MessagesProcessed() int64 { return m.processed.Load() }

// RecordMessage counts a text message relayed to the AI service.
func (m *Metrics) RecordMessage() {
	m.processed.Add(1)
	m.messages.Inc()
}

// RecordUpdate counts a received update.
func (m *Metrics) RecordUpdate(updateType string) {
	m.updates.WithLabelValues(updateType).Inc()
}

// RecordCommand counts a handled command.
func (m *Metrics) RecordCommand(command string) {
	m.commands.WithLabelValues(command).Inc()
}

// RecordAIRequest records one provider call.
func (m *Metrics) RecordAIRequest(provider, outcome string, latency time.Duration) {
	m.aiRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.aiLatency.WithLabelValues(provider).Observe(latency.Seconds())
	}
}

// RecordFallback counts a rule-based reply.
func (m *Metrics) RecordFallback() {
	m.fallbackReplies.Inc()
}

// RecordTaskRun counts a scheduled task execution.
func (m *Metrics) RecordTaskRun(task string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.taskRuns.WithLabelValues(task, outcome).Inc()
}

// Handler serves the Prometheus exposition format for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Snapshot is a point-in-time view of the runtime counters.
type Snapshot struct {
	StartedAt         time.Time     `json:"started_at"`
	Uptime            time.Duration `json:"uptime_ns"`
	MessagesProcessed int64         `json:"messages_processed"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		StartedAt:         m.startedAt,
		Uptime:            m.Uptime(),
		MessagesProcessed: m.MessagesProcessed(),
	}
}

// Middleware counts every update passing through the bot.
func Middleware(m *Metrics) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			m.RecordUpdate(UpdateType(update))
			next(ctx, b, update)
		}
	}
}

// UpdateType names the kind of update for labels and logs.
func UpdateType(update *models.Update) string {
	switch {
	case update == nil:
		return "unknown"
	case update.Message != nil:
		return "message"
	case update.EditedMessage != nil:
		return "edited_message"
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.MyChatMember != nil:
		return "my_chat_member"
	default:
		return "other"
	}
}
