package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Recorder receives per-call AI metrics.
type Recorder interface {
	RecordAIRequest(provider, outcome string, latency time.Duration)
	RecordFallback()
}

type nopRecorder struct{}

func (nopRecorder) RecordAIRequest(string, string, time.Duration) {}
func (nopRecorder) RecordFallback()                               {}

// Outcome labels passed to Recorder.RecordAIRequest.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// chainEntry pairs a provider with its health tracker.
type chainEntry struct {
	provider Provider
	health   *healthTracker
}

// ChainOption configures optional Chain behavior.
type ChainOption func(*Chain)

// WithLogger injects a structured logger into the Chain.
func WithLogger(l *slog.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

// WithRecorder reports every provider call to r.
func WithRecorder(r Recorder) ChainOption {
	return func(c *Chain) { c.recorder = r }
}

// WithHealthConfig sets the cooldown backoff used for every provider.
func WithHealthConfig(cfg HealthConfig) ChainOption {
	return func(c *Chain) { c.healthCfg = cfg }
}

// withClock replaces time.Now in health tracking.
func withClock(now func() time.Time) ChainOption {
	return func(c *Chain) { c.now = now }
}

// Chain tries providers in order and fails over on any error.
// Providers that failed are skipped while in cooldown.
type Chain struct {
	entries   []chainEntry
	logger    *slog.Logger
	recorder  Recorder
	healthCfg HealthConfig
	now       func() time.Time
}

// NewChain creates a chain from the given providers, tried in order.
func NewChain(providers []Provider, opts ...ChainOption) (*Chain, error) {
	if len(providers) == 0 {
		return nil, ErrNoProvider
	}

	c := &Chain{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.logger = c.logger.With("component", "ai_chain")
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}

	c.entries = make([]chainEntry, len(providers))
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("%w: provider %d is nil", ErrNoProvider, i)
		}
		entry := chainEntry{provider: p, health: newHealthTracker(c.healthCfg, c.now)}
		name := p.Name()
		logger := c.logger
		health := entry.health
		entry.health.onStateChange = func(from, to healthState) {
			switch to {
			case stateCooldown:
				_, failures, backoff, _ := health.snapshot()
				logger.Warn("Provider entered cooldown", "provider", name, "backoff", backoff, "failures", failures)
			case stateHealthy:
				logger.Info("Provider recovered", "provider", name, "previous_state", from.String())
			}
		}
		c.entries[i] = entry
	}

	return c, nil
}

// Complete returns the first non-empty reply from the available providers
// together with the name of the provider that produced it.
// Cancellation of ctx stops the walk and is returned as is.
func (c *Chain) Complete(ctx context.Context, req Request) (string, string, error) {
	var lastErr error
	for _, e := range c.entries {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		name := e.provider.Name()
		if !e.health.IsAvailable() {
			c.recorder.RecordAIRequest(name, outcomeSkipped, 0)
			c.logger.DebugContext(ctx, "Skipping provider in cooldown", "provider", name)
			continue
		}

		start := time.Now()
		reply, err := e.provider.Complete(ctx, req)
		latency := time.Since(start)

		if err == nil && !hasText(reply) {
			err = fmt.Errorf("%s: %w", name, ErrEmptyResponse)
		}
		if err == nil {
			e.health.RecordSuccess()
			c.recorder.RecordAIRequest(name, outcomeSuccess, latency)
			c.logger.DebugContext(ctx, "Provider replied", "provider", name, "latency", latency)
			return reply, name, nil
		}

		if isCancellation(ctx, err) {
			return "", "", ctx.Err()
		}

		lastErr = err
		e.health.RecordFailure()
		c.recorder.RecordAIRequest(name, outcomeError, latency)
		c.logger.WarnContext(ctx, "Provider failed, failing over", "provider", name, "error", err)
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("%w: last error: %w", ErrAllProviders, lastErr)
	}
	return "", "", fmt.Errorf("%w: all providers in cooldown", ErrAllProviders)
}

// ProviderHealth describes one provider for status and health output.
type ProviderHealth struct {
	Name          string    `json:"name"`
	Available     bool      `json:"available"`
	State         string    `json:"state"`
	Failures      int       `json:"consecutive_failures"`
	CooldownUntil time.Time `json:"cooldown_until,omitzero"`
}

// HealthReport lists every provider in chain order.
func (c *Chain) HealthReport() []ProviderHealth {
	report := make([]ProviderHealth, 0, len(c.entries))
	for _, e := range c.entries {
		state, failures, _, until := e.health.snapshot()
		h := ProviderHealth{
			Name:      e.provider.Name(),
			Available: e.health.IsAvailable(),
			State:     state.String(),
			Failures:  failures,
		}
		if state == stateCooldown {
			h.CooldownUntil = until
		}
		report = append(report, h)
	}
	return report
}
