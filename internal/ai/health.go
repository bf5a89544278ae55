package ai

import (
	"sync"
	"time"
)

// healthState represents the current availability state of a provider.
type healthState int

const (
	stateHealthy  healthState = iota
	stateCooldown             // failed recently, skipped until the backoff expires
)

// String returns a human-readable label for the health state.
func (s healthState) String() string {
	switch s {
	case stateHealthy:
		return "healthy"
	case stateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// HealthConfig controls provider cooldown after failures.
type HealthConfig struct {
	// InitialBackoff is the cooldown after the first failure. Default: 1s.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff. Default: 60s.
	MaxBackoff time.Duration
}

func (c *HealthConfig) defaults() {
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 60 * time.Second
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
}

// healthTracker monitors the availability of a single provider with
// exponential backoff on consecutive failures.
type healthTracker struct {
	cfg HealthConfig

	// onStateChange is called outside the lock whenever the state changes.
	onStateChange func(from, to healthState)

	mu              sync.Mutex
	state           healthState
	failures        int
	currentBackoff  time.Duration
	cooldownExpires time.Time

	now func() time.Time
}

func newHealthTracker(cfg HealthConfig, now func() time.Time) *healthTracker {
	cfg.defaults()
	if now == nil {
		now = time.Now
	}
	return &healthTracker{cfg: cfg, state: stateHealthy, now: now}
}

// IsAvailable reports whether the provider can accept requests.
// A provider in cooldown becomes available once its backoff expires.
func (h *healthTracker) IsAvailable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.state == stateHealthy || !h.now().Before(h.cooldownExpires)
}

// RecordSuccess resets the tracker to the healthy state.
func (h *healthTracker) RecordSuccess() {
	h.mu.Lock()
	prev := h.state
	h.state = stateHealthy
	h.failures = 0
	h.currentBackoff = 0
	h.cooldownExpires = time.Time{}
	h.mu.Unlock()

	if prev != stateHealthy && h.onStateChange != nil {
		h.onStateChange(prev, stateHealthy)
	}
}

// RecordFailure puts the provider in cooldown, doubling the backoff on each
// consecutive failure up to MaxBackoff.
func (h *healthTracker) RecordFailure() {
	h.mu.Lock()
	prev := h.state
	h.failures++
	if h.currentBackoff == 0 {
		h.currentBackoff = h.cfg.InitialBackoff
	} else {
		h.currentBackoff *= 2
	}
	if h.currentBackoff > h.cfg.MaxBackoff {
		h.currentBackoff = h.cfg.MaxBackoff
	}
	h.cooldownExpires = h.now().Add(h.currentBackoff)
	h.state = stateCooldown
	h.mu.Unlock()

	if prev != stateCooldown && h.onStateChange != nil {
		h.onStateChange(prev, stateCooldown)
	}
}

// snapshot returns the tracker state under one lock.
func (h *healthTracker) snapshot() (state healthState, failures int, backoff time.Duration, until time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, h.failures, h.currentBackoff, h.cooldownExpires
}
