package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/edgard/relaybot/internal/text"
)

// FallbackSource is the Reply.Source of rule-based replies.
const FallbackSource = "fallback"

// Reply is a generated answer and where it came from.
type Reply struct {
	Text     string
	Source   string
	Fallback bool
}

// Stats summarizes the provider chain for status output.
type Stats struct {
	Providers int
	Healthy   int
	// Current is the first provider that would be tried next, or "" when none is available.
	Current string
}

// Service answers chat messages through the provider chain, falling back
// to rule-based replies.
type Service struct {
	chain          *Chain
	fallback       *Fallback
	maxReplyLength int
	recorder       Recorder
	logger         *slog.Logger
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Chain may be nil, in which case only fallback replies are produced.
	Chain          *Chain
	Fallback       *Fallback
	MaxReplyLength int
	Recorder       Recorder
	Logger         *slog.Logger
}

// NewService creates a Service.
func NewService(opts ServiceOptions) *Service {
	if opts.Fallback == nil {
		opts.Fallback = NewFallback()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		chain:          opts.Chain,
		fallback:       opts.Fallback,
		maxReplyLength: opts.MaxReplyLength,
		recorder:       opts.Recorder,
		logger:         opts.Logger.With("component", "ai_service"),
	}
}

// GenerateResponse returns a reply for req. Provider failures are absorbed
// by the fallback; only cancellation of ctx is returned as an error.
func (s *Service) GenerateResponse(ctx context.Context, req Request) (Reply, error) {
	if s.chain != nil {
		raw, source, err := s.chain.Complete(ctx, req)
		switch {
		case err == nil:
			if reply := s.clean(raw); reply != "" {
				return Reply{Text: reply, Source: source}, nil
			}
			s.logger.WarnContext(ctx, "Provider reply empty after cleanup, using fallback", "provider", source)
		case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
			return Reply{}, err
		default:
			s.logger.WarnContext(ctx, "AI providers failed, using fallback", "chat_id", req.ChatID, "error", err)
		}
	}

	s.recorder.RecordFallback()
	return Reply{
		Text:     s.fallback.Reply(req.Text, req.IsGroup()),
		Source:   FallbackSource,
		Fallback: true,
	}, nil
}

func (s *Service) clean(raw string) string {
	return text.Truncate(text.Sanitize(raw), s.maxReplyLength)
}

// HealthReport lists provider health in chain order.
func (s *Service) HealthReport() []ProviderHealth {
	if s.chain == nil {
		return nil
	}
	return s.chain.HealthReport()
}

// Stats summarizes provider availability.
func (s *Service) Stats() Stats {
	var stats Stats
	for _, p := range s.HealthReport() {
		stats.Providers++
		if p.Available {
			stats.Healthy++
			if stats.Current == "" {
				stats.Current = p.Name
			}
		}
	}
	return stats
}
