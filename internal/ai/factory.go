package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/edgard/relaybot/internal/config"
)

// NewProviders builds one provider per configured entry, in order.
func NewProviders(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) ([]Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	providers := make([]Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		var (
			p   Provider
			err error
		)
		switch pc.Type {
		case "huggingface":
			p, err = NewHuggingFace(HuggingFaceOptions{
				Name:        pc.Name,
				Endpoint:    pc.Endpoint,
				Token:       pc.APIKey,
				MaxLength:   pc.MaxTokens,
				Temperature: pc.Temperature,
				HTTPClient:  httpClient,
			})
		case "gemini":
			p, err = NewGemini(ctx, GeminiOptions{
				Name:              pc.Name,
				APIKey:            pc.APIKey,
				Model:             orDefault(pc.Model, config.DefaultGeminiModel),
				Temperature:       pc.Temperature,
				MaxTokens:         pc.MaxTokens,
				SystemInstruction: pc.SystemInstruction,
				BaseURL:           pc.Endpoint,
				HTTPClient:        httpClient,
			})
		case "openai":
			p, err = NewOpenAI(OpenAIOptions{
				Name:              pc.Name,
				APIKey:            pc.APIKey,
				BaseURL:           pc.Endpoint,
				Model:             orDefault(pc.Model, config.DefaultOpenAIModel),
				Temperature:       pc.Temperature,
				MaxTokens:         pc.MaxTokens,
				SystemInstruction: pc.SystemInstruction,
				HTTPClient:        httpClient,
			})
		default:
			err = fmt.Errorf("unknown provider type %q", pc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", pc.Name, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// NewServiceFromConfig wires providers, chain and fallback from configuration.
// With no providers configured the service answers with fallback replies only.
func NewServiceFromConfig(ctx context.Context, cfg config.AIConfig, recorder Recorder, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	providers, err := NewProviders(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	var chain *Chain
	if len(providers) > 0 {
		chain, err = NewChain(providers,
			WithLogger(logger),
			WithRecorder(recorder),
			WithHealthConfig(HealthConfig{
				InitialBackoff: cfg.Health.InitialBackoff,
				MaxBackoff:     cfg.Health.MaxBackoff,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider chain: %w", err)
		}
	} else {
		logger.Warn("No AI providers configured, replies will use the rule-based fallback")
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	logger.Info("AI service initialized", "providers", names, "max_reply_length", cfg.MaxReplyLength)

	return NewService(ServiceOptions{
		Chain:          chain,
		MaxReplyLength: cfg.MaxReplyLength,
		Recorder:       recorder,
		Logger:         logger,
	}), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
