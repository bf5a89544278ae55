package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Gemini generates replies with Google's Gemini API.
type Gemini struct {
	name          string
	model         string
	client        *genai.Client
	contentConfig *genai.GenerateContentConfig
}

// GeminiOptions configures a Gemini provider.
type GeminiOptions struct {
	Name              string
	APIKey            string
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	if opts.Name == "" {
		opts.Name = "gemini"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	contentCfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		temperature := opts.Temperature
		contentCfg.Temperature = &temperature
	}
	if opts.MaxTokens > 0 {
		contentCfg.MaxOutputTokens = int32(opts.MaxTokens) //nolint:gosec // validated non-negative
	}
	if opts.SystemInstruction != "" {
		contentCfg.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}

	return &Gemini{
		name:          opts.Name,
		model:         opts.Model,
		client:        client,
		contentConfig: contentCfg,
	}, nil
}

// Name returns the provider name.
func (g *Gemini) Name() string { return g.name }

// Complete sends the history and the new message as one conversation.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Text, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.contentConfig)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if code, ok := geminiStatus(err); ok {
			return "", statusError(g.name, code, err.Error())
		}
		return "", fmt.Errorf("%s: %w: %w", g.name, ErrProviderDown, err)
	}

	reply := resp.Text()
	if !hasText(reply) {
		return "", fmt.Errorf("%s: %w", g.name, ErrEmptyResponse)
	}
	return reply, nil
}

// geminiStatus extracts the HTTP status code from a genai API error.
func geminiStatus(err error) (int, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch apiErr := any(e).(type) {
		case genai.APIError:
			return apiErr.Code, true
		case *genai.APIError:
			return apiErr.Code, true
		}
	}
	return 0, false
}
