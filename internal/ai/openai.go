package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAI generates replies with any OpenAI-compatible chat completions API.
type OpenAI struct {
	name              string
	model             string
	temperature       float32
	maxTokens         int
	systemInstruction string
	client            openai.Client
}

// OpenAIOptions configures an OpenAI provider.
type OpenAIOptions struct {
	Name              string
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
	HTTPClient        *http.Client
}

// NewOpenAI creates an OpenAI-compatible provider. Retries are disabled;
// the chain fails over instead.
func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	if opts.Name == "" {
		opts.Name = "openai"
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenAI{
		name:              opts.Name,
		model:             opts.Model,
		temperature:       opts.Temperature,
		maxTokens:         opts.MaxTokens,
		systemInstruction: opts.SystemInstruction,
		client:            openai.NewClient(clientOpts...),
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string { return o.name }

// Complete sends the system instruction, history and new message as chat messages.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if o.systemInstruction != "" {
		messages = append(messages, openai.SystemMessage(o.systemInstruction))
	}
	for _, turn := range req.History {
		if turn.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Text))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(float64(o.temperature))
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", statusError(o.name, apiErr.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%s: %w: %w", o.name, ErrProviderDown, err)
	}

	if len(completion.Choices) == 0 || !hasText(completion.Choices[0].Message.Content) {
		return "", fmt.Errorf("%s: %w", o.name, ErrEmptyResponse)
	}
	return completion.Choices[0].Message.Content, nil
}
