package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultHFMaxLength   = 100
	defaultHFTemperature = 0.7
	maxErrorBodyBytes    = 512
)

// HuggingFace calls a Hugging Face Inference API model endpoint.
type HuggingFace struct {
	name        string
	endpoint    string
	token       string
	maxLength   int
	temperature float32
	httpClient  *http.Client
}

// HuggingFaceOptions configures a HuggingFace provider.
type HuggingFaceOptions struct {
	Name     string
	Endpoint string
	// Token is optional; the free tier accepts anonymous requests.
	Token       string
	MaxLength   int
	Temperature float32
	HTTPClient  *http.Client
}

// NewHuggingFace creates a provider for one inference endpoint.
func NewHuggingFace(opts HuggingFaceOptions) (*HuggingFace, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("huggingface endpoint is required")
	}
	if opts.Name == "" {
		opts.Name = opts.Endpoint[strings.LastIndex(opts.Endpoint, "/")+1:]
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = defaultHFMaxLength
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultHFTemperature
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &HuggingFace{
		name:        opts.Name,
		endpoint:    opts.Endpoint,
		token:       opts.Token,
		maxLength:   opts.MaxLength,
		temperature: opts.Temperature,
		httpClient:  opts.HTTPClient,
	}, nil
}

// Name returns the provider name.
func (h *HuggingFace) Name() string { return h.name }

type hfConversationInputs struct {
	PastUserInputs     []string `json:"past_user_inputs"`
	GeneratedResponses []string `json:"generated_responses"`
	Text               string   `json:"text"`
}

type hfConversationRequest struct {
	Inputs hfConversationInputs `json:"inputs"`
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float32 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
}

type hfTextRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGenerated struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

// isConversational reports whether the endpoint serves a DialoGPT model,
// which takes the conversation payload instead of plain text.
func (h *HuggingFace) isConversational() bool {
	return strings.Contains(h.endpoint, "DialoGPT")
}

func (h *HuggingFace) payload(req Request) any {
	if h.isConversational() {
		inputs, responses := splitHistory(req.History)
		if inputs == nil {
			inputs = []string{}
		}
		if responses == nil {
			responses = []string{}
		}
		return hfConversationRequest{Inputs: hfConversationInputs{
			PastUserInputs:     inputs,
			GeneratedResponses: responses,
			Text:               req.Text,
		}}
	}
	return hfTextRequest{
		Inputs: req.Text,
		Parameters: hfParameters{
			MaxLength:   h.maxLength,
			Temperature: h.temperature,
			DoSample:    true,
		},
	}
}

// Complete posts the message to the endpoint and returns the generated text
// with the echoed input removed.
func (h *HuggingFace) Complete(ctx context.Context, req Request) (string, error) {
	httpReq, err := h.buildRequest(ctx, h.payload(req))
	if err != nil {
		return "", fmt.Errorf("%s: failed to build request: %w", h.name, err)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w: %w", h.name, ErrProviderDown, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w: failed to read response: %w", h.name, ErrProviderDown, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(body)
		if len(detail) > maxErrorBodyBytes {
			detail = detail[:maxErrorBodyBytes]
		}
		return "", statusError(h.name, resp.StatusCode, strings.TrimSpace(detail))
	}

	generated, err := decodeGenerated(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", h.name, err)
	}

	if req.Text != "" {
		generated = strings.ReplaceAll(generated, req.Text, "")
	}
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return "", fmt.Errorf("%s: %w", h.name, ErrEmptyResponse)
	}
	return generated, nil
}

func (h *HuggingFace) buildRequest(ctx context.Context, body any) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	return req, nil
}

// decodeGenerated accepts either a list of generations or a single object.
func decodeGenerated(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", ErrEmptyResponse
	}

	var generations []hfGenerated
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &generations); err != nil {
			return "", fmt.Errorf("%w: failed to decode response: %w", ErrInvalidRequest, err)
		}
	} else {
		var single hfGenerated
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return "", fmt.Errorf("%w: failed to decode response: %w", ErrInvalidRequest, err)
		}
		if single.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrProviderDown, single.Error)
		}
		generations = []hfGenerated{single}
	}

	if len(generations) == 0 || generations[0].GeneratedText == "" {
		return "", ErrEmptyResponse
	}
	return generations[0].GeneratedText, nil
}
