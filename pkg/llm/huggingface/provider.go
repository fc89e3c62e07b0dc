package huggingface

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"research-library-be/pkg/llm"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

// HuggingFaceProvider talks to the OpenAI-compatible router.
type HuggingFaceProvider struct {
	endpoint llm.Endpoint
	model    string
}

var (
	_ llm.LLMProvider = (*HuggingFaceProvider)(nil)
	_ llm.Pinger      = (*HuggingFaceProvider)(nil)
)

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		endpoint: llm.Endpoint{
			Provider: "huggingface",
			BaseURL:  baseURL,
			Headers:  map[string]string{"Authorization": "Bearer " + apiKey},
			Client:   &http.Client{Timeout: 120 * time.Second},
		},
		model: model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Resolve(llm.Options{MaxTokens: 500}, p.model, options)

	messages := make([]llm.Message, len(history))
	for i, msg := range history {
		messages[i] = llm.Message{Role: llm.NormalizeRole(msg.Role), Content: msg.Content}
	}

	var resp chatResponse
	err := p.endpoint.PostJSON(ctx, "/chat/completions", chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}, &resp)
	if err != nil {
		return "", err
	}

	if resp.Error != nil {
		return "", errors.New("huggingface: " + resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("huggingface: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *HuggingFaceProvider) ModelName() string {
	return p.model
}

func (p *HuggingFaceProvider) Ping(ctx context.Context) error {
	return p.endpoint.Get(ctx, "/models", nil)
}
