package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"research-library-be/pkg/llm"
)

const DefaultBaseURL = "http://localhost:11434"

type OllamaProvider struct {
	endpoint llm.Endpoint
	model    string
}

var (
	_ llm.LLMProvider = (*OllamaProvider)(nil)
	_ llm.Pinger      = (*OllamaProvider)(nil)
)

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OllamaProvider{
		endpoint: llm.Endpoint{
			Provider: "ollama",
			BaseURL:  baseURL,
			Client:   &http.Client{Timeout: 120 * time.Second},
		},
		model: modelName,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *modelOptions `json:"options,omitempty"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message llm.Message `json:"message"`
	Done    bool        `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Resolve(llm.Options{Temperature: 0.7}, o.model, opts)

	messages := make([]llm.Message, len(history))
	for i, msg := range history {
		messages[i] = llm.Message{Role: llm.NormalizeRole(msg.Role), Content: msg.Content}
	}

	req := chatRequest{
		Model:    options.Model,
		Messages: messages,
		Options: &modelOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}

	var resp chatResponse
	if err := o.endpoint.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

func (o *OllamaProvider) ModelName() string {
	return o.model
}

// Ping lists local models; any answer means the daemon is up.
func (o *OllamaProvider) Ping(ctx context.Context) error {
	return o.endpoint.Get(ctx, "/api/tags", nil)
}
