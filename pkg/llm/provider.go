package llm

import (
	"context"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole maps provider-specific aliases onto the three roles above.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return RoleSystem
	case RoleAssistant, "model", "ai":
		return RoleAssistant
	default:
		return RoleUser
	}
}

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) { o.Temperature = temp }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// Resolve applies opts on top of base. An empty Model falls back to fallbackModel.
func Resolve(base Options, fallbackModel string, opts []Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	if base.Model == "" {
		base.Model = fallbackModel
	}
	return base
}

// LLMProvider turns a conversation into a single completion.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	ModelName() string
}

// Pinger is implemented by providers that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
