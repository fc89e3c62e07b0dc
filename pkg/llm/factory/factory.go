package factory

import (
	"fmt"
	"strings"

	"research-library-be/pkg/llm"
	"research-library-be/pkg/llm/huggingface"
	"research-library-be/pkg/llm/ollama"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// NewLLMProvider builds the provider named by cfg.Provider.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("LLM model is not set")
	}

	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "huggingface", "hf":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider needs an API key")
		}
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
