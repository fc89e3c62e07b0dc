package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "ollama", Model: "qwen2.5"})
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", p.ModelName())

	_, err = NewLLMProvider(Config{Provider: "ollama"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "huggingface", Model: "x"})
	assert.Error(t, err)

	hf, err := NewLLMProvider(Config{Provider: "HF", Model: "meta-llama", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "meta-llama", hf.ModelName())

	_, err = NewLLMProvider(Config{Provider: "telepathy", Model: "x"})
	assert.Error(t, err)
}
