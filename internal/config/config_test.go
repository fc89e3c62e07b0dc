package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LIBRARY_CACHE_TTL", "")
	t.Setenv("METADATA_BURST", "")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.Library.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Library.CacheCleanup)
	assert.Equal(t, 4, cfg.Metadata.Burst)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LIBRARY_CACHE_TTL", "90s")
	t.Setenv("LIBRARY_ENRICH_ON_SAVE", "false")
	t.Setenv("METADATA_RATE_PER_SECOND", "0.5")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.Library.CacheTTL)
	assert.False(t, cfg.Library.EnrichOnSave)
	assert.Equal(t, 0.5, cfg.Metadata.RatePerSecond)
	assert.Equal(t, "s3cret", cfg.Auth.JwtSecret)
}

func TestGetEnvAsDuration_RejectsGarbage(t *testing.T) {
	t.Setenv("SOME_WINDOW", "five minutes")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_WINDOW", time.Minute))

	t.Setenv("SOME_WINDOW", "-3s")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_WINDOW", time.Minute))
}
