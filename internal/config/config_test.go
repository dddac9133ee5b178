package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "", cfg.Ai.GroqAPIKey)
	assert.Equal(t, "", cfg.App.Port, "explicitly empty env values are kept")
	assert.Equal(t, 30, cfg.Ai.TimeoutSeconds, "unparsable ints fall back to the default")
	assert.Equal(t, 0.5, cfg.Ai.Temperature)
	assert.Equal(t, 512, cfg.Ai.MaxTokens)
	assert.Equal(t, "llama3-8b-8192", cfg.Ai.LLMModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CHAT_RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("LLM_TEMPERATURE", "0.9")
	t.Setenv("GO_ENV", "production")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "gsk_test", cfg.Ai.GroqAPIKey)
	assert.Equal(t, 0, cfg.RateLimit.ChatPerMinute)
	assert.Equal(t, 0.9, cfg.Ai.Temperature)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Telemetry.OtelEnabled)
}
