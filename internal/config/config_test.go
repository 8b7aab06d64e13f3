package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-assistant/internal/config"
	"github.com/hal9000y/mail-assistant/internal/llm"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"HTTP_ADDR", "GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"OAUTH_GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URI", "FRONTEND_URL", "JWT_SECRET",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODELS", "GEMINI_TIMEOUT", "CORS_ORIGINS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8000", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:8000/auth/callback", cfg.GoogleRedirectURI)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, llm.Config{
		BaseURL: llm.DefaultBaseURL,
		Models:  llm.DefaultModels,
		Timeout: 30 * time.Second,
	}, cfg.LLM())
	assert.Equal(t, []string{"*"}, cfg.Origins())

	err = cfg.Validate()
	require.ErrorIs(t, err, config.ErrMissing)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, JWT_SECRET")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("OAUTH_GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "csecret")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_MODELS", "model-a, model-b,")
	t.Setenv("GEMINI_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,http://localhost:3000")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "cid", cfg.GoogleClientID)
	assert.Equal(t, "csecret", cfg.GoogleClientSecret)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.Equal(t, llm.Config{
		APIKey:  "key",
		BaseURL: llm.DefaultBaseURL,
		Models:  []string{"model-a", "model-b"},
		Timeout: 5 * time.Second,
	}, cfg.LLM())
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.Origins())
}
