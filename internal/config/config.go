// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hal9000y/mail-assistant/internal/llm"
)

// ErrMissing is returned by Validate when required settings are absent.
var ErrMissing = errors.New("missing required configuration")

type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURI  string `mapstructure:"google_redirect_uri"`
	FrontendURL        string `mapstructure:"frontend_url"`
	JWTSecret          string `mapstructure:"jwt_secret"`

	GeminiAPIKey  string        `mapstructure:"gemini_api_key"`
	GeminiBaseURL string        `mapstructure:"gemini_base_url"`
	GeminiModels  string        `mapstructure:"gemini_models"`
	GeminiTimeout time.Duration `mapstructure:"gemini_timeout"`

	CORSOrigins string `mapstructure:"cors_origins"`
}

// env lists each key with the variables it is read from, first set wins.
var env = map[string][]string{
	"http_addr":            {"HTTP_ADDR"},
	"google_client_id":     {"GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_ID"},
	"google_client_secret": {"GOOGLE_CLIENT_SECRET", "OAUTH_GOOGLE_CLIENT_SECRET"},
	"google_redirect_uri":  {"GOOGLE_REDIRECT_URI"},
	"frontend_url":         {"FRONTEND_URL"},
	"jwt_secret":           {"JWT_SECRET"},
	"gemini_api_key":       {"GEMINI_API_KEY"},
	"gemini_base_url":      {"GEMINI_BASE_URL"},
	"gemini_models":        {"GEMINI_MODELS"},
	"gemini_timeout":       {"GEMINI_TIMEOUT"},
	"cors_origins":         {"CORS_ORIGINS"},
}

// Load reads the configuration from environment variables with defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http_addr", "localhost:8000")
	v.SetDefault("google_redirect_uri", "http://localhost:8000/auth/callback")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("gemini_base_url", llm.DefaultBaseURL)
	v.SetDefault("gemini_models", strings.Join(llm.DefaultModels, ","))
	v.SetDefault("gemini_timeout", llm.DefaultTimeout.String())
	v.SetDefault("cors_origins", "*")

	for key, names := range env {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("v.BindEnv %s failed: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal failed: %w", err)
	}

	return cfg, nil
}

// Validate reports every missing required setting in one error.
func (c *Config) Validate() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.GoogleRedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if c.FrontendURL == "" {
		missing = append(missing, "FRONTEND_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s in the environment or in the file passed with -env-file",
			ErrMissing, strings.Join(missing, ", "))
	}

	return nil
}

// Models splits GeminiModels into a list.
func (c *Config) Models() []string {
	return splitList(c.GeminiModels)
}

// Origins splits CORSOrigins into a list.
func (c *Config) Origins() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LLM returns the text-generation client settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		APIKey:  c.GeminiAPIKey,
		BaseURL: c.GeminiBaseURL,
		Models:  c.Models(),
		Timeout: c.GeminiTimeout,
	}
}
