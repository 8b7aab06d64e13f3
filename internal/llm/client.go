// Package llm is the text-generation collaborator. It talks to Gemini through
// its OpenAI-compatible endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultTimeout = 30 * time.Second
)

// DefaultModels are tried in order until one answers.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("text generation is not configured")
	// ErrEmptyResponse is returned when the model produced no choices.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Config holds the client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration
}

// Client generates text for a prompt.
type Client struct {
	client  openai.Client
	models  []string
	timeout time.Duration
	apiKey  string
	cb      *gobreaker.CircuitBreaker
}

// New creates a client. An empty API key yields a client whose Generate
// always returns ErrNotConfigured.
func New(cfg Config, opts ...option.RequestOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}, opts...)

	return &Client{
		client:  openai.NewClient(reqOpts...),
		models:  cfg.Models,
		timeout: cfg.Timeout,
		apiKey:  cfg.APIKey,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "text-generation",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Generate returns the model's answer for prompt. Each model gets its own
// timeout; the first successful answer wins.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.generate(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("cb.Execute failed: %w", err)
	}

	return out.(string), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range c.models {
		text, err := c.complete(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		log.Printf("model %s failed: %v", model, err)
		lastErr = err
	}

	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Model: shared.ChatModel(model),
	})
	if err != nil {
		return "", fmt.Errorf("chat.Completions.New failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
