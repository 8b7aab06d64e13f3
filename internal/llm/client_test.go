package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-assistant/internal/llm"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type fakeModels struct {
	mu       sync.Mutex
	answers  map[string]string
	requests []chatRequest
	auth     []string
}

func (f *fakeModels) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	answer, ok := f.answers[req.Model]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"not_found","code":"404"}}`))
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": answer},
			},
		},
	})
}

func newClient(t *testing.T, f *fakeModels, models ...string) *llm.Client {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return llm.New(llm.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
		Models:  models,
		Timeout: 5 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	f := &fakeModels{answers: map[string]string{"model-b": "  A short summary.  "}}
	c := newClient(t, f, "model-a", "model-b")

	got, err := c.Generate(context.Background(), "Summarize this")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)

	require.Len(t, f.requests, 2, "first model fails, second answers")
	assert.Equal(t, "model-a", f.requests[0].Model)
	assert.Equal(t, "model-b", f.requests[1].Model)
	require.Len(t, f.requests[1].Messages, 1)
	assert.Equal(t, "user", f.requests[1].Messages[0].Role)
	assert.Equal(t, "Summarize this", f.requests[1].Messages[0].Content)
	assert.Equal(t, "Bearer test-key", f.auth[0])
}

func TestGenerateAllModelsFail(t *testing.T) {
	f := &fakeModels{answers: map[string]string{}}
	c := newClient(t, f, "model-a")

	_, err := c.Generate(context.Background(), "hello")
	require.Error(t, err)
}

func TestGenerateEmptyAnswer(t *testing.T) {
	f := &fakeModels{answers: map[string]string{"model-a": "   "}}
	c := newClient(t, f, "model-a")

	_, err := c.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerateNotConfigured(t *testing.T) {
	c := llm.New(llm.Config{})

	_, err := c.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	f := &fakeModels{answers: map[string]string{}}
	c := newClient(t, f, "model-a")

	for range 5 {
		_, err := c.Generate(context.Background(), "hello")
		require.Error(t, err)
	}
	require.Len(t, f.requests, 5)

	_, err := c.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Len(t, f.requests, 5, "open circuit must not reach the model")
}
