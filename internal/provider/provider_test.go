package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestChatClientComplete(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{
		"choices": [{"message": {"role": "assistant", "content": "  hello there  "}}]
	}`)
	defer srv.Close()

	client := NewGrokClientWithConfig(GrokConfig{
		APIKey: "xai-test", BaseURL: srv.URL, Model: "grok-2-latest", Timeout: 5 * time.Second,
	})
	got, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
}

func TestChatClientSendsSystemMessage(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o", Timeout: 5 * time.Second,
	})
	_, err := client.CompleteWithSystem(context.Background(), "be terse", "hi")
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be terse", captured.Messages[0].Content)
}

func TestChatClientErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"auth 401", http.StatusUnauthorized, KindAuth},
		{"auth 403", http.StatusForbidden, KindAuth},
		{"rate limit", http.StatusTooManyRequests, KindRateLimit},
		{"server error", http.StatusInternalServerError, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newChatServer(t, tt.status, `{"error": {"message": "nope"}}`)
			defer srv.Close()

			client := NewOpenAIClientWithConfig(OpenAIConfig{
				APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o", Timeout: 5 * time.Second,
			})
			_, err := client.Complete(context.Background(), "hi")
			require.Error(t, err)

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, ProviderOpenAI, perr.Provider)
		})
	}
}

func TestChatClientEmptyCompletion(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"choices": []}`)
	defer srv.Close()

	client := NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o", Timeout: 5 * time.Second,
	})
	_, err := client.Complete(context.Background(), "hi")

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindEmpty, perr.Kind)
}

func TestChatClientMissingKey(t *testing.T) {
	client := NewOpenAIClient("")
	_, err := client.Complete(context.Background(), "hi")

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindAuth, perr.Kind)
}

func TestAnthropicClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "claude says hi"}]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClientWithConfig(AnthropicConfig{
		APIKey: "test-key", BaseURL: srv.URL, Model: "claude-sonnet-4-20250514", Timeout: 5 * time.Second,
	})
	got, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "claude says hi", got)
}

func TestAnthropicClientJoinsTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [
			{"type": "text", "text": "part one "},
			{"type": "thinking", "text": "ignored"},
			{"type": "text", "text": "part two"}
		]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClientWithConfig(AnthropicConfig{
		APIKey: "test-key", BaseURL: srv.URL, Model: "m", Timeout: 5 * time.Second,
	})
	got, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)
}

func TestKeyFromEnvTwoTier(t *testing.T) {
	t.Setenv("SCOUT_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "user-key")
	assert.Equal(t, "user-key", KeyFromEnv(ProviderOpenAI))

	t.Setenv("SCOUT_OPENAI_API_KEY", "platform-key")
	assert.Equal(t, "platform-key", KeyFromEnv(ProviderOpenAI))
}

func TestHealthRegistry(t *testing.T) {
	reg := NewRegistry()

	_, seen := reg.Get(ProviderGrok)
	assert.False(t, seen)

	reg.MarkUnhealthy(ProviderGrok, errors.New("status 429"))
	st, seen := reg.Get(ProviderGrok)
	require.True(t, seen)
	assert.False(t, st.Working)
	assert.Contains(t, st.LastError, "429")

	reg.MarkHealthy(ProviderGrok)
	st, _ = reg.Get(ProviderGrok)
	assert.True(t, st.Working)
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastSuccess.IsZero())

	snap := reg.Snapshot()
	assert.Len(t, snap, 1)
}
