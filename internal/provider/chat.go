package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// chatClient implements the OpenAI-compatible chat-completions wire format.
// OpenAI and Grok differ only in base URL, default model, and bearer key,
// so both reuse this core instead of duplicating it.
type chatClient struct {
	provider   Provider
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// chatRequest represents a chat-completions request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse represents a chat-completions response.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends a prompt and returns the completion.
func (c *chatClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message. One synchronous
// call per invocation; orchestration handles moving on after a failure.
func (c *chatClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		return "", &Error{Provider: c.provider, Kind: KindAuth, Err: fmt.Errorf("API key not configured")}
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   4096,
		Temperature: 0.1,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Provider: c.provider, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Provider: c.provider, Kind: KindNetwork, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Provider: c.provider,
			Kind:     classifyStatus(resp.StatusCode),
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Provider: c.provider, Kind: KindBadOutput, Err: err}
	}
	if parsed.Error != nil {
		return "", &Error{Provider: c.provider, Kind: KindBadOutput, Err: fmt.Errorf("API error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Provider: c.provider, Kind: KindEmpty, Err: fmt.Errorf("no completion returned")}
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", &Error{Provider: c.provider, Kind: KindEmpty, Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}

// SetModel changes the model used for completions.
func (c *chatClient) SetModel(model string) { c.model = model }

// Model returns the current model.
func (c *chatClient) Model() string { return c.model }

// OpenAIClient implements LLMClient for the OpenAI API.
type OpenAIClient struct {
	chatClient
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
		Timeout: 120 * time.Second,
	}
}

// NewOpenAIClient creates a new OpenAI client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom config.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{chatClient{
		provider:   ProviderOpenAI,
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		model:      config.Model,
		httpClient: &http.Client{Timeout: config.Timeout},
	}}
}

// GrokClient implements LLMClient for the xAI Grok API, which speaks the
// OpenAI-compatible chat-completions format at a different base URL.
type GrokClient struct {
	chatClient
}

// GrokConfig holds configuration for the Grok client.
type GrokConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultGrokConfig returns sensible defaults.
func DefaultGrokConfig(apiKey string) GrokConfig {
	return GrokConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.x.ai/v1",
		Model:   "grok-2-latest",
		Timeout: 120 * time.Second,
	}
}

// NewGrokClient creates a new Grok client with default config.
func NewGrokClient(apiKey string) *GrokClient {
	return NewGrokClientWithConfig(DefaultGrokConfig(apiKey))
}

// NewGrokClientWithConfig creates a new Grok client with custom config.
func NewGrokClientWithConfig(config GrokConfig) *GrokClient {
	return &GrokClient{chatClient{
		provider:   ProviderGrok,
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		model:      config.Model,
		httpClient: &http.Client{Timeout: config.Timeout},
	}}
}
