package provider

import (
	"fmt"
	"os"
)

// envVars maps each provider to its key sources in priority order: the
// platform-injected key first, then the conventional user-supplied key.
var envVars = map[Provider][]string{
	ProviderAnthropic: {"SCOUT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	ProviderOpenAI:    {"SCOUT_OPENAI_API_KEY", "OPENAI_API_KEY"},
	ProviderGrok:      {"SCOUT_GROK_API_KEY", "XAI_API_KEY"},
	ProviderGemini:    {"SCOUT_GEMINI_API_KEY", "GEMINI_API_KEY"},
}

// KeyFromEnv resolves the API key for a provider using the two-tier
// fallback. Returns "" when neither tier is set.
func KeyFromEnv(p Provider) string {
	for _, name := range envVars[p] {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// NewClient builds a client for the given provider. An empty model keeps
// the provider default.
func NewClient(p Provider, apiKey, model string) (LLMClient, error) {
	switch p {
	case ProviderAnthropic:
		client := NewAnthropicClient(apiKey)
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	case ProviderOpenAI:
		client := NewOpenAIClient(apiKey)
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	case ProviderGrok:
		client := NewGrokClient(apiKey)
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	case ProviderGemini:
		client, err := NewGeminiClient(apiKey)
		if err != nil {
			return nil, err
		}
		if model != "" {
			client.SetModel(model)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", p)
	}
}

// ClientsFromEnv builds a client for every provider with a resolvable key,
// in default priority order. Providers without keys are skipped; an empty
// map is legal and leaves the engine running on fallback content alone.
func ClientsFromEnv() map[Provider]LLMClient {
	clients := make(map[Provider]LLMClient)
	for _, p := range All() {
		key := KeyFromEnv(p)
		if key == "" {
			continue
		}
		client, err := NewClient(p, key, "")
		if err != nil {
			continue
		}
		clients[p] = client
	}
	return clients
}
