// Package provider implements typed clients for the hosted LLM APIs the
// engine can route to. Each client adapts one wire format to the uniform
// types.LLMClient contract; orchestration never sees provider-specific
// shapes.
package provider

import (
	"fmt"

	"scout/internal/types"
)

const defaultSystemPrompt = "You are a research assistant. Ground answers only in well-known public information, answer concisely, and when asked for JSON output emit only JSON with no surrounding prose."

// LLMClient is the uniform completion contract shared across the module.
type LLMClient = types.LLMClient

// Provider identifies a hosted LLM API.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGrok      Provider = "grok"
	ProviderGemini    Provider = "gemini"
)

// All lists supported providers in default priority order.
func All() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGrok, ProviderGemini}
}

// ErrorKind buckets a provider failure for the orchestrator. Every kind is
// a "try next provider" signal; the distinction feeds diagnostics only.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindBadOutput ErrorKind = "bad_output"
	KindEmpty     ErrorKind = "empty"
)

// Error wraps a failed provider call with its classification.
type Error struct {
	Provider Provider
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(code int) ErrorKind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindRateLimit
	default:
		return KindNetwork
	}
}
