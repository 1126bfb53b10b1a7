package types

import "context"

// LLMClient defines the uniform surface the orchestrator depends on.
// Provider adapters translate their wire formats into this contract so the
// rest of the system never sees provider-specific shapes.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
