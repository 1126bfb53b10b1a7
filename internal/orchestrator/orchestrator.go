// Package orchestrator implements the sequential multi-provider call
// strategy: for each task type it walks a fixed ordered candidate list,
// one synchronous attempt per candidate, and returns the first non-empty
// completion. No retry of the same provider, no backoff, no parallel
// fan-out. Latency is traded for simplicity and to avoid duplicate-cost
// calls.
package orchestrator

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scout/internal/logging"
	"scout/internal/provider"
)

// ErrAllProvidersFailed reports that every candidate in the task's plan
// failed. Callers convert this into fallback content rather than showing
// an error.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Task selects which candidate plan an orchestration attempt uses.
type Task string

const (
	TaskEnhance Task = "enhance"
	TaskSearch  Task = "search"
	TaskAnalyze Task = "analyze"
	TaskSuggest Task = "suggest"
)

// Candidate is one (provider, model) pair in a plan. An empty model keeps
// the provider's default.
type Candidate struct {
	Provider provider.Provider
	Model    string
}

// defaultPlans fixes the candidate order per task type. The lists are
// static priority, not dynamically re-ranked.
var defaultPlans = map[Task][]Candidate{
	TaskEnhance: {
		{Provider: provider.ProviderAnthropic},
		{Provider: provider.ProviderOpenAI},
		{Provider: provider.ProviderGrok},
	},
	TaskSearch: {
		{Provider: provider.ProviderOpenAI},
		{Provider: provider.ProviderAnthropic},
		{Provider: provider.ProviderGrok},
		{Provider: provider.ProviderGemini},
	},
	TaskAnalyze: {
		{Provider: provider.ProviderAnthropic},
		{Provider: provider.ProviderOpenAI},
		{Provider: provider.ProviderGemini},
	},
	TaskSuggest: {
		{Provider: provider.ProviderGrok},
		{Provider: provider.ProviderOpenAI},
		{Provider: provider.ProviderAnthropic},
	},
}

// modelSetter is implemented by clients whose model can be changed per
// candidate.
type modelSetter interface {
	SetModel(model string)
}

// Orchestrator routes task prompts across the configured providers.
type Orchestrator struct {
	clients       map[provider.Provider]provider.LLMClient
	plans         map[Task][]Candidate
	health        *provider.Registry
	skipUnhealthy bool
	log           *zap.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithPlans overrides the default candidate plans.
func WithPlans(plans map[Task][]Candidate) Option {
	return func(o *Orchestrator) { o.plans = plans }
}

// WithSkipUnhealthy makes the orchestrator skip candidates whose last call
// failed. Off by default: health stays advisory and every attempt walks
// the full ordered list.
func WithSkipUnhealthy() Option {
	return func(o *Orchestrator) { o.skipUnhealthy = true }
}

// New builds an orchestrator over the given clients. Providers missing
// from the map are skipped when their candidates come up.
func New(clients map[provider.Provider]provider.LLMClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		clients: clients,
		plans:   defaultPlans,
		health:  provider.NewRegistry(),
		log:     logging.Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Health exposes the advisory per-provider health registry.
func (o *Orchestrator) Health() *provider.Registry {
	return o.health
}

// Run walks the task's candidate list in order and returns the first
// successful completion. Each failure marks the provider unhealthy and
// moves on; a success marks it healthy and returns immediately. When the
// list is exhausted, ErrAllProvidersFailed is returned.
func (o *Orchestrator) Run(ctx context.Context, task Task, systemPrompt, userPrompt string) (string, error) {
	plan, ok := o.plans[task]
	if !ok {
		return "", ErrAllProvidersFailed
	}

	for _, cand := range plan {
		client, ok := o.clients[cand.Provider]
		if !ok {
			continue
		}
		if o.skipUnhealthy {
			if st, seen := o.health.Get(cand.Provider); seen && !st.Working {
				o.log.Debug("skipping unhealthy provider",
					zap.String("task", string(task)),
					zap.String("provider", string(cand.Provider)))
				continue
			}
		}
		if cand.Model != "" {
			if setter, ok := client.(modelSetter); ok {
				setter.SetModel(cand.Model)
			}
		}

		text, err := client.CompleteWithSystem(ctx, systemPrompt, userPrompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = &provider.Error{
				Provider: cand.Provider,
				Kind:     provider.KindEmpty,
				Err:      errors.New("empty completion"),
			}
		}
		if err != nil {
			o.health.MarkUnhealthy(cand.Provider, err)
			o.log.Warn("provider call failed, trying next",
				zap.String("task", string(task)),
				zap.String("provider", string(cand.Provider)),
				zap.Error(err))
			continue
		}

		o.health.MarkHealthy(cand.Provider)
		return text, nil
	}

	o.log.Info("all providers exhausted", zap.String("task", string(task)))
	return "", ErrAllProvidersFailed
}

// Probe issues one concurrent status check per configured provider and
// returns the refreshed health snapshot. Used by diagnostics only; normal
// orchestration stays strictly sequential.
func (o *Orchestrator) Probe(ctx context.Context) map[provider.Provider]provider.Status {
	g, ctx := errgroup.WithContext(ctx)
	for p, client := range o.clients {
		p, client := p, client
		g.Go(func() error {
			_, err := client.Complete(ctx, "Reply with the single word OK.")
			if err != nil {
				o.health.MarkUnhealthy(p, err)
			} else {
				o.health.MarkHealthy(p)
			}
			return nil
		})
	}
	_ = g.Wait()
	return o.health.Snapshot()
}
