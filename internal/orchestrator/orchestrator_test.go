package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/provider"
)

// fakeClient scripts one response per call. A nil err means success.
type fakeClient struct {
	text  string
	err   error
	calls int
	model string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeClient) SetModel(model string) { f.model = model }

func testPlan() map[Task][]Candidate {
	return map[Task][]Candidate{
		TaskSearch: {
			{Provider: provider.ProviderOpenAI},
			{Provider: provider.ProviderAnthropic},
			{Provider: provider.ProviderGrok},
		},
	}
}

func TestRunFirstSuccessWins(t *testing.T) {
	openai := &fakeClient{text: "from openai"}
	anthropic := &fakeClient{text: "from anthropic"}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI:    openai,
		provider.ProviderAnthropic: anthropic,
	}, WithPlans(testPlan()))

	got, err := o.Run(context.Background(), TaskSearch, "", "query")
	require.NoError(t, err)
	assert.Equal(t, "from openai", got)
	assert.Equal(t, 1, openai.calls)
	assert.Equal(t, 0, anthropic.calls, "later candidates must not be called after a success")
}

func TestRunFallsThroughSequentially(t *testing.T) {
	openai := &fakeClient{err: errors.New("status 500")}
	anthropic := &fakeClient{err: errors.New("status 429")}
	grok := &fakeClient{text: "from grok"}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI:    openai,
		provider.ProviderAnthropic: anthropic,
		provider.ProviderGrok:      grok,
	}, WithPlans(testPlan()))

	got, err := o.Run(context.Background(), TaskSearch, "", "query")
	require.NoError(t, err)
	assert.Equal(t, "from grok", got)
	assert.Equal(t, 1, openai.calls)
	assert.Equal(t, 1, anthropic.calls)
}

func TestRunExhaustionReturnsSentinel(t *testing.T) {
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI: &fakeClient{err: errors.New("down")},
	}, WithPlans(testPlan()))

	_, err := o.Run(context.Background(), TaskSearch, "", "query")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestRunNoConfiguredProviders(t *testing.T) {
	o := New(map[provider.Provider]provider.LLMClient{}, WithPlans(testPlan()))
	_, err := o.Run(context.Background(), TaskSearch, "", "query")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestRunMarksHealth(t *testing.T) {
	openai := &fakeClient{err: errors.New("status 401")}
	anthropic := &fakeClient{text: "ok"}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI:    openai,
		provider.ProviderAnthropic: anthropic,
	}, WithPlans(testPlan()))

	_, err := o.Run(context.Background(), TaskSearch, "", "query")
	require.NoError(t, err)

	st, seen := o.Health().Get(provider.ProviderOpenAI)
	require.True(t, seen)
	assert.False(t, st.Working)
	assert.Contains(t, st.LastError, "401")

	st, _ = o.Health().Get(provider.ProviderAnthropic)
	assert.True(t, st.Working)
}

// Default behavior: health is advisory only. A provider that failed last
// time is still attempted on the next run.
func TestRunHealthDoesNotGateByDefault(t *testing.T) {
	openai := &fakeClient{err: errors.New("down")}
	anthropic := &fakeClient{text: "ok"}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI:    openai,
		provider.ProviderAnthropic: anthropic,
	}, WithPlans(testPlan()))

	for i := 0; i < 3; i++ {
		_, err := o.Run(context.Background(), TaskSearch, "", "query")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, openai.calls, "unhealthy provider must still be attempted every run")
}

func TestRunSkipUnhealthyOptIn(t *testing.T) {
	openai := &fakeClient{err: errors.New("down")}
	anthropic := &fakeClient{text: "ok"}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI:    openai,
		provider.ProviderAnthropic: anthropic,
	}, WithPlans(testPlan()), WithSkipUnhealthy())

	for i := 0; i < 3; i++ {
		_, err := o.Run(context.Background(), TaskSearch, "", "query")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, openai.calls, "unhealthy provider is skipped after first failure")
}

func TestRunSetsCandidateModel(t *testing.T) {
	openai := &fakeClient{text: "ok"}
	plan := map[Task][]Candidate{
		TaskSearch: {{Provider: provider.ProviderOpenAI, Model: "gpt-4o-mini"}},
	}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI: openai,
	}, WithPlans(plan))

	_, err := o.Run(context.Background(), TaskSearch, "", "query")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", openai.model)
}

func TestProbeRefreshesAllProviders(t *testing.T) {
	openai := &fakeClient{text: "OK"}
	grok := &fakeClient{err: errors.New("status 503")}
	o := New(map[provider.Provider]provider.LLMClient{
		provider.ProviderOpenAI: openai,
		provider.ProviderGrok:   grok,
	})

	snap := o.Probe(context.Background())
	require.Len(t, snap, 2)
	assert.True(t, snap[provider.ProviderOpenAI].Working)
	assert.False(t, snap[provider.ProviderGrok].Working)
}
