package salvage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "fenced array",
			input:    "```json\n[{\"id\": 1}]\n```",
			expected: `[{"id": 1}]`,
		},
		{
			name:     "fence without language tag",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "preamble prose",
			input:    `Here is the JSON you asked for: {"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "trailing prose",
			input:    `{"key": "value"} hope that helps!`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "truncated object cut to last brace",
			input:    `{"a": 1, "b": {"c": 2}, "d": "trunca`,
			expected: `{"a": 1, "b": {"c": 2}`,
		},
		{
			name:     "no json at all",
			input:    `I could not produce any structured output.`,
			expected: ``,
		},
		{
			name:     "truncated object with no brace at all",
			input:    `{"summary": "ok", "keyPoints": ["a"`,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSON(tt.input))
		})
	}
}

func TestUnmarshalFencedArray(t *testing.T) {
	raw := "```json\n[\"alpha\", \"beta\"]\n```"

	var got []string
	require.NoError(t, Unmarshal(raw, &got))
	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestUnmarshalTruncatedObjectRecoversCompleteFields(t *testing.T) {
	raw := `{"summary": "ok", "details": {"score": 3}, "pending": "cut off he`

	var got map[string]json.RawMessage
	require.NoError(t, Unmarshal(raw, &got))
	assert.Contains(t, got, "summary")
	assert.Contains(t, got, "details")
	assert.NotContains(t, got, "pending")
}

func TestUnmarshalGarbageFails(t *testing.T) {
	var got map[string]any
	err := Unmarshal("complete nonsense with no braces", &got)
	assert.ErrorIs(t, err, ErrNoJSON)
}

// A truncated analyze response must fail parsing so the caller's fallback
// applies verbatim.
func TestUnmarshalTruncatedAnalysisFails(t *testing.T) {
	raw := `Here is my analysis: {"summary": "ok", "keyPoints": ["a"`

	var got map[string]any
	err := Unmarshal(raw, &got)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestResultsBareArray(t *testing.T) {
	got, err := Results(`[{"title": "a"}, {"title": "b"}]`)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestResultsWrappedObject(t *testing.T) {
	got, err := Results(`{"results": [{"title": "a"}]}`)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResultsArrayLikeObject(t *testing.T) {
	got, err := Results(`{"1": {"title": "second"}, "0": {"title": "first"}}`)
	require.NoError(t, err)
	require.Len(t, got, 2)

	var first map[string]string
	require.NoError(t, json.Unmarshal(got[0], &first))
	assert.Equal(t, "first", first["title"])
}

func TestResultsRejectsMixedKeys(t *testing.T) {
	_, err := Results(`{"0": {"title": "a"}, "meta": {}}`)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestStringsFallback(t *testing.T) {
	fallback := []string{"x", "y"}
	assert.Equal(t, fallback, Strings("not json", fallback))
	assert.Equal(t, []string{"a"}, Strings(`["a"]`, fallback))
}
