package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scout/internal/types"
)

func TestEnhanceQueryUnchanged(t *testing.T) {
	assert.Equal(t, "web scraping tips", EnhanceQuery("web scraping tips"))
}

func TestSuggestions(t *testing.T) {
	got := Suggestions("vector databases")
	require.Len(t, got, 5)
	for _, s := range got {
		assert.Contains(t, s, "vector databases")
	}
}

func TestResultsContextualSets(t *testing.T) {
	tests := []struct {
		query string
		min   int
	}{
		{"business intelligence platforms", 2},
		{"learn web scraping", 2},
		{"research tools comparison", 2},
		{"what is grok", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Results(tt.query, "")
			assert.GreaterOrEqual(t, len(got), tt.min)
			for _, item := range got {
				assert.NotEmpty(t, item.Title)
				assert.NotEmpty(t, item.URL)
				assert.NotEmpty(t, item.Snippet)
				assert.NotEmpty(t, item.Source)
			}
		})
	}
}

func TestResultsWebScrapingExactlyTwo(t *testing.T) {
	got := Results("web scraping", "")
	assert.Len(t, got, 2)
}

func TestResultsGenericSet(t *testing.T) {
	got := Results("underwater basket weaving", "")
	assert.GreaterOrEqual(t, len(got), 5)
}

func TestResultsContentTypeFilterNeverEmpty(t *testing.T) {
	// A filter that matches nothing degrades to the unfiltered set.
	got := Results("some niche topic", "podcast")
	assert.NotEmpty(t, got)
}

func TestAnalysisFields(t *testing.T) {
	r := &types.SearchResult{
		Title:   "Market Research on AI Tooling",
		Snippet: "According to a study, adoption is a success across the industry.",
		Source:  "Analytics Quarterly",
	}
	a := Analysis(r)

	require.NotNil(t, a)
	assert.NotEmpty(t, a.Summary)
	assert.NotEmpty(t, a.KeyPoints)
	assert.NotEmpty(t, a.Topics)
	assert.Equal(t, types.SentimentPositive, a.Sentiment)
	assert.NotEmpty(t, a.Credibility)
}
