package heuristics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"scout/internal/types"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    types.Sentiment
	}{
		{"positive outweighs", "a great success with excellent growth", types.SentimentPositive},
		{"negative outweighs", "a poor result, major decline and risk", types.SentimentNegative},
		{"tie is neutral", "good outcome despite the risk", types.SentimentNeutral},
		{"no signal", "the committee met on tuesday", types.SentimentNeutral},
		{"empty", "", types.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentiment(tt.snippet))
		})
	}
}

// Sentiment must be a pure function of the snippet text.
func TestSentimentDeterministic(t *testing.T) {
	snippet := "an innovative breakthrough with some concern about risk"
	first := Sentiment(snippet)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Sentiment(snippet))
	}
}

func TestCredibility(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		snippet string
		want    float64
	}{
		{"baseline", "Example Daily", "plain text", 0.7},
		{"academic source", "university press", "plain text", 0.9},
		{"blog penalty", "personal blog", "plain text", 0.5},
		{"study marker", "Example Daily", "a recent study found", 0.8},
		{"attribution marker", "Example Daily", "according to officials", 0.8},
		{"all bonuses clamp to 1.0", "gov research portal", "a study, according to the data shows", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Credibility(tt.source, tt.snippet), 1e-9)
		})
	}
}

func TestCredibilityAlwaysInBounds(t *testing.T) {
	inputs := []struct{ source, snippet string }{
		{"", ""},
		{"blog social forum", "nothing"},
		{"gov edu university research academic", "study research according to data shows"},
		{"forum", "x"},
	}
	for _, in := range inputs {
		got := Credibility(in.source, in.snippet)
		assert.GreaterOrEqual(t, got, 0.1)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestRelevance(t *testing.T) {
	// base 0.5 + two matched terms + title substring bonus
	got := Relevance("web scraping", "Web scraping tools compared", "an overview of scraping")
	assert.InDelta(t, 0.9, got, 1e-9)

	// no match stays at base
	assert.InDelta(t, 0.5, Relevance("quantum", "Gardening tips", "soil advice"), 1e-9)

	// duplicates in the query count once
	one := Relevance("data data data", "data report", "")
	assert.InDelta(t, 0.6, one, 1e-9)

	// clamp at 1.0
	long := Relevance("a b c d e f", "a b c d e f", "a b c d e f")
	assert.InDelta(t, 1.0, long, 1e-9)
}

func TestTopics(t *testing.T) {
	got := Topics("AI and machine learning", "market analysis for business")
	want := []string{"ai", "machine learning", "business", "market", "analysis"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Topics mismatch (-want +got):\n%s", diff)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"market sizing for widgets", "business"},
		{"peer reviewed study on sleep", "academic"},
		{"breaking headline today", "news"},
		{"forecast for 2030", "trends"},
		{"best scraping platform", "tools"},
		{"verify this claim", "fact-check"},
		{"investigation into the leak", "investigative"},
		{"recipe for pancakes", "general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.text), "text: %s", tt.text)
	}
}

// The keyword groups are ordered: business wins over academic when both hit.
func TestCategorizeFirstMatchWins(t *testing.T) {
	assert.Equal(t, "business", Categorize("market research overview"))
}

func TestEntities(t *testing.T) {
	text := "John Smith of NASA raised $2.5 million in 2024 with Jane Doe."
	got := Entities(text)

	assert.Contains(t, got, "John Smith")
	assert.Contains(t, got, "NASA")
	assert.Contains(t, got, "2024")
	assert.Contains(t, got, "$2.5 million")
	assert.LessOrEqual(t, len(got), 8)
}

func TestEntitiesCap(t *testing.T) {
	text := "Alan Apple Bob Berry Carl Cherry Dave Damson met IBM NASA FBI CIA in 2020 2021 2022 2023 for $1 and $2 and $3"
	got := Entities(text)
	assert.Len(t, got, 8)
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime("short"))
	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	assert.Equal(t, 2, ReadingTime(long))
}

func TestTopTopics(t *testing.T) {
	results := []types.SearchResult{
		{Title: "ai report", Snippet: "market data"},
		{Title: "ai trends", Snippet: "cloud market"},
		{Title: "security brief", Snippet: "ai"},
	}
	got := TopTopics(results, 2)
	assert.Equal(t, []string{"ai", "market"}, got)
}
