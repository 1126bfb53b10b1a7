// Package types holds the shared domain entities of the research engine.
// Keeping them here avoids import cycles between the service, store, and
// provider layers.
package types

import (
	"time"
)

// Sentiment classifies the tone of a snippet.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SearchDepth controls how much context the providers are asked for.
type SearchDepth string

const (
	DepthQuick    SearchDepth = "quick"
	DepthStandard SearchDepth = "standard"
	DepthDeep     SearchDepth = "deep"
)

// SearchFilters narrow a query before it reaches the providers.
type SearchFilters struct {
	ContentType    string      `json:"content_type,omitempty"` // article, paper, news, any
	Depth          SearchDepth `json:"depth,omitempty"`
	Language       string      `json:"language,omitempty"`
	IncludeDomains []string    `json:"include_domains,omitempty"`
	ExcludeDomains []string    `json:"exclude_domains,omitempty"`
}

// SearchQuery is a user-submitted research query. Immutable once created;
// the service appends it to a bounded most-recent-first history.
type SearchQuery struct {
	Text      string        `json:"text"`
	Filters   SearchFilters `json:"filters"`
	Timestamp time.Time     `json:"timestamp"`
	Category  string        `json:"category"`
	Priority  string        `json:"priority"`
}

// ResultMetadata carries the locally derived signals attached to every
// freshly built result.
type ResultMetadata struct {
	Author      string    `json:"author,omitempty"`
	PublishDate string    `json:"publish_date,omitempty"`
	ReadingTime int       `json:"reading_time"` // minutes
	Credibility float64   `json:"credibility"`  // [0.1, 1.0]
	Sentiment   Sentiment `json:"sentiment"`
}

// SearchResult is one item returned by a search. Analyzed flips to true
// exactly once, when the user triggers analysis; it is never reverted.
type SearchResult struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Snippet   string          `json:"snippet"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
	Relevance float64         `json:"relevance"` // [0, 1]
	Category  string          `json:"category"`
	Metadata  ResultMetadata  `json:"metadata"`
	Tags      []string        `json:"tags,omitempty"`
	Analyzed  bool            `json:"analyzed"`
	Analysis  *SearchAnalysis `json:"analysis,omitempty"`
}

// SearchAnalysis is produced once per result and immutable afterwards.
type SearchAnalysis struct {
	Summary         string    `json:"summary"`
	KeyPoints       []string  `json:"key_points"`
	Entities        []string  `json:"entities"`
	Topics          []string  `json:"topics"`
	Sentiment       Sentiment `json:"sentiment"`
	Credibility     string    `json:"credibility"`
	Bias            string    `json:"bias,omitempty"`
	FactualAccuracy float64   `json:"factual_accuracy"` // 0-10
}

// ReportAnalysis is the aggregate block of a report.
type ReportAnalysis struct {
	SourceCount     int               `json:"source_count"`
	AvgCredibility  float64           `json:"avg_credibility"`
	SentimentCounts map[Sentiment]int `json:"sentiment_counts"`
	TopTopics       []string          `json:"top_topics"`
	KeyInsights     []string          `json:"key_insights"`
	Recommendations []string          `json:"recommendations"`
}

// SearchReport bundles queries and selected results with an aggregate
// analysis. Mutated only via explicit update/delete.
type SearchReport struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Queries   []string       `json:"queries"`
	Results   []SearchResult `json:"results"`
	Analysis  ReportAnalysis `json:"analysis"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Analytics accumulates usage counters. Monotonic except for an explicit
// app-level reset.
type Analytics struct {
	TotalSearches      int            `json:"total_searches"`
	CategoryCounts     map[string]int `json:"category_counts"`
	AvgResultsPerQuery float64        `json:"avg_results_per_query"`
	TopQueries         []string       `json:"top_queries"`
	SourceCounts       map[string]int `json:"source_counts"`
	TimeSpentSeconds   int64          `json:"time_spent_seconds"`
	AccuracyRatings    []float64      `json:"accuracy_ratings"`
}

// NewAnalytics returns zeroed counters with allocated maps.
func NewAnalytics() Analytics {
	return Analytics{
		CategoryCounts: make(map[string]int),
		SourceCounts:   make(map[string]int),
	}
}
