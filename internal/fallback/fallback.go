// Package fallback supplies synthetic content when every provider call
// fails. The engine has an "always succeed with something" posture: rather
// than surfacing provider errors, it substitutes hand-authored result sets,
// templated suggestions, and heuristic analyses. Pure data lookup plus
// light templating; nothing here touches the network.
package fallback

import (
	"fmt"
	"strings"

	"scout/internal/heuristics"
	"scout/internal/types"
)

// Item is a raw result before the service attaches IDs and metadata. The
// same shape provider responses decode into, so both paths share one
// builder.
type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// EnhanceQuery is the enhance-task fallback: the original query unchanged.
func EnhanceQuery(query string) string {
	return query
}

// Suggestions returns five templated follow-up queries built from the
// original query text.
func Suggestions(query string) []string {
	q := strings.TrimSpace(query)
	return []string{
		fmt.Sprintf("%s market analysis", q),
		fmt.Sprintf("%s latest research 2025", q),
		fmt.Sprintf("%s best tools and platforms", q),
		fmt.Sprintf("%s case studies", q),
		fmt.Sprintf("how to get started with %s", q),
	}
}

// Contextual result sets keyed by domain terms in the query, checked in
// order so keyword precedence is stable. The sets are deliberately small
// and hand-written; the point is a plausible non-empty screen, not real
// search.
var contextualSets = []struct {
	keyword string
	items   []Item
}{
	{"business intelligence", []Item{
		{
			Title:   "Business Intelligence Platforms: 2025 Landscape",
			URL:     "https://research.example.com/bi-landscape-2025",
			Snippet: "A research overview of leading business intelligence platforms, comparing dashboarding, data modeling, and embedded analytics capabilities across vendors.",
			Source:  "Industry Research Weekly",
		},
		{
			Title:   "How Mid-Size Companies Adopt BI Tooling",
			URL:     "https://research.example.com/bi-adoption-study",
			Snippet: "According to a survey of 400 companies, successful business intelligence adoption starts with a single well-owned metric rather than a full warehouse migration.",
			Source:  "Data Strategy Journal",
		},
		{
			Title:   "Self-Service Analytics and the BI Backlog",
			URL:     "https://research.example.com/self-service-analytics",
			Snippet: "Data shows self-service analytics reduces the report backlog but shifts governance work to data teams. A study of rollout patterns across industries.",
			Source:  "Analytics Quarterly",
		},
	}},
	{"web scraping", []Item{
		{
			Title:   "Web Scraping Techniques: A Practical Guide",
			URL:     "https://research.example.com/web-scraping-guide",
			Snippet: "Covers HTTP clients, headless browsers, rate limiting, and robots.txt etiquette for production web scraping pipelines.",
			Source:  "Engineering Notes",
		},
		{
			Title:   "Legal Boundaries of Web Scraping in 2025",
			URL:     "https://research.example.com/scraping-legal",
			Snippet: "A research summary of recent rulings affecting web scraping, including what public-data precedents mean for commercial crawlers.",
			Source:  "Tech Law Review",
		},
	}},
	{"research tools", []Item{
		{
			Title:   "Research Tools for Analysts: An Annotated List",
			URL:     "https://research.example.com/research-tools-list",
			Snippet: "An annotated catalog of research tools spanning literature search, citation management, and AI-assisted summarization.",
			Source:  "Academic Workflows",
		},
		{
			Title:   "Evaluating AI Research Assistants",
			URL:     "https://research.example.com/ai-research-assistants",
			Snippet: "A study comparing AI research assistants on retrieval accuracy, citation quality, and hallucination rates across 200 benchmark questions.",
			Source:  "University Methods Lab",
		},
		{
			Title:   "Building a Personal Research Pipeline",
			URL:     "https://research.example.com/personal-research-pipeline",
			Snippet: "How practitioners combine feed readers, note tools, and research platforms into a repeatable weekly pipeline.",
			Source:  "Knowledge Work Blog",
		},
	}},
	{"grok", []Item{
		{
			Title:   "Grok API: Capabilities and Limits",
			URL:     "https://research.example.com/grok-api-overview",
			Snippet: "An overview of the Grok chat-completion API, its OpenAI-compatible request format, context window, and rate limits.",
			Source:  "Model Watch",
		},
		{
			Title:   "Comparing Grok Against Other Hosted Models",
			URL:     "https://research.example.com/grok-comparison",
			Snippet: "Benchmark data shows hosted models trade latency against reasoning depth; where Grok lands for research workloads.",
			Source:  "Benchmark Digest",
		},
	}},
}

// genericSet is returned when no contextual keyword matches.
var genericSet = []Item{
	{
		Title:   "Getting Oriented: How to Research an Unfamiliar Topic",
		URL:     "https://research.example.com/research-orientation",
		Snippet: "A practical method for mapping an unfamiliar topic: survey sources, identify recurring authors, and build a claim list before forming conclusions.",
		Source:  "Academic Workflows",
	},
	{
		Title:   "Primary vs Secondary Sources in Online Research",
		URL:     "https://research.example.com/source-types",
		Snippet: "Research guidance on distinguishing primary data from commentary, and why source provenance matters for credibility.",
		Source:  "University Library Guide",
	},
	{
		Title:   "Fact-Checking Workflows for Fast-Moving Stories",
		URL:     "https://research.example.com/fact-checking-workflows",
		Snippet: "News organizations describe the verification steps applied before publishing claims sourced from social platforms.",
		Source:  "Press Methods Desk",
	},
	{
		Title:   "Keeping a Research Log That Future You Can Use",
		URL:     "https://research.example.com/research-log",
		Snippet: "A study of note-taking habits shows structured research logs double the reuse rate of collected material.",
		Source:  "Knowledge Work Blog",
	},
	{
		Title:   "Search Operators Beyond the Basics",
		URL:     "https://research.example.com/search-operators",
		Snippet: "Advanced query operators and when they help: exact phrases, site restriction, date windows, and filetype filters.",
		Source:  "Engineering Notes",
	},
	{
		Title:   "Evaluating Credibility When Every Site Looks Polished",
		URL:     "https://research.example.com/credibility-signals",
		Snippet: "According to media literacy research, design quality no longer predicts accuracy; provenance and citation habits do.",
		Source:  "Media Literacy Review",
	},
}

// Results selects the contextual set whose keyword appears in the query,
// falling back to the generic set otherwise. A content type filter keeps
// only generic items whose snippet mentions it; an empty filter result
// degrades to the unfiltered set so the caller never receives nothing.
func Results(query, contentType string) []Item {
	q := strings.ToLower(query)
	for _, set := range contextualSets {
		if strings.Contains(q, set.keyword) {
			return set.items
		}
	}

	if contentType != "" && contentType != "any" {
		var filtered []Item
		for _, item := range genericSet {
			if strings.Contains(strings.ToLower(item.Snippet), strings.ToLower(contentType)) {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	return genericSet
}

// Analysis builds the analyze-task fallback from local heuristics alone.
func Analysis(r *types.SearchResult) *types.SearchAnalysis {
	topics := heuristics.Topics(r.Title, r.Snippet)
	if len(topics) == 0 {
		topics = []string{r.Category}
	}
	return &types.SearchAnalysis{
		Summary: fmt.Sprintf("%s: summary unavailable from live analysis; derived locally from the snippet.", r.Title),
		KeyPoints: []string{
			"Live analysis was unavailable; this record was produced locally.",
			fmt.Sprintf("Source: %s", r.Source),
			"Re-run analysis when provider access is restored for a full summary.",
		},
		Entities:        heuristics.Entities(r.Title + " " + r.Snippet),
		Topics:          topics,
		Sentiment:       heuristics.Sentiment(r.Snippet),
		Credibility:     fmt.Sprintf("Heuristic credibility estimate %.2f based on source and snippet markers.", heuristics.Credibility(r.Source, r.Snippet)),
		FactualAccuracy: 5,
	}
}

// Insights is the report fallback: generic insights derived from counts.
func Insights(results []types.SearchResult) []string {
	return []string{
		fmt.Sprintf("Collected %d sources across %d topics.", len(results), len(heuristics.TopTopics(results, 10))),
		"Source mix leans on the strongest-credibility items; verify low scorers before citing.",
		"Live synthesis was unavailable; insights are derived from local aggregates.",
	}
}

// Recommendations is the report recommendation fallback.
func Recommendations(query string) []string {
	return []string{
		fmt.Sprintf("Broaden the search beyond %q to adjacent terms.", query),
		"Prioritize sources with credibility above 0.8 for citations.",
		"Re-run report generation when provider access is restored.",
	}
}
