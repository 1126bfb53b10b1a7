// Package heuristics derives lightweight per-result signals without any
// provider call. The service uses them both as default metadata for fresh
// results and as the analysis fallback when every provider is down.
//
// All functions here are pure: identical input always yields identical
// output. There is no negation handling and no weighting; these are
// deliberately naive keyword heuristics, not models.
package heuristics

import (
	"regexp"
	"sort"
	"strings"

	"scout/internal/types"
)

var positiveWords = []string{
	"good", "great", "excellent", "positive", "success", "successful",
	"innovative", "breakthrough", "growth", "improve", "benefit", "effective",
}

var negativeWords = []string{
	"bad", "poor", "negative", "failure", "decline", "risk",
	"problem", "crisis", "concern", "loss", "threat", "flaw",
}

// Sentiment counts positive and negative word hits over whitespace tokens
// of the snippet. Ties classify as neutral.
func Sentiment(snippet string) types.Sentiment {
	var pos, neg int
	for _, token := range strings.Fields(strings.ToLower(snippet)) {
		for _, w := range positiveWords {
			if strings.Contains(token, w) {
				pos++
				break
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(token, w) {
				neg++
				break
			}
		}
	}
	switch {
	case pos > neg:
		return types.SentimentPositive
	case neg > pos:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

var (
	credibleSources   = []string{"academic", "research", "university", "gov", "edu"}
	uncredibleSources = []string{"blog", "social", "forum"}
)

// Credibility nudges a 0.7 baseline by source and snippet markers and
// clamps to [0.1, 1.0].
func Credibility(source, snippet string) float64 {
	score := 0.7
	src := strings.ToLower(source)
	snip := strings.ToLower(snippet)

	for _, s := range credibleSources {
		if strings.Contains(src, s) {
			score += 0.2
			break
		}
	}
	for _, s := range uncredibleSources {
		if strings.Contains(src, s) {
			score -= 0.2
			break
		}
	}
	if strings.Contains(snip, "study") || strings.Contains(snip, "research") {
		score += 0.1
	}
	if strings.Contains(snip, "according to") || strings.Contains(snip, "data shows") {
		score += 0.1
	}

	if score < 0.1 {
		score = 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Relevance scores how well a result matches the query: a 0.5 base, +0.1
// per distinct query term found in title+snippet, +0.2 when the raw query
// is a substring of the title, clamped to 1.0. Fully deterministic; the
// same (query, title, snippet) triple always scores the same.
func Relevance(query, title, snippet string) float64 {
	score := 0.5
	q := strings.ToLower(strings.TrimSpace(query))
	haystack := strings.ToLower(title + " " + snippet)

	seen := make(map[string]bool)
	for _, term := range strings.Fields(q) {
		if seen[term] {
			continue
		}
		seen[term] = true
		if strings.Contains(haystack, term) {
			score += 0.1
		}
	}
	if q != "" && strings.Contains(strings.ToLower(title), q) {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// topicVocabulary is the fixed tag vocabulary. All matches are returned in
// vocabulary order; there is no ranking.
var topicVocabulary = []string{
	"ai", "machine learning", "data", "research", "business",
	"technology", "market", "analysis", "automation", "web scraping",
	"intelligence", "analytics", "security", "cloud", "startup",
}

// Topics returns every vocabulary term contained in title+snippet.
func Topics(title, snippet string) []string {
	haystack := strings.ToLower(title + " " + snippet)
	var out []string
	for _, term := range topicVocabulary {
		if strings.Contains(haystack, term) {
			out = append(out, term)
		}
	}
	return out
}

// categoryGroups is an ordered keyword table; the first group with a hit
// wins.
var categoryGroups = []struct {
	name  string
	words []string
}{
	{"business", []string{"market", "business", "industry", "competitor", "revenue"}},
	{"academic", []string{"academic", "research", "study", "journal", "university"}},
	{"news", []string{"news", "breaking", "headline", "announcement"}},
	{"trends", []string{"trend", "forecast", "prediction", "emerging"}},
	{"tools", []string{"tool", "platform", "software", "api"}},
	{"fact-check", []string{"fact", "verify", "debunk", "claim"}},
	{"investigative", []string{"investigate", "investigation", "expose", "leak"}},
}

// Categorize classifies free text into one of the fixed categories,
// defaulting to "general".
func Categorize(text string) string {
	t := strings.ToLower(text)
	for _, g := range categoryGroups {
		for _, w := range g.words {
			if strings.Contains(t, w) {
				return g.name
			}
		}
	}
	return "general"
}

var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),      // capitalized pairs
	regexp.MustCompile(`\b[A-Z]{2,}\b`),                    // acronyms
	regexp.MustCompile(`\b(?:19|20)\d{2}\b`),               // years
	regexp.MustCompile(`\$\d[\d,.]*(?:\s?(?:million|billion|trillion))?`), // amounts
}

// Entities extracts named-entity-ish spans: capitalized two-word
// sequences, all-caps acronyms, four-digit years, and dollar amounts.
// At most 3 matches per pattern, deduplicated, capped at 8 total.
func Entities(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range entityPatterns {
		matches := re.FindAllString(text, 3)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
			if len(out) == 8 {
				return out
			}
		}
	}
	return out
}

// ReadingTime estimates minutes to read at 200 words per minute, minimum 1.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := words / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// TopTopics tallies topics across results and returns the most frequent
// first, capped at n. Frequency ties break alphabetically so output is
// stable.
func TopTopics(results []types.SearchResult, n int) []string {
	counts := make(map[string]int)
	for _, r := range results {
		for _, topic := range Topics(r.Title, r.Snippet) {
			counts[topic]++
		}
	}
	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}
