// Package research is the application facade: it runs queries through the
// provider call chain, salvages structured data out of the raw completions,
// and degrades to templated content when the providers are unavailable.
// None of its read paths return errors to the caller; the contract is
// "always respond with something usable".
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scout/internal/fallback"
	"scout/internal/heuristics"
	"scout/internal/logging"
	"scout/internal/orchestrator"
	"scout/internal/provider"
	"scout/internal/salvage"
	"scout/internal/store"
	"scout/internal/types"
)

const (
	enhanceSystemPrompt = `You improve research search queries. Rewrite the user's query to be more specific and effective for research. Respond with the improved query text only, no explanation and no quotes.`

	searchSystemPrompt = `You are a research assistant. Generate realistic, high-quality search results for the query. Respond ONLY with a JSON array of objects, each with the fields "title", "url", "snippet", and "source". No prose, no markdown fences.`

	analyzeSystemPrompt = `You are a research analyst. Analyze the given search result. Respond ONLY with a JSON object with the fields "summary" (string), "keyPoints" (array of strings), "entities" (array of strings), "topics" (array of strings), "sentiment" ("positive", "negative", or "neutral"), "credibility" (string), "bias" (string), and "factualAccuracy" (number 0-10).`

	suggestSystemPrompt = `You suggest follow-up research queries. Respond ONLY with a JSON array of exactly 5 suggestion strings.`

	reportSystemPrompt = `You write research report insights. Given a query and its results, respond ONLY with a JSON object with the fields "keyInsights" (array of strings) and "recommendations" (array of strings).`
)

const topQueriesCap = 10

// Runner is the slice of the call strategy the service depends on.
type Runner interface {
	Run(ctx context.Context, task orchestrator.Task, systemPrompt, userPrompt string) (string, error)
	Probe(ctx context.Context) map[provider.Provider]provider.Status
}

// Service exposes the in-process research API consumed by the CLI and TUI.
type Service struct {
	st  *store.Store
	log *zap.Logger

	mu           sync.Mutex
	orch         Runner
	analytics    types.Analytics
	lastDegraded bool
}

// New builds a Service. The store may be nil, in which case history,
// reports, and analytics live only in memory for the process lifetime.
func New(orch Runner, st *store.Store) *Service {
	s := &Service{
		orch:      orch,
		st:        st,
		log:       logging.Named("research"),
		analytics: types.NewAnalytics(),
	}
	if st != nil {
		if a, err := st.LoadAnalytics(); err == nil {
			s.analytics = a
		}
	}
	return s
}

// SetRunner swaps the call strategy at runtime. Used when the config file
// changes on disk and the provider set needs rebuilding.
func (s *Service) SetRunner(orch Runner) {
	s.mu.Lock()
	s.orch = orch
	s.mu.Unlock()
}

func (s *Service) runner() Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch
}

// providerItem is the shape each element of the salvaged results array is
// expected to carry.
type providerItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Search runs the full pipeline: enhance the query, ask the providers for
// results, salvage the response, and fall back to templated content when
// everything fails. It never returns an empty slice and never errors.
func (s *Service) Search(ctx context.Context, q types.SearchQuery) []types.SearchResult {
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}

	enhanced := s.enhanceQuery(ctx, q.Text)
	results := s.providerResults(ctx, q, enhanced)
	degraded := len(results) == 0
	if degraded {
		s.log.Info("using fallback results", zap.String("query", q.Text))
		for _, item := range fallback.Results(q.Text, q.Filters.ContentType) {
			results = append(results, s.buildResult(q.Text, item))
		}
	}

	s.mu.Lock()
	s.lastDegraded = degraded
	s.mu.Unlock()

	s.recordSearch(q, results)
	return results
}

// Degraded reports whether the most recent search was served from fallback
// content. Shown as a soft notice, never as an error.
func (s *Service) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDegraded
}

// enhanceQuery asks the providers to refine the query text. Any failure
// returns the original query unchanged.
func (s *Service) enhanceQuery(ctx context.Context, query string) string {
	raw, err := s.runner().Run(ctx, orchestrator.TaskEnhance, enhanceSystemPrompt, query)
	if err != nil {
		return fallback.EnhanceQuery(query)
	}
	enhanced := strings.Trim(strings.TrimSpace(raw), `"'`)
	if enhanced == "" || strings.ContainsRune(enhanced, '\n') {
		// Multi-line output means the model ignored the format; keep the
		// user's own words.
		return query
	}
	return enhanced
}

func (s *Service) providerResults(ctx context.Context, q types.SearchQuery, enhanced string) []types.SearchResult {
	userPrompt := fmt.Sprintf("Query: %s", enhanced)
	if q.Filters.ContentType != "" && q.Filters.ContentType != "any" {
		userPrompt += fmt.Sprintf("\nContent type: %s", q.Filters.ContentType)
	}
	if q.Filters.Depth != "" {
		userPrompt += fmt.Sprintf("\nDepth: %s", q.Filters.Depth)
	}

	raw, err := s.runner().Run(ctx, orchestrator.TaskSearch, searchSystemPrompt, userPrompt)
	if err != nil {
		return nil
	}

	items, err := salvage.Results(raw)
	if err != nil {
		s.log.Debug("could not salvage results", zap.Error(err))
		return nil
	}

	var results []types.SearchResult
	for _, rawItem := range items {
		var item providerItem
		if err := json.Unmarshal(rawItem, &item); err != nil || item.Title == "" {
			continue
		}
		results = append(results, s.buildResult(q.Text, fallback.Item{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Snippet,
			Source:  item.Source,
		}))
	}
	return results
}

// buildResult attaches the locally derived metadata every fresh result
// carries.
func (s *Service) buildResult(query string, item fallback.Item) types.SearchResult {
	return types.SearchResult{
		ID:        uuid.NewString(),
		Title:     item.Title,
		URL:       item.URL,
		Snippet:   item.Snippet,
		Source:    item.Source,
		CreatedAt: time.Now(),
		Relevance: heuristics.Relevance(query, item.Title, item.Snippet),
		Category:  heuristics.Categorize(item.Title + " " + item.Snippet),
		Tags:      heuristics.Topics(item.Title, item.Snippet),
		Metadata: types.ResultMetadata{
			ReadingTime: heuristics.ReadingTime(item.Snippet),
			Credibility: heuristics.Credibility(item.Source, item.Snippet),
			Sentiment:   heuristics.Sentiment(item.Snippet),
		},
	}
}

// analysisWire matches the JSON shape the analyze prompt asks for.
type analysisWire struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"keyPoints"`
	Entities        []string `json:"entities"`
	Topics          []string `json:"topics"`
	Sentiment       string   `json:"sentiment"`
	Credibility     string   `json:"credibility"`
	Bias            string   `json:"bias"`
	FactualAccuracy float64  `json:"factualAccuracy"`
}

// AnalyzeResult fills in the result's analysis exactly once. A result that
// is already analyzed is left untouched.
func (s *Service) AnalyzeResult(ctx context.Context, r *types.SearchResult) {
	if r == nil || r.Analyzed {
		return
	}

	analysis := s.providerAnalysis(ctx, r)
	if analysis == nil {
		analysis = fallback.Analysis(r)
	}
	r.Analysis = analysis
	r.Analyzed = true
}

func (s *Service) providerAnalysis(ctx context.Context, r *types.SearchResult) *types.SearchAnalysis {
	userPrompt := fmt.Sprintf("Title: %s\nSource: %s\nSnippet: %s", r.Title, r.Source, r.Snippet)
	raw, err := s.runner().Run(ctx, orchestrator.TaskAnalyze, analyzeSystemPrompt, userPrompt)
	if err != nil {
		return nil
	}

	var wire analysisWire
	if err := salvage.Unmarshal(raw, &wire); err != nil || wire.Summary == "" {
		s.log.Debug("could not salvage analysis", zap.Error(err))
		return nil
	}

	sentiment := types.Sentiment(wire.Sentiment)
	switch sentiment {
	case types.SentimentPositive, types.SentimentNegative, types.SentimentNeutral:
	default:
		sentiment = heuristics.Sentiment(r.Snippet)
	}

	return &types.SearchAnalysis{
		Summary:         wire.Summary,
		KeyPoints:       wire.KeyPoints,
		Entities:        wire.Entities,
		Topics:          wire.Topics,
		Sentiment:       sentiment,
		Credibility:     wire.Credibility,
		Bias:            wire.Bias,
		FactualAccuracy: wire.FactualAccuracy,
	}
}

// GenerateSearchSuggestions returns follow-up query suggestions for a bare
// text input.
func (s *Service) GenerateSearchSuggestions(ctx context.Context, text string) []string {
	raw, err := s.runner().Run(ctx, orchestrator.TaskSuggest, suggestSystemPrompt,
		fmt.Sprintf("Query: %s", text))
	if err != nil {
		return fallback.Suggestions(text)
	}
	return salvage.Strings(raw, fallback.Suggestions(text))
}

// GenerateSmartSuggestions returns follow-ups informed by the results the
// user already has.
func (s *Service) GenerateSmartSuggestions(ctx context.Context, query string, results []types.SearchResult) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\nResults so far:\n", query)
	for i, r := range results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", r.Title, r.Source)
	}

	raw, err := s.runner().Run(ctx, orchestrator.TaskSuggest, suggestSystemPrompt, b.String())
	if err != nil {
		return fallback.Suggestions(query)
	}
	return salvage.Strings(raw, fallback.Suggestions(query))
}

// GenerateSearchReport builds a report over the selected results using the
// local aggregates only. It is saved before being returned.
func (s *Service) GenerateSearchReport(query string, results []types.SearchResult) types.SearchReport {
	now := time.Now()
	report := types.SearchReport{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("Research Report: %s", query),
		Queries:   []string{query},
		Results:   results,
		Analysis:  s.aggregate(query, results),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.saveReport(report)
	return report
}

// GenerateAIReport is the report variant that asks the providers for the
// insight and recommendation lists, keeping the local aggregates for the
// numeric block. Provider failure degrades to the local report.
func (s *Service) GenerateAIReport(ctx context.Context, query string, results []types.SearchResult) types.SearchReport {
	report := s.GenerateSearchReport(query, results)

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\nResults:\n", query)
	for _, r := range results {
		fmt.Fprintf(&b, "- %s | %s | %s\n", r.Title, r.Source, r.Snippet)
	}

	raw, err := s.runner().Run(ctx, orchestrator.TaskAnalyze, reportSystemPrompt, b.String())
	if err != nil {
		return report
	}

	var wire struct {
		KeyInsights     []string `json:"keyInsights"`
		Recommendations []string `json:"recommendations"`
	}
	if err := salvage.Unmarshal(raw, &wire); err != nil || len(wire.KeyInsights) == 0 {
		return report
	}

	report.Analysis.KeyInsights = wire.KeyInsights
	if len(wire.Recommendations) > 0 {
		report.Analysis.Recommendations = wire.Recommendations
	}
	report.UpdatedAt = time.Now()
	s.saveReport(report)
	return report
}

// aggregate computes the local analysis block of a report.
func (s *Service) aggregate(query string, results []types.SearchResult) types.ReportAnalysis {
	analysis := types.ReportAnalysis{
		SourceCount:     len(results),
		SentimentCounts: make(map[types.Sentiment]int),
		TopTopics:       heuristics.TopTopics(results, 5),
		KeyInsights:     fallback.Insights(results),
		Recommendations: fallback.Recommendations(query),
	}
	if len(results) == 0 {
		return analysis
	}

	var credSum float64
	for _, r := range results {
		credSum += r.Metadata.Credibility
		analysis.SentimentCounts[r.Metadata.Sentiment]++
	}
	analysis.AvgCredibility = credSum / float64(len(results))
	return analysis
}

func (s *Service) saveReport(report types.SearchReport) {
	if s.st == nil {
		return
	}
	s.st.Async(func() {
		if err := s.st.SaveReport(report); err != nil {
			s.log.Warn("failed to save report", zap.String("id", report.ID), zap.Error(err))
		}
	})
}

// UpdateReport persists an edited report, bumping its timestamp.
func (s *Service) UpdateReport(report types.SearchReport) types.SearchReport {
	report.UpdatedAt = time.Now()
	s.saveReport(report)
	return report
}

// DeleteReport removes a saved report.
func (s *Service) DeleteReport(id string) error {
	if s.st == nil {
		return nil
	}
	return s.st.DeleteReport(id)
}

// Reports lists the saved reports, newest first.
func (s *Service) Reports() []types.SearchReport {
	if s.st == nil {
		return nil
	}
	reports, err := s.st.Reports()
	if err != nil {
		s.log.Warn("failed to load reports", zap.Error(err))
		return nil
	}
	return reports
}

// History returns the recent query history, most recent first.
func (s *Service) History(limit int) []types.SearchQuery {
	if s.st == nil {
		return nil
	}
	history, err := s.st.History(limit)
	if err != nil {
		s.log.Warn("failed to load history", zap.Error(err))
		return nil
	}
	return history
}

// Analytics returns a snapshot of the usage counters.
func (s *Service) Analytics() types.Analytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotAnalytics(s.analytics)
}

// ResetAnalytics zeroes the counters, in memory and on disk.
func (s *Service) ResetAnalytics() {
	s.mu.Lock()
	s.analytics = types.NewAnalytics()
	s.mu.Unlock()

	if s.st != nil {
		s.st.Async(func() {
			if err := s.st.ResetAnalytics(); err != nil {
				s.log.Warn("failed to reset analytics", zap.Error(err))
			}
		})
	}
}

// AddTimeSpent accumulates session time into the counters.
func (s *Service) AddTimeSpent(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.analytics.TimeSpentSeconds += int64(d.Seconds())
	snapshot := snapshotAnalytics(s.analytics)
	s.mu.Unlock()
	s.persistAnalytics(snapshot)
}

// RecordAccuracy stores a user-supplied accuracy rating (0-10) for a
// result the user has reviewed.
func (s *Service) RecordAccuracy(rating float64) {
	if rating < 0 || rating > 10 {
		return
	}
	s.mu.Lock()
	s.analytics.AccuracyRatings = append(s.analytics.AccuracyRatings, rating)
	snapshot := snapshotAnalytics(s.analytics)
	s.mu.Unlock()
	s.persistAnalytics(snapshot)
}

func (s *Service) persistAnalytics(a types.Analytics) {
	if s.st == nil {
		return
	}
	s.st.Async(func() {
		if err := s.st.SaveAnalytics(a); err != nil {
			s.log.Warn("failed to save analytics", zap.Error(err))
		}
	})
}

// APIStatus probes every configured provider and returns the health
// snapshot shown in the diagnostics view.
func (s *Service) APIStatus(ctx context.Context) map[provider.Provider]provider.Status {
	return s.runner().Probe(ctx)
}

// recordSearch appends the query to history and updates the counters. The
// persistence write is fire-and-forget.
func (s *Service) recordSearch(q types.SearchQuery, results []types.SearchResult) {
	category := q.Category
	if category == "" {
		category = heuristics.Categorize(q.Text)
	}

	s.mu.Lock()
	a := &s.analytics
	a.TotalSearches++
	a.CategoryCounts[category]++
	a.AvgResultsPerQuery += (float64(len(results)) - a.AvgResultsPerQuery) / float64(a.TotalSearches)
	a.TopQueries = pushQuery(a.TopQueries, q.Text)
	for _, r := range results {
		if r.Source != "" {
			a.SourceCounts[r.Source]++
		}
	}
	snapshot := snapshotAnalytics(*a)
	s.mu.Unlock()

	if s.st == nil {
		return
	}
	s.st.Async(func() {
		if err := s.st.AppendQuery(q); err != nil {
			s.log.Warn("failed to record query", zap.Error(err))
		}
		if err := s.st.SaveAnalytics(snapshot); err != nil {
			s.log.Warn("failed to save analytics", zap.Error(err))
		}
	})
}

// pushQuery moves text to the head of the bounded recent-query list.
func pushQuery(queries []string, text string) []string {
	out := []string{text}
	for _, q := range queries {
		if q != text {
			out = append(out, q)
		}
	}
	if len(out) > topQueriesCap {
		out = out[:topQueriesCap]
	}
	return out
}

// snapshotAnalytics deep-copies the counters so callers never share maps
// with the service.
func snapshotAnalytics(a types.Analytics) types.Analytics {
	out := a
	out.CategoryCounts = make(map[string]int, len(a.CategoryCounts))
	for k, v := range a.CategoryCounts {
		out.CategoryCounts[k] = v
	}
	out.SourceCounts = make(map[string]int, len(a.SourceCounts))
	for k, v := range a.SourceCounts {
		out.SourceCounts[k] = v
	}
	out.TopQueries = append([]string(nil), a.TopQueries...)
	out.AccuracyRatings = append([]float64(nil), a.AccuracyRatings...)
	return out
}
