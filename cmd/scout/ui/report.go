package ui

import (
	"fmt"
	"strings"

	"scout/internal/types"
)

// ReportMarkdown renders a report as markdown, shared by the CLI and the
// interactive report view.
func ReportMarkdown(r types.SearchReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "*Generated %s*\n\n", r.CreatedAt.Format("2006-01-02 15:04"))

	fmt.Fprintf(&b, "## Overview\n\n")
	fmt.Fprintf(&b, "- Sources: %d\n", r.Analysis.SourceCount)
	fmt.Fprintf(&b, "- Average credibility: %.2f\n", r.Analysis.AvgCredibility)
	if len(r.Analysis.SentimentCounts) > 0 {
		parts := make([]string, 0, len(r.Analysis.SentimentCounts))
		for _, s := range []types.Sentiment{types.SentimentPositive, types.SentimentNeutral, types.SentimentNegative} {
			if n := r.Analysis.SentimentCounts[s]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", s, n))
			}
		}
		fmt.Fprintf(&b, "- Sentiment: %s\n", strings.Join(parts, ", "))
	}
	if len(r.Analysis.TopTopics) > 0 {
		fmt.Fprintf(&b, "- Top topics: %s\n", strings.Join(r.Analysis.TopTopics, ", "))
	}
	b.WriteString("\n")

	if len(r.Analysis.KeyInsights) > 0 {
		b.WriteString("## Key Insights\n\n")
		for _, insight := range r.Analysis.KeyInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	if len(r.Analysis.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Analysis.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(r.Results) > 0 {
		b.WriteString("## Sources\n\n")
		for i, res := range r.Results {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n   %s\n", i+1, res.Title, res.Source, res.URL)
		}
	}

	return b.String()
}
