package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"scout/cmd/scout/ui"
	"scout/internal/provider"
	"scout/internal/types"
)

var (
	contentType string
	depth       string
	aiReport    bool
)

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func queryFromArgs(args []string) types.SearchQuery {
	return types.SearchQuery{
		Text: strings.Join(args, " "),
		Filters: types.SearchFilters{
			ContentType: contentType,
			Depth:       types.SearchDepth(depth),
		},
	}
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a research search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		results := svc.Search(ctx, queryFromArgs(args))
		for i, r := range results {
			fmt.Printf("%d. %s\n", i+1, r.Title)
			fmt.Printf("   %s | %s | relevance %.2f | credibility %.2f | %s\n",
				r.Source, r.Category, r.Relevance, r.Metadata.Credibility, r.Metadata.Sentiment)
			fmt.Printf("   %s\n", r.URL)
			fmt.Printf("   %s\n\n", r.Snippet)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Search and analyze the top result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		results := svc.Search(ctx, queryFromArgs(args))
		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		top := &results[0]
		svc.AnalyzeResult(ctx, top)
		a := top.Analysis

		fmt.Printf("%s\n%s\n\n", top.Title, top.URL)
		fmt.Printf("Summary: %s\n\n", a.Summary)
		if len(a.KeyPoints) > 0 {
			fmt.Println("Key points:")
			for _, p := range a.KeyPoints {
				fmt.Printf("  - %s\n", p)
			}
			fmt.Println()
		}
		if len(a.Entities) > 0 {
			fmt.Printf("Entities: %s\n", strings.Join(a.Entities, ", "))
		}
		if len(a.Topics) > 0 {
			fmt.Printf("Topics: %s\n", strings.Join(a.Topics, ", "))
		}
		fmt.Printf("Sentiment: %s\n", a.Sentiment)
		fmt.Printf("Credibility: %s\n", a.Credibility)
		if a.Bias != "" {
			fmt.Printf("Bias: %s\n", a.Bias)
		}
		fmt.Printf("Factual accuracy: %.1f/10\n", a.FactualAccuracy)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest follow-up research queries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		for _, s := range svc.GenerateSearchSuggestions(ctx, strings.Join(args, " ")) {
			fmt.Printf("  - %s\n", s)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "Search and generate a research report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		query := strings.Join(args, " ")
		results := svc.Search(ctx, queryFromArgs(args))

		var report types.SearchReport
		if aiReport {
			report = svc.GenerateAIReport(ctx, query, results)
		} else {
			report = svc.GenerateSearchReport(query, results)
		}

		md := ui.ReportMarkdown(report)
		rendered, err := glamour.Render(md, "auto")
		if err != nil {
			fmt.Println(md)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe provider health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		status := svc.APIStatus(ctx)
		if len(status) == 0 {
			fmt.Println("No providers configured. Set SCOUT_<PROVIDER>_API_KEY or edit the config file.")
			return nil
		}
		for _, p := range provider.All() {
			s, ok := status[p]
			if !ok {
				continue
			}
			state := "ok"
			if !s.Working {
				state = "unavailable"
				if s.LastError != "" {
					state += ": " + s.LastError
				}
			}
			fmt.Printf("  %-10s %s\n", p, state)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		history := svc.History(20)
		if len(history) == 0 {
			fmt.Println("No search history yet.")
			return nil
		}
		for _, q := range history {
			fmt.Printf("  %s  %s\n", q.Timestamp.Format("2006-01-02 15:04"), q.Text)
		}
		return nil
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		if reset {
			svc.ResetAnalytics()
			fmt.Println("Analytics reset.")
			return nil
		}

		a := svc.Analytics()
		fmt.Printf("Total searches:      %d\n", a.TotalSearches)
		fmt.Printf("Avg results/query:   %.1f\n", a.AvgResultsPerQuery)
		if a.TimeSpentSeconds > 0 {
			fmt.Printf("Time in sessions:    %s\n", (time.Duration(a.TimeSpentSeconds) * time.Second).String())
		}
		if len(a.AccuracyRatings) > 0 {
			var sum float64
			for _, r := range a.AccuracyRatings {
				sum += r
			}
			fmt.Printf("Avg accuracy rating: %.1f/10 (%d rated)\n", sum/float64(len(a.AccuracyRatings)), len(a.AccuracyRatings))
		}
		if len(a.TopQueries) > 0 {
			fmt.Printf("Recent queries:      %s\n", strings.Join(a.TopQueries, ", "))
		}
		if len(a.CategoryCounts) > 0 {
			fmt.Println("Categories:")
			for category, n := range a.CategoryCounts {
				fmt.Printf("  %-14s %d\n", category, n)
			}
		}
		if len(a.SourceCounts) > 0 {
			fmt.Println("Sources:")
			for source, n := range a.SourceCounts {
				fmt.Printf("  %-30s %d\n", source, n)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&contentType, "type", "", "content type filter (article, paper, news, any)")
	searchCmd.Flags().StringVar(&depth, "depth", "", "search depth (quick, standard, deep)")
	analyzeCmd.Flags().StringVar(&contentType, "type", "", "content type filter")
	reportCmd.Flags().BoolVar(&aiReport, "ai", false, "ask the providers for report insights")
	analyticsCmd.Flags().Bool("reset", false, "reset all counters")
}
