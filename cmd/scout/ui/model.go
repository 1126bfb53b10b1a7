package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"scout/internal/preview"
	"scout/internal/provider"
	"scout/internal/research"
	"scout/internal/types"
)

type view int

const (
	viewSearch view = iota
	viewLoading
	viewResults
	viewDetail
	viewReport
	viewStatus
)

const searchTimeout = 90 * time.Second

// resultItem adapts a SearchResult to the bubbles list.
type resultItem struct {
	result types.SearchResult
}

func (i resultItem) Title() string { return i.result.Title }
func (i resultItem) Description() string {
	return fmt.Sprintf("%s | %s | credibility %.2f", i.result.Source, i.result.Category, i.result.Metadata.Credibility)
}
func (i resultItem) FilterValue() string { return i.result.Title }

type (
	resultsMsg struct {
		results  []types.SearchResult
		degraded bool
	}
	analyzedMsg  struct{ result types.SearchResult }
	reportMsg    struct{ rendered string }
	statusMsg    struct{ status map[provider.Provider]provider.Status }
	previewMsg   struct{ page preview.Page }
	suggestedMsg struct{ suggestions []string }
)

// Model is the root bubbletea model.
type Model struct {
	svc     *research.Service
	styles  Styles
	fetcher *preview.Fetcher

	view     view
	input    textinput.Model
	spinner  spinner.Model
	results  list.Model
	report   viewport.Model
	loading  string
	notice   string
	query    string
	detail   *types.SearchResult
	page     *preview.Page
	status   map[provider.Provider]provider.Status
	suggests []string

	width  int
	height int
}

// NewModel builds the root model around the research service.
func NewModel(svc *research.Service) Model {
	input := textinput.New()
	input.Placeholder = "What do you want to research?"
	input.Focus()
	input.CharLimit = 200
	input.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	results := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	results.Title = "Results"
	results.SetShowStatusBar(false)

	return Model{
		svc:     svc,
		styles:  DefaultStyles(),
		fetcher: preview.NewFetcher(),
		input:   input,
		spinner: sp,
		results: results,
		report:  viewport.New(80, 20),
	}
}

// Run starts the interactive interface. Session time is folded into the
// usage counters when the program exits.
func Run(svc *research.Service) error {
	start := time.Now()
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	_, err := p.Run()
	if svc != nil {
		svc.AddTimeSpent(time.Since(start))
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		results := m.svc.Search(ctx, types.SearchQuery{Text: query})
		return resultsMsg{results: results, degraded: m.svc.Degraded()}
	}
}

func (m Model) analyzeCmd(r types.SearchResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		m.svc.AnalyzeResult(ctx, &r)
		return analyzedMsg{result: r}
	}
}

func (m Model) reportCmd(query string, results []types.SearchResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		report := m.svc.GenerateAIReport(ctx, query, results)
		md := ReportMarkdown(report)
		rendered, err := glamour.Render(md, "dark")
		if err != nil {
			rendered = md
		}
		return reportMsg{rendered: rendered}
	}
}

func (m Model) statusCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return statusMsg{status: m.svc.APIStatus(ctx)}
	}
}

func (m Model) previewCmd(url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		page, err := m.fetcher.Fetch(ctx, url)
		if err != nil {
			return previewMsg{}
		}
		return previewMsg{page: page}
	}
}

func (m Model) suggestCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		return suggestedMsg{suggestions: m.svc.GenerateSearchSuggestions(ctx, query)}
	}
}

func (m Model) smartSuggestCmd(query string, results []types.SearchResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		return suggestedMsg{suggestions: m.svc.GenerateSmartSuggestions(ctx, query, results)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.results.SetSize(msg.Width-2, msg.Height-6)
		m.report.Width = msg.Width - 2
		m.report.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.view != viewLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultsMsg:
		m.notice = ""
		if msg.degraded {
			m.notice = "AI services limited: showing curated results."
		}
		if len(msg.results) == 0 {
			m.notice = "No results found."
			m.view = viewSearch
			return m, nil
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = resultItem{result: r}
		}
		m.results.SetItems(items)
		m.results.Title = fmt.Sprintf("Results for %q", m.query)
		m.results.ResetSelected()
		m.view = viewResults
		return m, nil

	case analyzedMsg:
		r := msg.result
		m.detail = &r
		m.syncSelectedResult(r)
		m.view = viewDetail
		if r.URL != "" {
			return m, m.previewCmd(r.URL)
		}
		return m, nil

	case previewMsg:
		if msg.page.Title != "" || msg.page.Excerpt != "" {
			page := msg.page
			m.page = &page
		}
		return m, nil

	case reportMsg:
		m.report.SetContent(msg.rendered)
		m.report.GotoTop()
		m.view = viewReport
		return m, nil

	case statusMsg:
		m.status = msg.status
		m.view = viewStatus
		return m, nil

	case suggestedMsg:
		m.suggests = msg.suggestions
		m.view = viewSearch
		m.input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.view {
	case viewSearch:
		switch msg.Type {
		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				return m, nil
			}
			m.query = query
			m.suggests = nil
			m.loading = "Searching..."
			m.view = viewLoading
			return m, tea.Batch(m.spinner.Tick, m.searchCmd(query))
		case tea.KeyTab:
			if query := strings.TrimSpace(m.input.Value()); query != "" {
				m.loading = "Finding suggestions..."
				m.view = viewLoading
				return m, tea.Batch(m.spinner.Tick, m.suggestCmd(query))
			}
		case tea.KeyEsc:
			return m, tea.Quit
		}
		if msg.String() == "ctrl+s" {
			m.loading = "Checking providers..."
			m.view = viewLoading
			return m, tea.Batch(m.spinner.Tick, m.statusCmd())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case viewResults:
		switch msg.String() {
		case "q", "esc":
			m.view = viewSearch
			m.input.Focus()
			return m, textinput.Blink
		case "enter":
			if item, ok := m.results.SelectedItem().(resultItem); ok {
				m.page = nil
				if item.result.Analyzed {
					r := item.result
					m.detail = &r
					m.view = viewDetail
					return m, m.previewCmd(r.URL)
				}
				m.loading = "Analyzing..."
				m.view = viewLoading
				return m, tea.Batch(m.spinner.Tick, m.analyzeCmd(item.result))
			}
		case "r":
			m.loading = "Building report..."
			m.view = viewLoading
			return m, tea.Batch(m.spinner.Tick, m.reportCmd(m.query, m.currentResults()))
		case "g":
			m.loading = "Finding follow-up queries..."
			m.view = viewLoading
			return m, tea.Batch(m.spinner.Tick, m.smartSuggestCmd(m.query, m.currentResults()))
		case "s":
			m.loading = "Checking providers..."
			m.view = viewLoading
			return m, tea.Batch(m.spinner.Tick, m.statusCmd())
		}
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case viewDetail:
		switch key := msg.String(); key {
		case "q", "esc", "enter":
			m.view = viewResults
			m.notice = ""
		case "1", "2", "3", "4", "5":
			// Rate how accurate the analysis was, on a 1-5 scale
			// stored as 2-10.
			if m.svc != nil {
				m.svc.RecordAccuracy(float64(key[0]-'0') * 2)
			}
			m.notice = "Rated accuracy " + key + "/5."
		}
		return m, nil

	case viewReport:
		switch msg.String() {
		case "q", "esc":
			m.view = viewResults
			return m, nil
		}
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd

	case viewStatus:
		switch msg.String() {
		case "q", "esc", "enter":
			if len(m.results.Items()) > 0 {
				m.view = viewResults
			} else {
				m.view = viewSearch
				m.input.Focus()
			}
		}
		return m, nil
	}

	return m, nil
}

// syncSelectedResult writes the analyzed copy back into the list so a
// second enter on the same row skips straight to the detail view.
func (m *Model) syncSelectedResult(r types.SearchResult) {
	for i, item := range m.results.Items() {
		if ri, ok := item.(resultItem); ok && ri.result.ID == r.ID {
			m.results.SetItem(i, resultItem{result: r})
			return
		}
	}
}

func (m Model) currentResults() []types.SearchResult {
	items := m.results.Items()
	out := make([]types.SearchResult, 0, len(items))
	for _, item := range items {
		if ri, ok := item.(resultItem); ok {
			out = append(out, ri.result)
		}
	}
	return out
}

func (m Model) View() string {
	switch m.view {
	case viewLoading:
		return fmt.Sprintf("\n  %s %s\n", m.spinner.View(), m.loading)

	case viewResults:
		var b strings.Builder
		if m.notice != "" {
			b.WriteString("  " + m.styles.Notice.Render(m.notice) + "\n")
		}
		b.WriteString(m.results.View())
		b.WriteString("\n" + m.styles.Help.Render("  enter analyze | r report | g follow-ups | s status | esc back"))
		return b.String()

	case viewDetail:
		return m.detailView()

	case viewReport:
		return m.report.View() + "\n" + m.styles.Help.Render("  esc back")

	case viewStatus:
		return m.statusView()

	default:
		return m.searchView()
	}
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString("\n  " + m.styles.Header.Render("scout") + "  " +
		m.styles.Muted.Render("AI research assistant") + "\n\n")
	b.WriteString("  " + m.input.View() + "\n")
	if m.notice != "" {
		b.WriteString("\n  " + m.styles.Notice.Render(m.notice) + "\n")
	}
	if len(m.suggests) > 0 {
		b.WriteString("\n  " + m.styles.Title.Render("Suggestions") + "\n")
		for _, s := range m.suggests {
			b.WriteString("    " + m.styles.Muted.Render("- "+s) + "\n")
		}
	}
	b.WriteString("\n" + m.styles.Help.Render("  enter search | tab suggestions | ctrl+s provider status | esc quit"))
	return b.String()
}

func (m Model) detailView() string {
	if m.detail == nil {
		return ""
	}
	r := m.detail

	var b strings.Builder
	b.WriteString("\n  " + m.styles.Title.Render(r.Title) + "\n")
	b.WriteString("  " + m.styles.Muted.Render(r.URL) + "\n\n")
	b.WriteString(fmt.Sprintf("  Source: %s | Category: %s | Relevance: %.2f\n",
		r.Source, r.Category, r.Relevance))
	b.WriteString(fmt.Sprintf("  Credibility: %.2f | Sentiment: %s | Reading time: %d min\n\n",
		r.Metadata.Credibility, r.Metadata.Sentiment, r.Metadata.ReadingTime))

	if a := r.Analysis; a != nil {
		b.WriteString("  " + m.styles.Header.Render("Analysis") + "\n\n")
		b.WriteString("  " + a.Summary + "\n\n")
		for _, p := range a.KeyPoints {
			b.WriteString("    - " + p + "\n")
		}
		if len(a.Topics) > 0 {
			b.WriteString("\n  Topics: " + strings.Join(a.Topics, ", ") + "\n")
		}
		if len(a.Entities) > 0 {
			b.WriteString("  Entities: " + strings.Join(a.Entities, ", ") + "\n")
		}
		b.WriteString(fmt.Sprintf("  Factual accuracy: %.1f/10\n", a.FactualAccuracy))
	}

	if m.page != nil && m.page.Excerpt != "" {
		b.WriteString("\n  " + m.styles.Header.Render("Page preview") + "\n\n")
		b.WriteString("  " + m.page.Excerpt + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + m.styles.Notice.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + m.styles.Help.Render("  1-5 rate accuracy | esc back"))
	return b.String()
}

func (m Model) statusView() string {
	var b strings.Builder
	b.WriteString("\n  " + m.styles.Header.Render("Provider status") + "\n\n")
	if len(m.status) == 0 {
		b.WriteString("  " + m.styles.Notice.Render("No providers configured.") + "\n")
	}
	for _, p := range provider.All() {
		s, ok := m.status[p]
		if !ok {
			continue
		}
		if s.Working {
			b.WriteString(fmt.Sprintf("  %-10s %s\n", p, m.styles.Good.Render("ok")))
		} else {
			line := "unavailable"
			if s.LastError != "" {
				line += ": " + s.LastError
			}
			b.WriteString(fmt.Sprintf("  %-10s %s\n", p, m.styles.Bad.Render(line)))
		}
	}
	b.WriteString("\n" + m.styles.Help.Render("  esc back"))
	return b.String()
}
