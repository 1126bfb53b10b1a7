// Package preview fetches a result URL and extracts a title and short
// excerpt for the detail pane. Best effort; a failed fetch is reported,
// never fatal to the caller.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	maxBodyBytes  = 1 << 20 // 1 MiB is plenty for a text preview
	excerptLimit  = 400
	defaultTimeout = 10 * time.Second
)

// Page is the extracted preview of a fetched URL.
type Page struct {
	URL     string
	Title   string
	Excerpt string
}

// Fetcher fetches and parses pages with a bounded client.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a sane default timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: defaultTimeout}}
}

// Fetch downloads url and extracts its title and first paragraph.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "scout/1.0 (research preview)")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse html: %w", err)
	}

	return Page{
		URL:     url,
		Title:   extractTitle(doc),
		Excerpt: extractExcerpt(doc),
	}, nil
}

func extractTitle(doc *html.Node) string {
	title := ""
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return title
}

// extractExcerpt returns the text of the first non-empty paragraph,
// clipped to the excerpt limit.
func extractExcerpt(doc *html.Node) string {
	excerpt := ""
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if excerpt != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(textContent(n))
			if text != "" {
				excerpt = clip(text, excerptLimit)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return excerpt
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
