// Package ui is the interactive terminal interface: a search box feeding a
// results list, with analysis, report, and provider-status views.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used across the views.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Notice   lipgloss.Style
	Muted    lipgloss.Style
	Good     lipgloss.Style
	Bad      lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		Header: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFC107")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280")),
		Good: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BC34A")),
		Bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e53935")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4b5563")),
	}
}
