package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// paintStyles holds the concrete [lipgloss.Style] values the views render
// with. There's exactly one instance, styles, shared across the package.
type paintStyles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	dim   lipgloss.Style
}

var styles = paintStyles{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	ok:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}
