package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(indicator, term string, categories []string, width int, m mode) string {
	left := " " + indicator
	if term != "" {
		left += fmt.Sprintf(" · %q", term)
	}
	if len(categories) > 0 {
		left += " · " + strings.Join(categories, ", ")
	}

	var right string
	switch m {
	case modeSearch:
		right = " esc cancel  enter search "
	case modeFilter:
		right = " ←/→ move  space toggle  1-9 quick  esc done "
	default:
		right = " / search  f filter  n/p page  ? help  q quit "
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
