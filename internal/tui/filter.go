package tui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/bookfeed/internal/session"
)

// filterBar shows the catalog as tabs; active ones are the selected categories.
type filterBar struct {
	catalog    session.Catalog
	filterMode bool
	cursor     int
}

func newFilterBar(catalog session.Catalog) filterBar {
	return filterBar{catalog: catalog}
}

func (f *filterBar) left() {
	if f.cursor > 0 {
		f.cursor--
	}
}

func (f *filterBar) right() {
	if f.cursor < len(f.catalog)-1 {
		f.cursor++
	}
}

// current returns the category under the cursor.
func (f *filterBar) current() (string, bool) {
	return f.at(f.cursor)
}

func (f *filterBar) at(i int) (string, bool) {
	if i < 0 || i >= len(f.catalog) {
		return "", false
	}
	return f.catalog[i], true
}

func (f *filterBar) render(selected []string, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	parts := make([]string, 0, len(f.catalog)+1)

	if len(selected) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, name := range f.catalog {
		style := tabInactiveStyle
		if slices.Contains(selected, name) {
			style = tabActiveStyle
		}
		label := name
		if f.filterMode && i < 9 {
			label = string(rune('1'+i)) + " " + label
		}
		if f.filterMode && i == f.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Stop before a tab would overflow the line.
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	return lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(row)
}
