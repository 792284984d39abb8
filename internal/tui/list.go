package tui

import (
	"strings"

	"github.com/leapstack-labs/bookfeed/pkg/core"
)

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func renderListItem(row core.ResultRow, isCursor, isSelected bool, width int) string {
	if width < 10 {
		width = 30
	}

	prefix := "  "
	style := itemTitleStyle
	switch {
	case isCursor:
		prefix = "> "
		style = itemCursorStyle
	case isSelected:
		style = itemSelectedStyle
	}

	head := prefix + checkbox(isSelected) + " "
	title := style.Render(head + truncateStr(row.Title, width-len(head)))

	meta := []string{row.Author, row.Category}
	if d := row.PublishedDate(); d != "" {
		meta = append(meta, d)
	}
	return title + "\n" + itemMetaStyle.Render("      "+truncateStr(strings.Join(meta, " · "), width-6))
}

func renderList(rows []core.ResultRow, cursor, selected, height, width int, empty string) string {
	if len(rows) == 0 {
		return center(empty, width, height)
	}

	// Each item is 2 lines + 1 blank line
	const itemHeight = 3
	visible := max(height/itemHeight, 1)

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(rows[i], i == cursor, i == selected, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func center(s string, width, height int) string {
	pad := max((width-len(s))/2, 0)
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
