package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/bookfeed/internal/summary"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

func renderDetail(row *core.ResultRow, width, height, scroll int) string {
	if row == nil {
		return center("Press space to select a row", width, height)
	}

	contentWidth := max(width-2, 10)

	title := detailTitleStyle.Width(contentWidth).Render(row.Title)

	meta := []string{row.Category}
	if d := row.PublishedDate(); d != "" {
		meta = append(meta, "published "+d)
	}
	if d := row.UpdatedDate(); d != "" {
		meta = append(meta, "updated "+d)
	}
	info := detailMetaStyle.Width(contentWidth).Render(strings.Join(meta, " · "))

	body := summary.Markdown(row.Summary)
	if body == "" {
		body = "(No summary available)"
	}
	bodyBlock := detailBodyStyle.Width(contentWidth).Render(body)
	link := detailLinkStyle.Width(contentWidth).Render("o open " + row.Link)

	content := lipgloss.JoinVertical(lipgloss.Left, title, info, "", bodyBlock, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
