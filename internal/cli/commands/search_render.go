package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/summary"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

var resultColumns = []string{"Title", "Author", "Category", "Published"}

// renderView writes one evaluation: the result table, page indicator and,
// when a row is selected, its detail block.
func renderView(w io.Writer, view engine.View, format string) error {
	switch format {
	case "json":
		return renderJSON(w, view)
	case "csv":
		return renderCSV(w, view)
	case "md", "markdown":
		renderMarkdown(w, view)
	default:
		renderTable(w, view)
	}
	return nil
}

func renderTable(w io.Writer, view engine.View) {
	if msg := view.ErrMessage(); msg != "" {
		_, _ = fmt.Fprintf(w, "Error: %s\n", msg)
	}
	if view.Empty() {
		_, _ = fmt.Fprintln(w, view.Message())
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "", "Title", "Author", "Category", "Published"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, WidthMax: 48, WidthMaxEnforcer: text.WrapSoft},
			{Number: 4, WidthMax: 28, WidthMaxEnforcer: text.WrapSoft},
			{Number: 5, WidthMax: 28, WidthMaxEnforcer: text.WrapSoft},
		})
		for i, r := range view.Rows {
			t.AppendRow(table.Row{i + 1, checkbox(view.State.Selected == i), r.Title, r.Author, r.Category, r.PublishedDate()})
		}
		t.Render()
	}
	_, _ = fmt.Fprintln(w, view.Page.Indicator())

	if row, ok := view.Selected(); ok {
		_, _ = fmt.Fprintln(w)
		renderDetailText(w, row)
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func renderDetailText(w io.Writer, r core.ResultRow) {
	_, _ = fmt.Fprintln(w, r.Title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", min(max(len(r.Title), 10), 60)))
	_, _ = fmt.Fprintf(w, "Category:  %s\n", r.Category)
	_, _ = fmt.Fprintf(w, "Published: %s\n", r.PublishedDate())
	_, _ = fmt.Fprintf(w, "Updated:   %s\n", r.UpdatedDate())
	_, _ = fmt.Fprintf(w, "Link:      %s\n", r.Link)
	if s := summary.Markdown(r.Summary); s != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, s)
	}
}

func renderMarkdown(w io.Writer, view engine.View) {
	if msg := view.ErrMessage(); msg != "" {
		_, _ = fmt.Fprintf(w, "> **Error:** %s\n\n", msg)
	}
	if view.Empty() {
		_, _ = fmt.Fprintf(w, "_%s_\n\n", view.Message())
	} else {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(resultColumns, " | "))
		seps := make([]string, len(resultColumns))
		for i := range seps {
			seps[i] = "---"
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
		for _, r := range view.Rows {
			values := []string{r.Title, r.Author, r.Category, r.PublishedDate()}
			for i, v := range values {
				values[i] = escapeMarkdownCell(v)
			}
			_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
		}
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintln(w, view.Page.Indicator())

	if r, ok := view.Selected(); ok {
		_, _ = fmt.Fprintf(w, "\n## %s\n\n", r.Title)
		_, _ = fmt.Fprintf(w, "**Category:** %s\n\n", r.Category)
		_, _ = fmt.Fprintf(w, "**Published:** %s\n\n", r.PublishedDate())
		_, _ = fmt.Fprintf(w, "**Updated:** %s\n\n", r.UpdatedDate())
		_, _ = fmt.Fprintf(w, "**Link:** %s\n", r.Link)
		if s := summary.Markdown(r.Summary); s != "" {
			_, _ = fmt.Fprintf(w, "\n%s\n", s)
		}
	}
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// searchOutput is the JSON shape of one evaluation.
type searchOutput struct {
	Term         string           `json:"term"`
	Categories   []string         `json:"categories"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int64            `json:"total_results"`
	Results      []core.ResultRow `json:"results"`
	Selected     *core.ResultRow  `json:"selected,omitempty"`
	Message      string           `json:"message,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func renderJSON(w io.Writer, view engine.View) error {
	out := searchOutput{
		Term:         view.State.Term,
		Categories:   view.State.Categories,
		Page:         view.Page.CurrentPage,
		TotalPages:   view.Page.TotalPages(),
		TotalResults: view.Page.TotalResults,
		Results:      view.Rows,
		Message:      view.Message(),
		Error:        view.ErrMessage(),
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	if out.Results == nil {
		out.Results = []core.ResultRow{}
	}
	if r, ok := view.Selected(); ok {
		out.Selected = &r
	}

	return writeJSON(w, out)
}

func renderCSV(w io.Writer, view engine.View) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"title", "author", "category", "published", "updated", "link"})
	for _, r := range view.Rows {
		_ = cw.Write([]string{r.Title, r.Author, r.Category, r.PublishedDate(), r.UpdatedDate(), r.Link})
	}
	cw.Flush()
	return cw.Error()
}
