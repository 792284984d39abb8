package feed

import (
	"context"
	"embed"
	"encoding/json"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/internal/summary"
	"github.com/leapstack-labs/bookfeed/internal/ui/resources"
)

// DatastarURL is the client bundle the page loads.
const DatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

//go:embed templates/*.gohtml
var templateFS embed.FS

var templates = template.Must(
	template.New("feed").
		Funcs(template.FuncMap{"static": resources.StaticPath}).
		ParseFS(templateFS, "templates/*.gohtml"),
)

// PageData is the full page shell.
type PageData struct {
	Title       string
	DatastarURL string
	Signals     string
	App         AppData
}

// AppData is the patchable results region.
type AppData struct {
	Filters   FilterData
	Rows      []RowData
	Indicator string
	Message   string
	Error     string
	HasPrev   bool
	Detail    *DetailData
}

// FilterData is the category filter bar.
type FilterData struct {
	Options []CategoryOption
}

// CategoryOption is one checkbox in the filter bar.
type CategoryOption struct {
	Name    string
	Checked bool
}

// RowData is one table row.
type RowData struct {
	Index     int
	Title     string
	Author    string
	Category  string
	Published string
	Selected  bool
}

// DetailData is the panel for the selected row.
type DetailData struct {
	Title     string
	Author    string
	Category  string
	Published string
	Updated   string
	Uploader  string
	Link      string
	Summary   template.HTML
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// Page renders the whole document.
func Page(d PageData) templ.Component { return render("page", d) }

// App renders the results region with id "app".
func App(d AppData) templ.Component { return render("app", d) }

// Filters renders the category bar with id "filters".
func Filters(d FilterData) templ.Component { return render("filters", d) }

// NewFilterData marks the categories of s that are in the catalog.
func NewFilterData(catalog session.Catalog, s session.State) FilterData {
	d := FilterData{Options: make([]CategoryOption, 0, len(catalog))}
	for _, name := range catalog {
		d.Options = append(d.Options, CategoryOption{
			Name:    name,
			Checked: containsFold(s.Categories, name),
		})
	}
	return d
}

// NewAppData turns an evaluation into template data.
func NewAppData(catalog session.Catalog, v engine.View) AppData {
	d := AppData{
		Filters:   NewFilterData(catalog, v.State),
		Indicator: v.Page.Indicator(),
		Message:   v.Message(),
		Error:     v.ErrMessage(),
		HasPrev:   v.State.Page > 1,
		Rows:      make([]RowData, 0, len(v.Rows)),
	}
	for i, row := range v.Rows {
		d.Rows = append(d.Rows, RowData{
			Index:     i,
			Title:     row.Title,
			Author:    row.Author,
			Category:  row.Category,
			Published: row.PublishedDate(),
			Selected:  i == v.State.Selected,
		})
	}
	if row, ok := v.Selected(); ok {
		d.Detail = &DetailData{
			Title:     row.Title,
			Author:    row.Author,
			Category:  row.Category,
			Published: row.PublishedDate(),
			Updated:   row.UpdatedDate(),
			Uploader:  row.Uploader,
			Link:      row.Link,
			Summary:   summaryHTML(row.Summary),
		}
	}
	return d
}

// summaryHTML returns sanitized markup for HTML summaries and escaped
// paragraphs for plain text ones.
func summaryHTML(s string) template.HTML {
	s = strings.TrimSpace(s)
	if summary.IsHTML(s) {
		return template.HTML(summary.SanitizeHTML(s)) //nolint:gosec // sanitized by bluemonday
	}
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String()) //nolint:gosec // escaped above
}

// signals is the client-side state the search form binds to.
type signals struct {
	Term       string   `json:"term"`
	Categories []string `json:"categories"`
}

func signalsJSON(s session.State) string {
	sig := signals{Term: s.Term, Categories: s.Categories}
	if sig.Categories == nil {
		sig.Categories = []string{}
	}
	b, err := json.Marshal(sig)
	if err != nil {
		return `{"term":"","categories":[]}`
	}
	return string(b)
}

func containsFold(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
