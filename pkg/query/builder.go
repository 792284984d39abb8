// Package query builds the parameterized count and page queries for the feed table.
//
// User text never reaches the SQL string: the search term and the category
// selection are bound as parameters, and only the configured table path is
// written into the statement (quoted by the dialect).
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// Parameter names bound by the builder.
const (
	ParamSearch     = "search"
	ParamCategories = "categories"
	ParamLimit      = "limit"
	ParamOffset     = "offset"
)

// Feed table columns.
const (
	colTitle      = "title"
	colAuthors    = "authors"
	colCategories = "categories"
	colSummary    = "summary"
	colLink       = "link"
	colPublished  = "publication_time"
	colUpdated    = "update_time"
	colUploader   = "user"
)

// sharedByPattern matches the uploader banner that opens most summaries.
const sharedByPattern = `(?i)^Shared by:[^\n]*\s*\n+`

// Input is the filter state the builder translates into SQL.
type Input struct {
	Term       string
	Categories []string
	Page       int
}

// Specs holds the two queries one evaluation needs.
type Specs struct {
	Count core.QuerySpec
	Data  core.QuerySpec
}

// NormalizeTerm trims and lowercases a raw search term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// SearchPattern returns the LIKE pattern bound for a term, or "" when the term is blank.
func SearchPattern(term string) string {
	n := NormalizeTerm(term)
	if n == "" {
		return ""
	}
	return "%" + n + "%"
}

// CategoryPattern returns the regex alternation bound for a category selection.
// Each member is quoted so names always match literally.
func CategoryPattern(categories []string) string {
	quoted := make([]string, 0, len(categories))
	for _, c := range categories {
		quoted = append(quoted, regexp.QuoteMeta(c))
	}
	return strings.Join(quoted, "|")
}

// Build translates the input into count and data queries for the given table.
// It has no side effects: identical inputs give identical specs.
func Build(d *dialect.Dialect, table string, in Input) Specs {
	b := &binder{dialect: d}
	where := buildWhere(d, b, in)
	from := d.QuoteTable(table)

	countParams := append([]core.Param(nil), b.params...)
	count := core.QuerySpec{
		SQL:    fmt.Sprintf("SELECT COUNT(*) AS total\nFROM %s\n%s", from, where),
		Params: countParams,
	}

	page := core.NewPageInfo(0, in.Page)
	limit := b.bind(ParamLimit, core.ParamInt64, int64(core.ResultsPerPage))
	offset := b.bind(ParamOffset, core.ParamInt64, int64(page.Offset()))

	var sb strings.Builder
	sb.WriteString("SELECT\n")
	sb.WriteString(strings.Join(projection(d), ",\n"))
	sb.WriteString("\nFROM ")
	sb.WriteString(from)
	sb.WriteString("\n")
	sb.WriteString(where)
	sb.WriteString("\nORDER BY ")
	sb.WriteString(d.QuoteIdentifier(colUpdated))
	sb.WriteString(" DESC\nLIMIT ")
	sb.WriteString(limit)
	sb.WriteString(" OFFSET ")
	sb.WriteString(offset)

	return Specs{
		Count: count,
		Data:  core.QuerySpec{SQL: sb.String(), Params: b.params},
	}
}

func projection(d *dialect.Dialect) []string {
	q := d.QuoteIdentifier
	summary := fmt.Sprintf("TRIM(REGEXP_REPLACE(%s, %s, ''))", q(colSummary), d.StringLiteral(sharedByPattern))
	return []string{
		"  " + q(colTitle) + " AS title",
		"  " + joinArray(d, colAuthors) + " AS author",
		"  " + joinArray(d, colCategories) + " AS category",
		"  " + summary + " AS summary",
		"  " + q(colLink) + " AS link",
		"  " + q(colPublished) + " AS published",
		"  " + q(colUpdated) + " AS updated",
		"  " + q(colUploader) + " AS uploader",
	}
}

func buildWhere(d *dialect.Dialect, b *binder, in Input) string {
	q := d.QuoteIdentifier
	clauses := []string{"WHERE " + q(colTitle) + " IS NOT NULL"}

	if len(in.Categories) > 0 {
		ph := b.bind(ParamCategories, core.ParamString, CategoryPattern(in.Categories))
		wb := d.WordBoundary()
		pattern := d.Concat(d.StringLiteral(`(?i)`+wb+`(`), ph, d.StringLiteral(`)`+wb))
		clauses = append(clauses, "  AND "+d.RegexContains(joinArray(d, colCategories), pattern))
	}

	if pattern := SearchPattern(in.Term); pattern != "" {
		ph := b.bind(ParamSearch, core.ParamString, pattern)
		fields := []string{
			q(colTitle),
			joinArray(d, colAuthors),
			joinArray(d, colCategories),
			q(colUploader),
		}
		likes := make([]string, len(fields))
		for i, f := range fields {
			likes[i] = fmt.Sprintf("LOWER(%s) LIKE %s", f, ph)
		}
		clauses = append(clauses, "  AND (\n    "+strings.Join(likes, "\n    OR ")+"\n  )")
	}

	return strings.Join(clauses, "\n")
}

func joinArray(d *dialect.Dialect, col string) string {
	return fmt.Sprintf("ARRAY_TO_STRING(%s, ', ')", d.QuoteIdentifier(col))
}

// binder accumulates parameters and hands out their placeholders.
type binder struct {
	dialect *dialect.Dialect
	params  []core.Param
}

func (b *binder) bind(name string, typ core.ParamType, value any) string {
	b.params = append(b.params, core.Param{Name: name, Type: typ, Value: value})
	return b.dialect.FormatTypedPlaceholder(name, len(b.params), string(typ))
}
