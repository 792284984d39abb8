// Package dialect provides SQL dialect configuration for the query builder.
//
// A Dialect captures the handful of syntax differences the feed queries care
// about: placeholders, identifier quoting, string literals, concatenation and
// case-insensitive regular expression matching. Concrete dialects are registered
// from pkg/adapters/*/dialect packages.
package dialect

import (
	"strconv"
	"strings"
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderDollar uses $1, $2, etc. (PostgreSQL, DuckDB).
	PlaceholderDollar PlaceholderStyle = iota
	// PlaceholderNamed uses @name (BigQuery).
	PlaceholderNamed
)

// RegexStyle selects how a regex-contains predicate is spelled.
type RegexStyle int

const (
	// RegexFunction calls a two-argument function: FN(subject, pattern).
	RegexFunction RegexStyle = iota
	// RegexOperator uses an infix operator: subject OP pattern.
	RegexOperator
)

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `
	QuoteEnd string // End quote character (usually same as Quote)
	Escape   string // Escape sequence for QuoteEnd inside a name: "", \`
	// WholePath quotes a dotted path as one identifier (`p.d.t`) instead of per part.
	WholePath bool
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	DefaultSchema string
	Placeholder   PlaceholderStyle

	// ConcatOperator is true when || concatenates strings; false uses CONCAT(...).
	ConcatOperator bool
	// RawStrings is true when r'...' literals are available (no escape processing).
	RawStrings bool

	regexStyle   RegexStyle
	regexToken   string // function name or operator
	wordBoundary string
	paramCasts   map[string]string // parameter type -> SQL type
}

// FormatPlaceholder returns the placeholder for a parameter.
// index is 1-based and used by positional styles; name is used by named styles.
func (d *Dialect) FormatPlaceholder(name string, index int) string {
	switch d.Placeholder {
	case PlaceholderNamed:
		return "@" + name
	default:
		return "$" + strconv.Itoa(index)
	}
}

// FormatTypedPlaceholder returns the placeholder for a parameter of the given
// type, with an explicit cast when the dialect cannot infer parameter types.
func (d *Dialect) FormatTypedPlaceholder(name string, index int, typ string) string {
	ph := d.FormatPlaceholder(name, index)
	if cast, ok := d.paramCasts[typ]; ok {
		return ph + "::" + cast
	}
	return ph
}

// QuoteIdentifier quotes a single identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteTable quotes a possibly dotted table path.
func (d *Dialect) QuoteTable(path string) string {
	if d.Identifiers.WholePath {
		return d.QuoteIdentifier(path)
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// StringLiteral renders s as a SQL string literal.
// Raw literals are used where supported so regex backslashes survive untouched.
func (d *Dialect) StringLiteral(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	if d.RawStrings && !strings.Contains(s, "'") {
		return "r'" + s + "'"
	}
	return "'" + escaped + "'"
}

// Concat joins SQL expressions into one string expression.
func (d *Dialect) Concat(exprs ...string) string {
	if d.ConcatOperator {
		return "(" + strings.Join(exprs, " || ") + ")"
	}
	return "CONCAT(" + strings.Join(exprs, ", ") + ")"
}

// RegexContains renders a predicate true when pattern matches anywhere in subject.
func (d *Dialect) RegexContains(subject, pattern string) string {
	if d.regexStyle == RegexOperator {
		return "(" + subject + " " + d.regexToken + " " + pattern + ")"
	}
	return d.regexToken + "(" + subject + ", " + pattern + ")"
}

// WordBoundary returns the regex token matching a word boundary.
func (d *Dialect) WordBoundary() string {
	return d.wordBoundary
}

// Builder provides a fluent API for defining dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect starts a dialect definition with ANSI defaults.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: IdentifierConfig{
				Quote:    `"`,
				QuoteEnd: `"`,
				Escape:   `""`,
			},
			Placeholder:    PlaceholderDollar,
			ConcatOperator: true,
			regexStyle:     RegexFunction,
			regexToken:     "REGEXP_MATCHES",
			wordBoundary:   `\b`,
		},
	}
}

// Identifiers sets identifier quoting.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, wholePath bool) *Builder {
	b.dialect.Identifiers = IdentifierConfig{
		Quote:     quote,
		QuoteEnd:  quoteEnd,
		Escape:    escape,
		WholePath: wholePath,
	}
	return b
}

// DefaultSchema sets the default schema name.
func (b *Builder) DefaultSchema(schema string) *Builder {
	b.dialect.DefaultSchema = schema
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// Strings configures concatenation and raw literal support.
func (b *Builder) Strings(concatOperator, rawStrings bool) *Builder {
	b.dialect.ConcatOperator = concatOperator
	b.dialect.RawStrings = rawStrings
	return b
}

// RegexFunction spells regex-contains as fn(subject, pattern).
func (b *Builder) RegexFunction(fn string) *Builder {
	b.dialect.regexStyle = RegexFunction
	b.dialect.regexToken = fn
	return b
}

// RegexOperator spells regex-contains as subject op pattern.
func (b *Builder) RegexOperator(op string) *Builder {
	b.dialect.regexStyle = RegexOperator
	b.dialect.regexToken = op
	return b
}

// WordBoundary sets the regex flavor's word boundary token.
func (b *Builder) WordBoundary(token string) *Builder {
	b.dialect.wordBoundary = token
	return b
}

// CastParams casts placeholders of the given parameter types to SQL types.
func (b *Builder) CastParams(casts map[string]string) *Builder {
	b.dialect.paramCasts = casts
	return b
}

// Build returns the configured dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
