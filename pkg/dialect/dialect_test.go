package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlaceholder(t *testing.T) {
	dollar := NewDialect("pg").PlaceholderStyle(PlaceholderDollar).Build()
	named := NewDialect("bq").PlaceholderStyle(PlaceholderNamed).Build()

	assert.Equal(t, "$1", dollar.FormatPlaceholder("search", 1))
	assert.Equal(t, "$3", dollar.FormatPlaceholder("limit", 3))
	assert.Equal(t, "@search", named.FormatPlaceholder("search", 1))
	assert.Equal(t, "@offset", named.FormatPlaceholder("offset", 4))
}

func TestQuoteTable(t *testing.T) {
	tests := []struct {
		name     string
		dialect  *Dialect
		path     string
		expected string
	}{
		{
			name:     "per part double quotes",
			dialect:  NewDialect("pg").Build(),
			path:     "feeds.atom_feed",
			expected: `"feeds"."atom_feed"`,
		},
		{
			name:     "escapes quote characters",
			dialect:  NewDialect("pg").Build(),
			path:     `odd"name`,
			expected: `"odd""name"`,
		},
		{
			name:     "whole path backticks",
			dialect:  NewDialect("bq").Identifiers("`", "`", "\\`", true).Build(),
			path:     "mybots-397304.audiobookbay.atom_feed",
			expected: "`mybots-397304.audiobookbay.atom_feed`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.QuoteTable(tt.path))
		})
	}
}

func TestStringLiteral(t *testing.T) {
	std := NewDialect("pg").Build()
	raw := NewDialect("bq").Strings(false, true).Build()

	assert.Equal(t, `'(?i)\b('`, std.StringLiteral(`(?i)\b(`))
	assert.Equal(t, `'it''s'`, std.StringLiteral("it's"))
	assert.Equal(t, `r'(?i)\b('`, raw.StringLiteral(`(?i)\b(`))
	assert.Equal(t, `'it''s'`, raw.StringLiteral("it's"))
}

func TestConcatAndRegex(t *testing.T) {
	op := NewDialect("pg").Strings(true, false).RegexOperator("~").Build()
	fn := NewDialect("bq").Strings(false, true).RegexFunction("REGEXP_CONTAINS").Build()

	assert.Equal(t, "('a' || $1 || 'b')", op.Concat("'a'", "$1", "'b'"))
	assert.Equal(t, "CONCAT('a', @x, 'b')", fn.Concat("'a'", "@x", "'b'"))
	assert.Equal(t, "(s ~ p)", op.RegexContains("s", "p"))
	assert.Equal(t, "REGEXP_CONTAINS(s, p)", fn.RegexContains("s", "p"))
}

func TestRegistry(t *testing.T) {
	d := NewDialect("Registry_Test").WordBoundary(`\y`).Build()
	Register(d)

	got, ok := Get("registry_test")
	require.True(t, ok)
	assert.Equal(t, `\y`, got.WordBoundary())
	assert.Contains(t, List(), "registry_test")

	_, ok = Get("nope")
	assert.False(t, ok)

	Register(NewDialect("aliased_test").Build(), "at", "AT2")
	for _, name := range []string{"aliased_test", "AT", "at2"} {
		got, ok := Get(name)
		require.True(t, ok, name)
		assert.Equal(t, "aliased_test", got.Name)
	}
	assert.NotContains(t, List(), "at")
}

func TestFormatTypedPlaceholder(t *testing.T) {
	pg := NewDialect("pg").CastParams(map[string]string{"STRING": "text"}).Build()
	plain := NewDialect("plain").Build()

	assert.Equal(t, "$2::text", pg.FormatTypedPlaceholder("search", 2, "STRING"))
	assert.Equal(t, "$3", pg.FormatTypedPlaceholder("limit", 3, "INT64"))
	assert.Equal(t, "$1", plain.FormatTypedPlaceholder("search", 1, "STRING"))
}
