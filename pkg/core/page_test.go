package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageInfo_TotalPages(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		expected int
	}{
		{"no results", 0, 1},
		{"partial page", 7, 1},
		{"one full page", 10, 2},
		{"exact multiple keeps trailing page", 20, 3},
		{"spills into next page", 21, 3},
		{"negative clamps to zero", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageInfo(tt.total, 1)
			assert.Equal(t, tt.expected, p.TotalPages())
		})
	}
}

func TestPageInfo_Offset(t *testing.T) {
	assert.Equal(t, 0, NewPageInfo(100, 1).Offset())
	assert.Equal(t, 10, NewPageInfo(100, 2).Offset())
	assert.Equal(t, 90, NewPageInfo(100, 10).Offset())
	assert.Equal(t, 0, NewPageInfo(100, 0).Offset())
}

func TestPageInfo_Indicator(t *testing.T) {
	p := NewPageInfo(42, 2)
	assert.Equal(t, "Page 2 of 5 | Total Results: 42", p.Indicator())
	assert.Equal(t, 10, p.ResultsPerPage)
}

func TestQuerySpec_ParamAndArgs(t *testing.T) {
	spec := QuerySpec{
		SQL: "SELECT 1",
		Params: []Param{
			{Name: "search", Type: ParamString, Value: "%dune%"},
			{Name: "limit", Type: ParamInt64, Value: int64(10)},
		},
	}

	p, ok := spec.Param("search")
	assert.True(t, ok)
	assert.Equal(t, "%dune%", p.Value)

	_, ok = spec.Param("missing")
	assert.False(t, ok)

	assert.Equal(t, []any{"%dune%", int64(10)}, spec.Args())
}

func TestTargetConfig_QualifiedTable(t *testing.T) {
	tests := []struct {
		name     string
		target   TargetConfig
		expected string
	}{
		{
			name:     "bigquery from parts",
			target:   TargetConfig{Type: "bigquery", Project: "mybots-397304", Dataset: "audiobookbay", Table: "atom_feed"},
			expected: "mybots-397304.audiobookbay.atom_feed",
		},
		{
			name:     "bigquery already qualified",
			target:   TargetConfig{Type: "BigQuery", Project: "other", Table: "p.d.t"},
			expected: "p.d.t",
		},
		{
			name:     "postgres with schema",
			target:   TargetConfig{Type: "postgres", Schema: "feeds"},
			expected: "feeds.atom_feed",
		},
		{
			name:     "duckdb bare table",
			target:   TargetConfig{Type: "duckdb", Table: "atom_feed"},
			expected: "atom_feed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.target.QualifiedTable())
		})
	}
}

func TestResultRow_Dates(t *testing.T) {
	var r ResultRow
	assert.Empty(t, r.PublishedDate())
	assert.Empty(t, r.UpdatedDate())
}
