package testutil

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	"github.com/stretchr/testify/require"
)

// FeedTable is the table NewFeedDB creates, qualified with DuckDB's default schema.
const FeedTable = "main.atom_feed"

// Book is one feed record for seeding.
type Book struct {
	Title      string
	Authors    []string
	Categories []string
	Summary    string
	Link       string
	Uploader   string
	Updated    time.Time
	Published  time.Time
}

// SampleBooks is a small feed covering search, category and ordering cases.
// Updated times descend in slice order.
func SampleBooks() []Book {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return []Book{
		{Title: "Dune", Authors: []string{"Frank Herbert"}, Categories: []string{"Sci-Fi", "Fiction"},
			Summary: "<p>Spice and <b>sand</b>.</p>", Link: "https://example.com/dune", Uploader: "alice",
			Updated: base, Published: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Gone Girl", Authors: []string{"Gillian Flynn"}, Categories: []string{"Mystery", "Fiction"},
			Summary: "A marriage gone wrong.", Link: "https://example.com/gone-girl", Uploader: "bob",
			Updated: base.Add(-24 * time.Hour), Published: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Sapiens", Authors: []string{"Yuval Noah Harari"}, Categories: []string{"Non-Fiction"},
			Summary: "A brief history.", Link: "https://example.com/sapiens", Uploader: "carol",
			Updated: base.Add(-48 * time.Hour)},
		{Title: "Hyperion", Authors: []string{"Dan Simmons"}, Categories: []string{"Sci-Fi"},
			Summary: "Pilgrims.", Link: "https://example.com/hyperion", Uploader: "dune_fan",
			Updated: base.Add(-72 * time.Hour), Published: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
}

// NewFeedDB writes books to a DuckDB file in a temp dir and returns its path.
// The connection is closed before returning so an adapter can open the file.
func NewFeedDB(t testing.TB, books ...Book) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feed.duckdb")
	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(`CREATE TABLE atom_feed (
		title VARCHAR,
		authors VARCHAR[],
		categories VARCHAR[],
		summary VARCHAR,
		link VARCHAR,
		update_time TIMESTAMP,
		publication_time TIMESTAMP,
		"user" VARCHAR
	)`)
	require.NoError(t, err)

	for _, b := range books {
		var published any
		if !b.Published.IsZero() {
			published = b.Published
		}
		_, err := db.Exec(
			`INSERT INTO atom_feed VALUES (?, string_split(?, '|'), string_split(?, '|'), ?, ?, ?, ?, ?)`,
			b.Title, strings.Join(b.Authors, "|"), strings.Join(b.Categories, "|"),
			b.Summary, b.Link, b.Updated, published, b.Uploader,
		)
		require.NoError(t, err)
	}
	return path
}
