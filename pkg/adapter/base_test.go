package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// BaseSQLAdapterStub satisfies Adapter for registry tests.
type BaseSQLAdapterStub struct {
	BaseSQLAdapter
}

func (s *BaseSQLAdapterStub) Connect(_ context.Context, _ Config) error { return nil }
func (s *BaseSQLAdapterStub) Dialect() *dialect.Dialect                { return nil }

var _ Adapter = (*BaseSQLAdapterStub)(nil)

var feedColumns = []string{"title", "author", "category", "summary", "link", "published", "updated", "uploader"}

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			assert.NoError(t, base.Close())
		})
	}
}

func TestBaseSQLAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	base := &BaseSQLAdapter{}

	assert.False(t, base.IsConnected())
	assert.ErrorIs(t, base.Ping(ctx), ErrNotConnected)

	_, err := base.QueryCount(ctx, core.QuerySpec{SQL: "SELECT 1"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = base.QueryRows(ctx, core.QuerySpec{SQL: "SELECT 1"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestBaseSQLAdapter_QueryCount(t *testing.T) {
	spec := core.QuerySpec{
		SQL:    "SELECT COUNT(*) AS total FROM feed WHERE x LIKE $1",
		Params: []core.Param{{Name: "search", Type: core.ParamString, Value: "%dune%"}},
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      int64
		errMsg    string
	}{
		{
			name: "count success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT").WithArgs("%dune%").
					WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(42)))
			},
			want: 42,
		},
		{
			name: "null count is zero",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT").WithArgs("%dune%").
					WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(nil))
			},
			want: 0,
		},
		{
			name: "count error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT").WillReturnError(assert.AnError)
			},
			errMsg: "failed to execute count query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			base := &BaseSQLAdapter{DB: db}
			got, err := base.QueryCount(context.Background(), spec)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.ErrorIs(t, err, assert.AnError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_QueryRows(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)

	spec := core.QuerySpec{
		SQL: "SELECT title FROM feed LIMIT $1 OFFSET $2",
		Params: []core.Param{
			{Name: "limit", Type: core.ParamInt64, Value: int64(10)},
			{Name: "offset", Type: core.ParamInt64, Value: int64(0)},
		},
	}

	t.Run("scans rows in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT title").WithArgs(int64(10), int64(0)).WillReturnRows(
			sqlmock.NewRows(feedColumns).
				AddRow("Dune", "Frank Herbert", "Sci-Fi, Fiction", "Desert planet.", "https://example.com/dune", published, updated, "alice").
				AddRow("Untitled", nil, nil, nil, nil, nil, nil, nil),
		)

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.QueryRows(context.Background(), spec)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, core.ResultRow{
			Title:     "Dune",
			Author:    "Frank Herbert",
			Category:  "Sci-Fi, Fiction",
			Summary:   "Desert planet.",
			Link:      "https://example.com/dune",
			Uploader:  "alice",
			Published: published,
			Updated:   updated,
		}, rows[0])

		assert.Equal(t, "Untitled", rows[1].Title)
		assert.Empty(t, rows[1].Author)
		assert.True(t, rows[1].Published.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT title").WillReturnRows(sqlmock.NewRows(feedColumns))

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.QueryRows(context.Background(), spec)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT title").WillReturnError(assert.AnError)

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.QueryRows(context.Background(), spec)
		require.Error(t, err)
		assert.Nil(t, rows)
		assert.Contains(t, err.Error(), "failed to execute query")
	})

	t.Run("row iteration error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT title").WillReturnRows(
			sqlmock.NewRows(feedColumns).
				AddRow("Dune", "", "", "", "", published, updated, "").
				RowError(0, assert.AnError),
		)

		base := &BaseSQLAdapter{DB: db}
		_, err = base.QueryRows(context.Background(), spec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error iterating rows")
	})
}
