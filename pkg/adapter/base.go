package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/bookfeed/pkg/core"
)

// ErrNotConnected is returned when a query runs before Connect.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Ping, QueryCount and QueryRows implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	return b.DB.PingContext(ctx)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// QueryCount executes a count query and scans its single cell.
func (b *BaseSQLAdapter) QueryCount(ctx context.Context, spec core.QuerySpec) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}
	var total sql.NullInt64
	if err := b.DB.QueryRowContext(ctx, spec.SQL, spec.Args()...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to execute count query: %w", err)
	}
	return total.Int64, nil
}

// QueryRows executes a data query and scans every row into a core.ResultRow.
// Columns must follow the builder projection order.
func (b *BaseSQLAdapter) QueryRows(ctx context.Context, spec core.QuerySpec) ([]core.ResultRow, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	rows, err := b.DB.QueryContext(ctx, spec.SQL, spec.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []core.ResultRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func scanRow(rows *sql.Rows) (core.ResultRow, error) {
	var (
		title, author, category, summary, link, uploader sql.NullString
		published, updated                               sql.NullTime
	)
	if err := rows.Scan(&title, &author, &category, &summary, &link, &published, &updated, &uploader); err != nil {
		return core.ResultRow{}, fmt.Errorf("failed to scan row: %w", err)
	}
	return core.ResultRow{
		Title:     title.String,
		Author:    author.String,
		Category:  category.String,
		Summary:   summary.String,
		Link:      link.String,
		Uploader:  uploader.String,
		Published: published.Time,
		Updated:   updated.Time,
	}, nil
}
