// Package bigquery provides a BigQuery adapter for the published feed table.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/leapstack-labs/bookfeed/pkg/adapter"
	bqdialect "github.com/leapstack-labs/bookfeed/pkg/adapters/bigquery/dialect"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
)

// rowIterator is the part of *bigquery.RowIterator the adapter reads.
type rowIterator interface {
	Next(dst any) error
}

// reader submits a parameterized query and returns its rows.
type reader interface {
	Read(ctx context.Context, sql string, params []bigquery.QueryParameter) (rowIterator, error)
}

// Adapter implements the adapter.Adapter interface for BigQuery.
type Adapter struct {
	Logger *slog.Logger
	Cfg    core.AdapterConfig

	client *bigquery.Client
	reader reader
}

// New creates a new BigQuery adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{Logger: logger}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "bigquery"
}

// Dialect returns the GoogleSQL dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return bqdialect.BigQuery
}

// Connect creates a BigQuery client for the configured project.
// Credentials come from CredentialsFile when set, otherwise from the
// application default credentials.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	project := cfg.Project
	if project == "" {
		project = bigquery.DetectProjectID
	}

	a.Logger.Debug("creating bigquery client",
		slog.String("project", project),
		slog.String("location", cfg.Location))

	client, err := bigquery.NewClient(ctx, project, clientOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create bigquery client: %w", err)
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}

	a.client = client
	a.reader = clientReader{client: client}
	a.Cfg = cfg
	return nil
}

// clientOptions maps target settings onto client options.
// Options: endpoint overrides the API endpoint, no_auth=true skips credentials (emulators).
func clientOptions(cfg adapter.Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if endpoint := cfg.Options["endpoint"]; endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if cfg.Options["no_auth"] == "true" {
		opts = append(opts, option.WithoutAuthentication())
	}
	return opts
}

// Close releases the client.
func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	a.Logger.Debug("closing bigquery client")
	err := a.client.Close()
	a.client = nil
	a.reader = nil
	return err
}

// Ping runs a trivial query to verify credentials and project access.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.QueryCount(ctx, core.QuerySpec{SQL: "SELECT 1"})
	return err
}

// QueryCount runs a count query and returns its single integer cell.
func (a *Adapter) QueryCount(ctx context.Context, spec core.QuerySpec) (int64, error) {
	it, err := a.read(ctx, spec)
	if err != nil {
		return 0, err
	}

	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		if errors.Is(err, iterator.Done) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read count: %w", err)
	}
	if len(row) == 0 || row[0] == nil {
		return 0, nil
	}
	total, ok := row[0].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", row[0])
	}
	return total, nil
}

// feedRecord mirrors the builder projection.
type feedRecord struct {
	Title     bigquery.NullString    `bigquery:"title"`
	Author    bigquery.NullString    `bigquery:"author"`
	Category  bigquery.NullString    `bigquery:"category"`
	Summary   bigquery.NullString    `bigquery:"summary"`
	Link      bigquery.NullString    `bigquery:"link"`
	Published bigquery.NullTimestamp `bigquery:"published"`
	Updated   bigquery.NullTimestamp `bigquery:"updated"`
	Uploader  bigquery.NullString    `bigquery:"uploader"`
}

func (r feedRecord) toRow() core.ResultRow {
	return core.ResultRow{
		Title:     r.Title.StringVal,
		Author:    r.Author.StringVal,
		Category:  r.Category.StringVal,
		Summary:   r.Summary.StringVal,
		Link:      r.Link.StringVal,
		Uploader:  r.Uploader.StringVal,
		Published: r.Published.Timestamp,
		Updated:   r.Updated.Timestamp,
	}
}

// QueryRows runs a data query and returns the projected feed rows in order.
func (a *Adapter) QueryRows(ctx context.Context, spec core.QuerySpec) ([]core.ResultRow, error) {
	it, err := a.read(ctx, spec)
	if err != nil {
		return nil, err
	}

	var out []core.ResultRow
	for {
		var rec feedRecord
		err := it.Next(&rec)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		out = append(out, rec.toRow())
	}
	return out, nil
}

// EstimateBytes dry-runs a query and reports the bytes it would scan.
func (a *Adapter) EstimateBytes(ctx context.Context, spec core.QuerySpec) (int64, error) {
	if a.client == nil {
		return 0, adapter.ErrNotConnected
	}
	q := a.client.Query(spec.SQL)
	q.Parameters = queryParameters(spec.Params)
	q.DryRun = true

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to dry-run query: %w", err)
	}
	status := job.LastStatus()
	if status == nil || status.Statistics == nil {
		return 0, nil
	}
	return status.Statistics.TotalBytesProcessed, nil
}

func (a *Adapter) read(ctx context.Context, spec core.QuerySpec) (rowIterator, error) {
	if a.reader == nil {
		return nil, adapter.ErrNotConnected
	}
	it, err := a.reader.Read(ctx, spec.SQL, queryParameters(spec.Params))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return it, nil
}

// queryParameters converts bound params into named BigQuery parameters.
// Go string and int64 values map to STRING and INT64.
func queryParameters(params []core.Param) []bigquery.QueryParameter {
	out := make([]bigquery.QueryParameter, len(params))
	for i, p := range params {
		out[i] = bigquery.QueryParameter{Name: p.Name, Value: p.Value}
	}
	return out
}

type clientReader struct {
	client *bigquery.Client
}

func (r clientReader) Read(ctx context.Context, sql string, params []bigquery.QueryParameter) (rowIterator, error) {
	q := r.client.Query(sql)
	q.Parameters = params
	return q.Read(ctx)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)

var _ adapter.Estimator = (*Adapter)(nil)
