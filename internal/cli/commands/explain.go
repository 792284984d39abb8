package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/bookfeed/internal/cli/output"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/pkg/adapter"
	"github.com/leapstack-labs/bookfeed/pkg/core"
	"github.com/leapstack-labs/bookfeed/pkg/dialect"
	"github.com/spf13/cobra"
)

// ExplainOptions holds options for the explain command.
type ExplainOptions struct {
	Categories []string
	Page       int
	Estimate   bool
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain [TERM...]",
		Short: "Print the SQL a search would send",
		Long: `Print the count and page queries a search would send, with their bound
parameters. Nothing is executed unless --estimate is given, in which case
engines that support dry runs report how many bytes the queries would scan.`,
		Example: `  bookfeed explain dune -c Sci-Fi
  bookfeed explain --page 3 -o json
  bookfeed explain herbert --estimate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Categories, "category", "c", nil, "Category filter (repeatable)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&opts.Estimate, "estimate", false, "Dry-run the queries and report bytes scanned (BigQuery)")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string, opts *ExplainOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cfg := cmdCtx.Cfg

	d, ok := dialect.Get(cfg.Target.Type)
	if !ok {
		return &adapter.UnknownAdapterError{Type: cfg.Target.Type, Available: adapter.ListAdapters()}
	}

	state := searchState(strings.Join(args, " "), &SearchOptions{Categories: opts.Categories, Page: opts.Page}, cmdCtx.Catalog())
	specs := engine.Plan(d, cfg.Target.QualifiedTable(), state)

	plans := []explainedQuery{
		{Kind: "count", Spec: specs.Count},
		{Kind: "page", Spec: specs.Data},
	}

	if opts.Estimate {
		if err := estimate(cmd, plans); err != nil {
			return err
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return writeJSON(r.Writer(), plans)
	}
	for _, p := range plans {
		renderExplained(r, p)
	}
	return nil
}

type explainedQuery struct {
	Kind  string         `json:"kind"`
	Spec  core.QuerySpec `json:"query"`
	Bytes *int64         `json:"bytes_processed,omitempty"`
}

func estimate(cmd *cobra.Command, plans []explainedQuery) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Engine.Connect(cmd.Context()); err != nil {
		return err
	}
	est, ok := cmdCtx.Engine.Adapter().(adapter.Estimator)
	if !ok {
		cmdCtx.Renderer.Warning(fmt.Sprintf("%s does not support dry runs; skipping estimate", cmdCtx.Cfg.Target.Type))
		return nil
	}
	for i := range plans {
		n, err := est.EstimateBytes(cmd.Context(), plans[i].Spec)
		if err != nil {
			return fmt.Errorf("failed to estimate %s query: %w", plans[i].Kind, err)
		}
		plans[i].Bytes = &n
	}
	return nil
}

func renderExplained(r *output.Renderer, p explainedQuery) {
	title := strings.ToUpper(p.Kind[:1]) + p.Kind[1:] + " query"
	r.Header(2, title)
	if r.EffectiveMode() == output.ModeText {
		r.Println(r.Styles().Code.Render(p.Spec.SQL))
	} else {
		r.Println(output.FormatCodeBlock("sql", p.Spec.SQL))
	}
	r.Println("")
	renderParams(r.Writer(), p.Spec.Params, r.EffectiveMode())
	if p.Bytes != nil {
		r.KeyValue("Bytes processed", humanize.Bytes(uint64(max(*p.Bytes, 0)))) //nolint:gosec // clamped
	}
	r.Println("")
}

func renderParams(w io.Writer, params []core.Param, mode output.Mode) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if mode == output.ModeText {
		t.SetStyle(table.StyleLight)
	}
	t.AppendHeader(table.Row{"Param", "Type", "Value"})
	for _, p := range params {
		t.AppendRow(table.Row{p.Name, string(p.Type), fmt.Sprintf("%v", p.Value)})
	}
	if mode == output.ModeText {
		t.Render()
		return
	}
	t.RenderMarkdown()
}
