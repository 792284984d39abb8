package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/bookfeed/internal/cli/output"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/spf13/cobra"
)

// SearchOptions holds options for the search command.
type SearchOptions struct {
	Categories []string
	Page       int
	Select     int
	Format     string
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search [TERM...]",
		Short: "Search the audiobook feed",
		Long: `Search the audiobook feed and print one page of results.

The term is matched case-insensitively against title, author, category and
uploader. Categories narrow the results to books tagged with any of them.
Results are ordered by most recently updated, ten per page.`,
		Example: `  # Latest uploads
  bookfeed search

  # Free-text search
  bookfeed search dune

  # Filter by category, second page
  bookfeed search -c Sci-Fi -c Fiction --page 2

  # Show the detail panel for the third row
  bookfeed search herbert --select 3

  # Machine-readable output
  bookfeed search dune -f json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Categories, "category", "c", nil, "Category filter (repeatable)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number (10 results per page)")
	cmd.Flags().IntVar(&opts.Select, "select", 0, "Show details for row N of the page (1-based)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md (default from --output)")

	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return getConfig().Catalog(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runSearch(cmd *cobra.Command, args []string, opts *SearchOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	catalog := cmdCtx.Catalog()
	for _, c := range opts.Categories {
		if !catalog.Contains(c) {
			cmdCtx.Renderer.Warning(fmt.Sprintf("ignoring unknown category %q (see 'bookfeed categories')", c))
		}
	}

	state := searchState(strings.Join(args, " "), opts, catalog)
	view := cmdCtx.Engine.Evaluate(cmd.Context(), state)

	format := resolveFormat(opts.Format, cmdCtx.Renderer.EffectiveMode())
	if err := renderView(cmd.OutOrStdout(), view, format); err != nil {
		return err
	}
	if view.Err != nil {
		return fmt.Errorf("search failed: %w", view.Err)
	}
	return nil
}

// searchState builds the state a one-shot search evaluates.
func searchState(term string, opts *SearchOptions, catalog session.Catalog) session.State {
	s := session.New().WithFilter(term, opts.Categories, catalog).Commit()
	s.Page = max(opts.Page, 1)
	if opts.Select > 0 {
		s = s.ToggleRow(opts.Select - 1)
	}
	return s
}

// resolveFormat picks the render format from the --format flag or the output mode.
func resolveFormat(format string, mode output.Mode) string {
	if format != "" {
		return format
	}
	switch mode {
	case output.ModeJSON:
		return "json"
	case output.ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}
