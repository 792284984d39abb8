package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bookfeed/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "browse [TERM...]",
		Short: "Browse the feed in an interactive terminal UI",
		Long: `Open a full-screen terminal browser over the audiobook feed.

Type / to search, f to pick categories, space to select a row and show its
details, n and p to page, o to open the link in your browser, ? for help.`,
		Example: `  bookfeed browse
  bookfeed browse tolkien -c Fiction`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, strings.Join(args, " "), categories)
		},
	}

	cmd.Flags().StringArrayVarP(&categories, "category", "c", nil, "Initial category filter (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return getConfig().Catalog(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runBrowse(cmd *cobra.Command, term string, categories []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Renderer.IsTTY() {
		return errors.New("browse needs an interactive terminal; use 'bookfeed search' instead")
	}

	return tui.Run(tui.RunOpts{
		Engine:     cmdCtx.Engine,
		Catalog:    cmdCtx.Catalog(),
		Term:       term,
		Categories: categories,
	})
}
