package commands

import (
	"github.com/leapstack-labs/bookfeed/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories searches can filter by",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			r := cmdCtx.Renderer
			catalog := cmdCtx.Cfg.Catalog()

			switch r.EffectiveMode() {
			case output.ModeJSON:
				return writeJSON(r.Writer(), catalog)
			case output.ModeMarkdown:
				r.Header(1, "Categories")
				r.Println("")
				for _, c := range catalog {
					r.Println("- " + c)
				}
			default:
				for _, c := range catalog {
					r.Println(c)
				}
			}
			return nil
		},
	}
}
