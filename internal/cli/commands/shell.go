package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/bookfeed/internal/browser"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/spf13/cobra"
)

const shellPrompt = "bookfeed> "

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	Format string
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive search session",
		Long: `Start an interactive search session.

Type a search term to run it; an empty line re-runs the current search.
Dot-commands page through results, toggle categories and select a row
to show its details. Type .help for the list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")

	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	sh := newShell(cmdCtx.Engine.Evaluate, cmdCtx.Catalog(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     shellHistoryFile(),
		AutoComplete:    newShellCompleter(cmdCtx.Catalog()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bookfeed shell (%s)\n", cmdCtx.Engine.Table())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type a search term, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	sh.evaluate(ctx)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sh.handle(ctx, line) {
			break
		}
	}
	return nil
}

func shellHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "bookfeed")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}

// shell is one interactive session: its state and the last view rendered from it.
type shell struct {
	state   session.State
	view    engine.View
	catalog session.Catalog
	eval    func(context.Context, session.State) engine.View
	open    func(string) error
	out     io.Writer
	errOut  io.Writer
	format  string
}

func newShell(eval func(context.Context, session.State) engine.View, catalog session.Catalog, out, errOut io.Writer, format string) *shell {
	return &shell{
		state:   session.New(),
		catalog: catalog,
		eval:    eval,
		open:    browser.Open,
		out:     out,
		errOut:  errOut,
		format:  format,
	}
}

// evaluate runs one cycle for the current state and renders it.
func (s *shell) evaluate(ctx context.Context) {
	s.view = s.eval(ctx, s.state)
	s.state = s.view.State
	s.render()
}

func (s *shell) render() {
	if err := renderView(s.out, s.view, s.format); err != nil {
		s.errorf("%v", err)
	}
	_, _ = fmt.Fprintln(s.out)
}

func (s *shell) errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.errOut, "Error: "+format+"\n", a...)
}

// handle processes one input line and reports whether the session should end.
func (s *shell) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ".") {
		if line == "" {
			s.evaluate(ctx)
			return false
		}
		s.state = s.state.WithFilter(line, s.state.Categories, s.catalog)
		s.evaluate(ctx)
		return false
	}

	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.out)

	case ".next":
		s.state = s.state.Next()
		s.evaluate(ctx)

	case ".prev":
		s.state = s.state.Prev()
		s.evaluate(ctx)

	case ".cat":
		if arg == "" {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .cat <category>")
			return false
		}
		if !s.catalog.Contains(arg) {
			s.errorf("unknown category %q (type .categories for the list)", arg)
			return false
		}
		s.state = s.state.WithFilter(s.state.Term, s.catalog.Toggle(s.state.Categories, canonical(s.catalog, arg)), s.catalog)
		s.evaluate(ctx)

	case ".clear-cats":
		s.state = s.state.WithFilter(s.state.Term, nil, s.catalog)
		s.evaluate(ctx)

	case ".term":
		s.state = s.state.WithFilter(arg, s.state.Categories, s.catalog)
		s.evaluate(ctx)

	case ".select":
		if len(s.view.Rows) == 0 {
			s.errorf("no rows on this page")
			return false
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(s.view.Rows) {
			s.errorf("usage: .select <row number 1-%d>", len(s.view.Rows))
			return false
		}
		s.state = s.state.ToggleRow(n - 1)
		s.view.State = s.state
		s.render()

	case ".open":
		s.view.State = s.state
		row, ok := s.view.Selected()
		if !ok {
			s.errorf("no row selected (use .select N)")
			return false
		}
		if err := s.open(row.Link); err != nil {
			s.errorf("%v", err)
		}

	case ".categories":
		for _, c := range s.catalog {
			_, _ = fmt.Fprintf(s.out, "  %s %s\n", checkbox(containsFold(s.state.Categories, c)), c)
		}

	default:
		s.errorf("unknown command: %s (type .help for commands)", command)
	}
	return false
}

func canonical(c session.Catalog, name string) string {
	if f := c.Filter([]string{name}); len(f) == 1 {
		return f[0]
	}
	return name
}

func containsFold(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  <term>            Search for term (resets to page 1)
  .term [text]      Set or clear the search term
  .next / .prev     Next or previous page
  .cat <name>       Toggle a category filter
  .clear-cats       Remove all category filters
  .categories       List categories and which are active
  .select <n>       Toggle the detail view for row n
  .open             Open the selected row's link in a browser
  .help             Show this help message
  .quit / .exit     Exit the shell

Tips:
  - An empty line re-runs the current search
  - Use arrow keys to navigate history
  - Tab completes commands and category names
`
	_, _ = fmt.Fprintln(w, help)
}

// newShellCompleter creates a readline completer for dot-commands and categories.
func newShellCompleter(catalog session.Catalog) *readline.PrefixCompleter {
	cats := make([]readline.PrefixCompleterInterface, 0, len(catalog))
	for _, c := range catalog {
		cats = append(cats, readline.PcItem(c))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".term"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".cat", cats...),
		readline.PcItem(".clear-cats"),
		readline.PcItem(".categories"),
		readline.PcItem(".select"),
		readline.PcItem(".open"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
