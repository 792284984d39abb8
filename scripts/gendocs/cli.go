package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/bookfeed/internal/cli"
)

// commandDoc is what one command page shows, extracted from cobra.
type commandDoc struct {
	Name     string
	Short    string
	Long     string
	Usage    string
	Aliases  []string
	Example  string
	Flags    [][]string
	Global   [][]string
	Siblings []string
}

// generateCLIDocs writes index.md plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := visibleCommands(root)

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), cliIndex(root, cmds), 0600); err != nil {
		return fmt.Errorf("failed to write index.md: %w", err)
	}
	log.Printf("  Generated index.md")

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name()
	}
	for _, c := range cmds {
		doc := newCommandDoc(c, names)
		if err := os.WriteFile(filepath.Join(outDir, doc.Name+".md"), commandPage(doc), 0600); err != nil {
			return fmt.Errorf("failed to write %s.md: %w", doc.Name, err)
		}
		log.Printf("  Generated %s.md", doc.Name)
	}
	return nil
}

func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range root.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "__complete" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func newCommandDoc(c *cobra.Command, all []string) commandDoc {
	doc := commandDoc{
		Name:    c.Name(),
		Short:   c.Short,
		Long:    c.Long,
		Usage:   c.UseLine(),
		Aliases: c.Aliases,
		Example: cleanExample(c.Example),
	}
	if doc.Long == "" {
		doc.Long = c.Short
	}
	if !strings.HasPrefix(doc.Usage, "bookfeed") {
		doc.Usage = "bookfeed " + doc.Usage
	}
	if c.HasLocalFlags() {
		doc.Flags = flagRows(c.LocalFlags())
	}
	if c.HasInheritedFlags() {
		doc.Global = flagRows(c.InheritedFlags())
	}
	for _, n := range all {
		if n != doc.Name {
			doc.Siblings = append(doc.Siblings, n)
		}
	}
	return doc
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for bookfeed")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("bookfeed searches the audiobook feed from the command line, an interactive shell, a terminal browser or a local web page.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/bookfeed/cmd/bookfeed@latest")

	w.Header(2, "Commands")
	rows := make([][]string, 0, len(cmds))
	for _, c := range cmds {
		rows = append(rows, []string{fmt.Sprintf("[%s](/cli/%s)", InlineCode(c.Name()), c.Name()), cleanDescription(c.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Any config key can be set with a BOOKFEED_ variable; a double underscore separates nested keys. A .env file is read first.")
	w.Table([]string{"Variable", "Description"}, [][]string{
		{InlineCode("BOOKFEED_TARGET__TYPE"), "Query engine: bigquery, postgres, duckdb"},
		{InlineCode("BOOKFEED_TARGET__PROJECT"), "Google Cloud project holding the feed dataset"},
		{InlineCode("BOOKFEED_TARGET__CREDENTIALS_FILE"), "Service account key file (default: Application Default Credentials)"},
		{InlineCode("BOOKFEED_ENVIRONMENT"), "Environment whose target overrides the base target"},
		{InlineCode("BOOKFEED_UI__SESSION_SECRET"), "Key signing the web UI session cookie"},
		{InlineCode("BOOKFEED_LOG_FORMAT"), "Log format on stderr: text or json"},
	})
	w.Paragraph("Command-line flags take precedence over environment variables.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including a failed search (details on stderr)"},
	})

	return w.Bytes()
}

func commandPage(doc commandDoc) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(doc.Name, doc.Short)
	w.GeneratedMarker()

	w.Header(1, doc.Name)
	w.Paragraph(doc.Long)

	w.Header(2, "Usage")
	w.CodeBlock("bash", doc.Usage)

	if len(doc.Aliases) > 0 {
		aliases := make([]string, len(doc.Aliases))
		for i, a := range doc.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Header(2, "Aliases")
		w.BulletList(aliases)
	}
	if len(doc.Flags) > 0 {
		w.Header(2, "Options")
		w.Table(flagHeaders, doc.Flags)
	}
	if len(doc.Global) > 0 {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, doc.Global)
	}
	if doc.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", doc.Example)
	}
	if len(doc.Siblings) > 0 {
		links := make([]string, len(doc.Siblings))
		for i, s := range doc.Siblings {
			links[i] = fmt.Sprintf("[%s](/cli/%s)", s, s)
		}
		w.Header(2, "See Also")
		w.Paragraph(strings.Join(links, " · "))
	}
	return w.Bytes()
}

var flagHeaders = []string{"Option", "Short", "Default", "Description"}

func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		switch {
		case def == "" || def == "[]" || def == "0":
			def = ""
		case f.Value.Type() == "string":
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	return rows
}

// cleanExample strips the indentation shared by all non-blank lines.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(example)
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
