// Package tui is the interactive terminal browser for the feed.
package tui

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/bookfeed/internal/browser"
	"github.com/leapstack-labs/bookfeed/internal/engine"
	"github.com/leapstack-labs/bookfeed/internal/session"
	"github.com/leapstack-labs/bookfeed/pkg/core"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

// Evaluator runs one search cycle.
type Evaluator interface {
	Evaluate(ctx context.Context, s session.State) engine.View
}

// App is the bubbletea model.
type App struct {
	eval    Evaluator
	catalog session.Catalog
	open    func(string) error

	state session.State
	view  engine.View
	seq   int

	cursor       int
	detailScroll int
	mode         mode
	width        int
	height       int

	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	loading bool
	err     error
	openErr error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Engine     Evaluator
	Catalog    session.Catalog
	Term       string
	Categories []string
	// Open launches a URL; browser.Open when nil.
	Open func(string) error
}

// NewApp builds the model with the initial filter applied.
func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, author, category or uploader..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 200
	ti.SetValue(opts.Term)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	open := opts.Open
	if open == nil {
		open = browser.Open
	}

	st := session.New().WithFilter(opts.Term, opts.Categories, opts.Catalog)
	return &App{
		eval:        opts.Engine,
		catalog:     opts.Catalog,
		open:        open,
		state:       st,
		view:        engine.View{State: st},
		searchInput: ti,
		spinner:     sp,
		filterBar:   newFilterBar(opts.Catalog),
	}
}

func (a *App) Init() tea.Cmd {
	return a.evaluateCmd()
}

// evaluateCmd captures the current state into the closure and marks the
// model as loading.
func (a *App) evaluateCmd() tea.Cmd {
	a.seq++
	a.loading = true
	seq, st, eval := a.seq, a.state, a.eval
	load := func() tea.Msg {
		return viewLoadedMsg{seq: seq, view: eval.Evaluate(context.Background(), st)}
	}
	return tea.Batch(load, a.spinner.Tick)
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.openErr = nil
		return a.handleKey(msg)

	case viewLoadedMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.loading = false
		// Row toggles never re-query, so one made while loading still stands.
		selected := a.state.Selected
		a.view = msg.view
		a.state = msg.view.State
		if selected < len(a.view.Rows) {
			a.state.Selected = selected
		} else {
			a.state.Selected = session.NoSelection
		}
		a.view.State = a.state
		a.err = msg.view.Err
		a.detailScroll = 0
		if a.cursor >= len(a.view.Rows) {
			a.cursor = max(0, len(a.view.Rows)-1)
		}
		return a, nil

	case openErrMsg:
		a.openErr = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.view.Rows)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case " ", "x":
		if a.cursor < len(a.view.Rows) {
			// Selection only gates the detail pane; the rows on screen stay valid.
			a.state = a.state.ToggleRow(a.cursor)
			a.view.State = a.state
			a.detailScroll = 0
		}
		return a, nil
	case "J", "pgdown":
		a.detailScroll++
		return a, nil
	case "K", "pgup":
		if a.detailScroll > 0 {
			a.detailScroll--
		}
		return a, nil
	case "n", "right":
		a.state = a.state.Next()
		a.cursor = 0
		return a, a.evaluateCmd()
	case "p", "left":
		if a.state.Page <= 1 {
			return a, nil
		}
		a.state = a.state.Prev()
		a.cursor = 0
		return a, a.evaluateCmd()
	case "o", "enter":
		if row, ok := a.openTarget(); ok {
			return a, a.openCmd(row.Link)
		}
		return a, nil
	case "r":
		return a, a.evaluateCmd()
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

// openTarget is the selected row, or the row under the cursor when nothing is selected.
func (a *App) openTarget() (core.ResultRow, bool) {
	if row, ok := a.view.Selected(); ok {
		return row, true
	}
	if a.cursor < len(a.view.Rows) {
		return a.view.Rows[a.cursor], true
	}
	return core.ResultRow{}, false
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue(a.state.Term)
		a.searchInput.Blur()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, a.applyFilter(a.searchInput.Value(), a.state.Categories)
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f", "q":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.left()
		return a, nil
	case "right", "l":
		a.filterBar.right()
		return a, nil
	case " ", "enter":
		if name, ok := a.filterBar.current(); ok {
			return a, a.toggleCategory(name)
		}
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if name, ok := a.filterBar.at(int(msg.String()[0] - '1')); ok {
			a.filterBar.cursor = int(msg.String()[0] - '1')
			return a, a.toggleCategory(name)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) toggleCategory(name string) tea.Cmd {
	return a.applyFilter(a.state.Term, a.catalog.Toggle(a.state.Categories, name))
}

// applyFilter runs a cycle for a new filter. An unchanged filter keeps the page.
func (a *App) applyFilter(term string, categories []string) tea.Cmd {
	a.state = a.state.WithFilter(term, categories, a.catalog)
	if a.state.FilterChanged() {
		a.cursor = 0
	}
	return a.evaluateCmd()
}

func (a *App) View() string {
	if a.width == 0 {
		return headerStyle.Render("bookfeed")
	}
	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// header, filter, status and pane borders
	contentHeight := max(a.height-1-1-1-1-2, 3)
	listWidth := int(float64(a.width) * 0.45)
	detailWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("bookfeed")
	headerRight := indicatorStyle.Render(a.view.Page.Indicator() + " ")
	if a.loading {
		headerRight = a.spinner.View() + " " + headerRight
	}
	gap := max(a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight), 0)
	header := headerLeft + strings.Repeat(" ", gap) + headerRight

	filter := a.filterBar.render(a.state.Categories, a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	empty := ""
	if !a.loading {
		empty = a.view.Message()
	}
	list := renderList(a.view.Rows, a.cursor, a.state.Selected, contentHeight, listWidth-4, empty)
	listPane := paneStyle.Width(listWidth - 2).Height(contentHeight).Render(list)

	var selected *core.ResultRow
	if row, ok := a.view.Selected(); ok {
		selected = &row
	}
	detail := renderDetail(selected, detailWidth-4, contentHeight, a.detailScroll)
	detailPane := paneStyle.Width(detailWidth - 2).Height(contentHeight).Render(detail)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", detailPane)

	status := renderStatusBar(a.view.Page.Indicator(), a.state.Term, a.state.Categories, a.width, a.mode)
	errLine := ""
	switch {
	case a.openErr != nil:
		errLine = errorStyle.Render(" " + a.openErr.Error())
	case a.err != nil:
		errLine = errorStyle.Render(" Search failed: " + a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, errLine, status)
}

func (a *App) renderHelp() string {
	title := headerStyle.Render("bookfeed")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Results") + "\n" +
		"  j/k, ↑/↓     Move cursor\n" +
		"  space, x      Select row / show details\n" +
		"  J/K           Scroll details\n" +
		"  n/p, →/←     Next / previous page\n" +
		"  o, enter      Open link in browser\n" +
		"  r             Run the search again\n\n" +
		dim.Render("Filters") + "\n" +
		"  /             Edit search term\n" +
		"  f             Category filter mode\n" +
		"  space/enter   Toggle category (filter mode)\n" +
		"  1-9           Toggle category by number\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(help))
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	}

	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
