package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/matheuskafuri/techpulse/internal/browser"
	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/fetch"
)

// Fetcher is the slice of the orchestrator the TUI drives.
type Fetcher interface {
	FetchCategory(ctx context.Context, c domain.Category, forceRefresh bool) (domain.Record, error)
	Compare(ctx context.Context, phone1, phone2 string) (domain.ComparisonResult, error)
	SearchPhone(ctx context.Context, query string) (domain.PhoneSpecSheet, error)
	QueryStats(ctx context.Context, query string) (domain.StatsResult, error)
}

type App struct {
	fetcher Fetcher
	session *fetch.Session
	logger  *zap.Logger
	timeout time.Duration

	views  []fetch.View
	inputs map[fetch.View]*textinput.Model

	cursor   int
	scroll   int
	typing   bool
	showHelp bool
	notice   string

	refreshFirst bool

	width   int
	height  int
	spinner spinner.Model
	openURL func(string) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Fetcher Fetcher
	Logger  *zap.Logger
	// Refresh forces a backend call for the first view instead of the cache.
	Refresh bool
	// Timeout bounds each operation; zero means none.
	Timeout time.Duration
}

var inputPlaceholders = map[fetch.View]string{
	fetch.ViewCompare: "Pixel 10 vs iPhone 17",
	fetch.ViewSearch:  "Phone name, e.g. Galaxy S26 Ultra",
	fetch.ViewStats:   "Phone name, e.g. iPhone 17 Pro",
}

func NewApp(opts RunOpts) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	inputs := make(map[fetch.View]*textinput.Model, len(inputPlaceholders))
	for v, ph := range inputPlaceholders {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.Prompt = inputPromptStyle.Render("> ")
		ti.CharLimit = 120
		inputs[v] = &ti
	}

	return &App{
		fetcher:      opts.Fetcher,
		session:      fetch.NewSession(fetch.ViewAINews),
		logger:       logger,
		timeout:      opts.Timeout,
		views:        fetch.Views,
		inputs:       inputs,
		refreshFirst: opts.Refresh,
		spinner:      sp,
		openURL:      browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	force := a.refreshFirst
	a.refreshFirst = false
	return a.start(a.session.Active(), force)
}

func (a *App) active() fetch.View { return a.session.Active() }

// start begins an operation for v and returns the command running it.
func (a *App) start(v fetch.View, force bool) tea.Cmd {
	run, ok := a.operation(v, force)
	if !ok {
		return nil
	}
	ticket := a.session.Begin(v)
	timeout := a.timeout
	a.logger.Debug("operation started", zap.String("view", string(v)), zap.Bool("force", force))

	return tea.Batch(func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		rec, err := run(ctx)
		return resultMsg{ticket: ticket, record: rec, err: err}
	}, a.spinner.Tick)
}

type operation func(ctx context.Context) (domain.Record, error)

func (a *App) operation(v fetch.View, force bool) (operation, bool) {
	f := a.fetcher
	if c, ok := v.Category(); ok {
		return func(ctx context.Context) (domain.Record, error) {
			return f.FetchCategory(ctx, c, force)
		}, true
	}

	in, ok := a.inputs[v]
	if !ok {
		return nil, false
	}
	query := in.Value()
	switch v {
	case fetch.ViewCompare:
		p1, p2 := splitComparison(query)
		return func(ctx context.Context) (domain.Record, error) {
			return f.Compare(ctx, p1, p2)
		}, true
	case fetch.ViewSearch:
		return func(ctx context.Context) (domain.Record, error) {
			return f.SearchPhone(ctx, query)
		}, true
	case fetch.ViewStats:
		return func(ctx context.Context) (domain.Record, error) {
			return f.QueryStats(ctx, query)
		}, true
	}
	return nil, false
}

var comparisonSep = regexp.MustCompile(`(?i)\s+(?:vs\.?|versus)\s+|\s*,\s*`)

// splitComparison reads "A vs B" (or "A, B") into its two phone names.
func splitComparison(s string) (string, string) {
	parts := comparisonSep.Split(strings.TrimSpace(s), 2)
	if len(parts) < 2 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func (a *App) navigate(v fetch.View) tea.Cmd {
	if v == a.active() {
		return nil
	}
	if in, ok := a.inputs[a.active()]; ok {
		in.Blur()
	}
	a.session.Navigate(v)
	a.cursor, a.scroll = 0, 0
	a.notice = ""

	if in, ok := a.inputs[v]; ok {
		a.typing = a.session.State(v).Record == nil
		if a.typing {
			return in.Focus()
		}
		return nil
	}
	a.typing = false

	st := a.session.State(v)
	switch st.Status {
	case fetch.StatusIdle:
		return a.start(v, false)
	case fetch.StatusLoading:
		return a.spinner.Tick
	}
	return nil
}

func (a *App) shiftTab(delta int) tea.Cmd {
	idx := 0
	for i, v := range a.views {
		if v == a.active() {
			idx = i
		}
	}
	idx = (idx + delta + len(a.views)) % len(a.views)
	return a.navigate(a.views[idx])
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.notice = ""
		return a.handleKey(msg)

	case resultMsg:
		if !a.session.Finish(msg.ticket, msg.record, msg.err) {
			a.logger.Debug("discarded stale result", zap.String("view", string(msg.ticket.View)))
			return a, nil
		}
		if msg.err != nil {
			a.logger.Warn("operation failed", zap.String("view", string(msg.ticket.View)), zap.Error(msg.err))
		}
		if list, ok := msg.record.(domain.AINewsList); ok && a.cursor >= len(list.Items) {
			a.cursor = max(0, len(list.Items)-1)
		}
		a.scroll = 0
		return a, nil

	case browserErrMsg:
		a.notice = msg.err.Error()
		return a, nil

	case spinner.TickMsg:
		if a.session.State(a.active()).Status == fetch.StatusLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "tab":
		return a, a.shiftTab(1)
	case "shift+tab":
		return a, a.shiftTab(-1)
	}

	if a.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			a.showHelp = false
		}
		return a, nil
	}

	if a.typing {
		return a.handleInputKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "right", "l":
		return a, a.shiftTab(1)
	case "left", "h":
		return a, a.shiftTab(-1)
	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.views) {
			return a, a.navigate(a.views[idx])
		}
		return a, nil
	case "j", "down":
		if a.newsList() != nil && a.cursor < len(a.newsList().Items)-1 {
			a.cursor++
			a.scroll = 0
		} else if a.newsList() == nil {
			a.scroll++
		}
		return a, nil
	case "k", "up":
		if a.newsList() != nil && a.cursor > 0 {
			a.cursor--
			a.scroll = 0
		} else if a.newsList() == nil && a.scroll > 0 {
			a.scroll--
		}
		return a, nil
	case "r":
		return a, a.refresh()
	case "o", "enter":
		if item := a.selectedItem(); item != nil {
			return a, a.openBrowserCmd(item.URL)
		}
		if msg.String() == "enter" {
			return a, a.start(a.active(), false)
		}
		return a, nil
	case "/", "i":
		if in, ok := a.inputs[a.active()]; ok {
			a.typing = true
			return a, in.Focus()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := a.inputs[a.active()]
	switch msg.String() {
	case "esc":
		a.typing = false
		in.Blur()
		return a, nil
	case "enter":
		a.typing = false
		in.Blur()
		return a, a.start(a.active(), false)
	}

	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return a, cmd
}

// refresh re-runs the active view; cacheable views bypass the cache.
// A load already in flight is superseded and its result discarded.
func (a *App) refresh() tea.Cmd {
	v := a.active()
	if _, ok := v.Category(); ok {
		return a.start(v, true)
	}
	if in, ok := a.inputs[v]; ok && strings.TrimSpace(in.Value()) != "" {
		return a.start(v, false)
	}
	return nil
}

func (a *App) newsList() *domain.AINewsList {
	if a.active() != fetch.ViewAINews {
		return nil
	}
	list, ok := a.session.State(fetch.ViewAINews).Record.(domain.AINewsList)
	if !ok {
		return nil
	}
	return &list
}

func (a *App) selectedItem() *domain.AINewsItem {
	list := a.newsList()
	if list == nil || a.cursor >= len(list.Items) {
		return nil
	}
	return &list.Items[a.cursor]
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return browserErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  techpulse")
	}
	if a.showHelp {
		return a.renderHelp()
	}

	v := a.active()
	st := a.session.State(v)

	headerLeft := headerStyle.Render("techpulse")
	headerRight := headerDateStyle.Render(time.Now().Format("Jan 2"))
	headerGap := max(a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight), 0)
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	tabs := renderTabs(a.views, v, a.width)

	rows := []string{header, tabs}
	if in, ok := a.inputs[v]; ok {
		rows = append(rows, " "+in.View())
	}

	bodyHeight := max(a.height-len(rows)-1-2, 3) // status bar + borders
	rows = append(rows, a.renderBody(v, st, bodyHeight))

	status := st
	if a.notice != "" {
		status.Status, status.Err = fetch.StatusError, a.notice
	}
	rows = append(rows, renderStatusBar(status, a.hints(v), a.spinner.View(), a.width))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderBody(v fetch.View, st fetch.ViewState, height int) string {
	innerW := max(a.width-4, 10)

	if list, ok := st.Record.(domain.AINewsList); ok && v == fetch.ViewAINews {
		return a.renderNews(list, height)
	}

	var content string
	switch rec := st.Record.(type) {
	case domain.PhoneSpecSheet:
		content = renderSpecSheet(rec, innerW)
	case domain.ComparisonResult:
		content = renderComparison(rec, innerW)
	case domain.StatsResult:
		content = renderStats(rec, innerW)
	default:
		content = centerText(a.emptyMessage(v, st), innerW, height)
	}
	return bodyPaneStyle.Width(a.width - 2).Height(height).Render(clipLines(content, height, a.scroll))
}

func (a *App) renderNews(list domain.AINewsList, height int) string {
	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	listContent := renderList(list.Items, a.cursor, height, listWidth-4)
	listPane := listPaneActiveStyle.Width(listWidth - 2).Height(height).Render(listContent)

	var selected *domain.AINewsItem
	if a.cursor < len(list.Items) {
		selected = &list.Items[a.cursor]
	}
	previewContent := renderPreview(selected, previewWidth-4, height, a.scroll)
	previewPane := listPaneStyle.Width(previewWidth - 2).Height(height).Render(previewContent)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)
}

func (a *App) emptyMessage(v fetch.View, st fetch.ViewState) string {
	switch st.Status {
	case fetch.StatusLoading:
		return "Asking the AI service..."
	case fetch.StatusError:
		return st.Err
	}
	switch v {
	case fetch.ViewCompare:
		return "Type two phones separated by \"vs\" and press enter"
	case fetch.ViewSearch, fetch.ViewStats:
		return "Type a phone name and press enter"
	}
	return "Nothing loaded yet. Press r to fetch."
}

func (a *App) hints(v fetch.View) string {
	if a.typing {
		return "enter run  esc cancel  tab next view"
	}
	switch v {
	case fetch.ViewAINews:
		return "j/k move  o open  r refresh  ? help  q quit"
	case fetch.ViewPhoneNews:
		return "j/k scroll  r refresh  ? help  q quit"
	}
	return "/ edit  r rerun  j/k scroll  ? help  q quit"
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("techpulse")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Views") + "\n" +
		"  tab, ←/→, 1-5  Switch view\n\n" +
		dim.Render("News") + "\n" +
		"  j/k, ↑/↓       Move through stories\n" +
		"  o, enter       Open story in browser\n" +
		"  r              Refresh, bypassing the cache\n\n" +
		dim.Render("Compare, Search, Stats") + "\n" +
		"  /, i           Edit the query\n" +
		"  enter          Run the query\n" +
		"  r              Run the last query again\n" +
		"  esc            Stop editing\n\n" +
		dim.Render("General") + "\n" +
		"  ?              Toggle this help\n" +
		"  q, ctrl+c      Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
