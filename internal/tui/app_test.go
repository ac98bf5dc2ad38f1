package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/errs"
	"github.com/matheuskafuri/techpulse/internal/fetch"
)

type fakeFetcher struct {
	mu       sync.Mutex
	news     domain.AINewsList
	phone    domain.PhoneSpecSheet
	newsErr  error
	forced   []bool
	compared [][2]string
}

func (f *fakeFetcher) FetchCategory(_ context.Context, c domain.Category, force bool) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced = append(f.forced, force)
	if c == domain.CategoryPhoneNews {
		return f.phone, nil
	}
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return f.news, nil
}

func (f *fakeFetcher) Compare(_ context.Context, p1, p2 string) (domain.ComparisonResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compared = append(f.compared, [2]string{p1, p2})
	if p1 == "" || p2 == "" {
		return domain.ComparisonResult{}, fetch.ErrEmptyQuery
	}
	return domain.ComparisonResult{
		Phone1: p1, Phone2: p2,
		Specs:       []domain.PhoneSpec{{Feature: "display", Phone1: "6.3in", Phone2: "6.1in"}},
		Verdict:     "Close.",
		BetterPhone: p1,
	}, nil
}

func (f *fakeFetcher) SearchPhone(_ context.Context, q string) (domain.PhoneSpecSheet, error) {
	return domain.PhoneSpecSheet{Name: q, Specs: map[string]string{}}, nil
}

func (f *fakeFetcher) QueryStats(_ context.Context, q string) (domain.StatsResult, error) {
	return domain.StatsResult{Query: q, Fields: map[string]any{"units_sold": "5M"}}, nil
}

func newTestFetcher() *fakeFetcher {
	return &fakeFetcher{
		news: domain.AINewsList{Items: []domain.AINewsItem{
			{Title: "First", Description: "one", URL: "https://example.com/1"},
			{Title: "Second", Description: "two", URL: "https://example.com/2"},
		}},
		phone: domain.PhoneSpecSheet{Name: "Pixel 10", Specs: map[string]string{"display": "6.3in"}},
	}
}

// results runs an operation command and returns the outcomes it produced,
// skipping spinner ticks.
func results(cmd tea.Cmd) []resultMsg {
	if cmd == nil {
		return nil
	}
	var out []resultMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, results(c)...)
		}
	case resultMsg:
		out = append(out, msg)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(f *fakeFetcher) *App {
	app := NewApp(RunOpts{Fetcher: f})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func TestInitLoadsFirstView(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)

	msgs := results(app.Init())
	if len(msgs) != 1 {
		t.Fatalf("Init produced %d results, want 1", len(msgs))
	}
	if st := app.session.State(fetch.ViewAINews); st.Status != fetch.StatusLoading {
		t.Errorf("status before result = %v, want loading", st.Status)
	}
	app.Update(msgs[0])

	st := app.session.State(fetch.ViewAINews)
	if st.Status != fetch.StatusSuccess {
		t.Fatalf("status = %v, want success", st.Status)
	}
	if !strings.Contains(app.View(), "First") {
		t.Error("news list not rendered")
	}
}

func TestRefreshFlagForcesFirstLoadOnly(t *testing.T) {
	f := newTestFetcher()
	app := NewApp(RunOpts{Fetcher: f, Refresh: true})

	for _, m := range results(app.Init()) {
		app.Update(m)
	}
	_, cmd := app.Update(key("2"))
	for _, m := range results(cmd) {
		app.Update(m)
	}

	if len(f.forced) != 2 || !f.forced[0] || f.forced[1] {
		t.Errorf("forced = %v, want [true false]", f.forced)
	}
}

func TestLateResultForLeftViewIsDiscarded(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)

	newsCmd := app.Init()
	_, phoneCmd := app.Update(key("2"))

	for _, m := range results(phoneCmd) {
		app.Update(m)
	}
	for _, m := range results(newsCmd) {
		app.Update(m)
	}

	if app.active() != fetch.ViewPhoneNews {
		t.Fatalf("active view = %s, want phone_news", app.active())
	}
	phone := app.session.State(fetch.ViewPhoneNews)
	if phone.Status != fetch.StatusSuccess || phone.Record.Kind() != domain.KindPhoneSpecSheet {
		t.Errorf("phone view = %+v", phone)
	}
	if news := app.session.State(fetch.ViewAINews); news.Record != nil {
		t.Errorf("late ai_news result was applied: %+v", news)
	}
	if v := app.View(); !strings.Contains(v, "Pixel 10") || strings.Contains(v, "Second") {
		t.Error("phone view shows the wrong record")
	}
}

func TestRefreshWhileLoadingSupersedesFirstLoad(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)

	initCmd := app.Init()
	_, refreshCmd := app.Update(key("r"))
	if refreshCmd == nil {
		t.Fatal("refresh while loading produced no command")
	}

	stale := results(initCmd)
	f.mu.Lock()
	f.news = domain.AINewsList{Items: []domain.AINewsItem{
		{Title: "Fresh", Description: "new", URL: "https://example.com/fresh"},
	}}
	f.mu.Unlock()
	fresh := results(refreshCmd)

	for _, m := range stale {
		app.Update(m)
	}
	if st := app.session.State(fetch.ViewAINews); st.Status != fetch.StatusLoading {
		t.Fatalf("status after superseded result = %v, want loading", st.Status)
	}
	for _, m := range fresh {
		app.Update(m)
	}

	st := app.session.State(fetch.ViewAINews)
	list, ok := st.Record.(domain.AINewsList)
	if st.Status != fetch.StatusSuccess || !ok || len(list.Items) != 1 || list.Items[0].Title != "Fresh" {
		t.Errorf("state = %+v, want the refreshed list", st)
	}
	if len(f.forced) != 2 || f.forced[0] || !f.forced[1] {
		t.Errorf("forced = %v, want [false true]", f.forced)
	}
}

func TestFailedRefreshKeepsStories(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)
	for _, m := range results(app.Init()) {
		app.Update(m)
	}

	f.newsErr = &errs.UpstreamError{Provider: "gemini", Err: errors.New("503")}
	_, cmd := app.Update(key("r"))
	for _, m := range results(cmd) {
		app.Update(m)
	}

	st := app.session.State(fetch.ViewAINews)
	if st.Status != fetch.StatusError {
		t.Fatalf("status = %v, want error", st.Status)
	}
	v := app.View()
	if !strings.Contains(v, "First") {
		t.Error("previous stories should stay visible")
	}
	if !strings.Contains(v, "Press r to retry") {
		t.Error("error message missing from status bar")
	}
	if !f.forced[len(f.forced)-1] {
		t.Error("r should bypass the cache")
	}
}

func TestCompareRunsOnEnter(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)
	for _, m := range results(app.Init()) {
		app.Update(m)
	}

	app.Update(key("3"))
	if !app.typing {
		t.Fatal("compare view should start in input mode")
	}
	app.Update(key("Pixel 10 vs iPhone 17"))
	_, cmd := app.Update(key("enter"))
	for _, m := range results(cmd) {
		app.Update(m)
	}

	if len(f.compared) != 1 || f.compared[0] != [2]string{"Pixel 10", "iPhone 17"} {
		t.Fatalf("compared = %v", f.compared)
	}
	st := app.session.State(fetch.ViewCompare)
	res, ok := st.Record.(domain.ComparisonResult)
	if !ok || res.BetterPhone != "Pixel 10" {
		t.Errorf("compare state = %+v", st)
	}
}

func TestCompareNeedsTwoPhones(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)
	app.Update(key("3"))
	app.Update(key("Pixel 10"))
	_, cmd := app.Update(key("enter"))
	for _, m := range results(cmd) {
		app.Update(m)
	}

	st := app.session.State(fetch.ViewCompare)
	if st.Status != fetch.StatusError || st.Err != "Enter a phone name first." {
		t.Errorf("state = %+v", st)
	}
}

func TestOpenSelectedStory(t *testing.T) {
	f := newTestFetcher()
	app := newTestApp(f)
	var opened string
	app.openURL = func(u string) error {
		opened = u
		return nil
	}
	for _, m := range results(app.Init()) {
		app.Update(m)
	}

	app.Update(key("j"))
	_, cmd := app.Update(key("o"))
	if cmd == nil {
		t.Fatal("o returned no command")
	}
	cmd()
	if opened != "https://example.com/2" {
		t.Errorf("opened %q", opened)
	}
}

func TestSplitComparison(t *testing.T) {
	tests := []struct {
		in, a, b string
	}{
		{"Pixel 10 vs iPhone 17", "Pixel 10", "iPhone 17"},
		{"Pixel 10 VS. iPhone 17", "Pixel 10", "iPhone 17"},
		{"Galaxy S26 versus Pixel 10", "Galaxy S26", "Pixel 10"},
		{"Galaxy S26, Pixel 10", "Galaxy S26", "Pixel 10"},
		{"  Pixel 10  ", "Pixel 10", ""},
	}
	for _, tt := range tests {
		a, b := splitComparison(tt.in)
		if a != tt.a || b != tt.b {
			t.Errorf("splitComparison(%q) = %q, %q; want %q, %q", tt.in, a, b, tt.a, tt.b)
		}
	}
}
