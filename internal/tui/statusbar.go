package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techpulse/internal/fetch"
)

var tabTitles = map[fetch.View]string{
	fetch.ViewAINews:    "AI News",
	fetch.ViewPhoneNews: "Phone News",
	fetch.ViewCompare:   "Compare",
	fetch.ViewSearch:    "Search",
	fetch.ViewStats:     "Stats",
}

func renderTabs(views []fetch.View, active fetch.View, width int) string {
	parts := make([]string, 0, len(views))
	for i, v := range views {
		style := tabInactiveStyle
		if v == active {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", i+1, tabTitles[v])))
	}
	row := strings.Join(parts, " ")
	return lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(row)
}

func renderStatusBar(st fetch.ViewState, hints string, spin string, width int) string {
	var left string
	switch st.Status {
	case fetch.StatusLoading:
		left = spin + " loading..."
	case fetch.StatusError:
		left = errorStyle.Render(st.Err)
	case fetch.StatusSuccess:
		left = "updated " + relativeTime(st.UpdatedAt)
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
