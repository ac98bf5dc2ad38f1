package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techpulse/internal/domain"
)

const labelWidth = 20

func renderSpecSheet(sheet domain.PhoneSpecSheet, width int) string {
	valueWidth := max(width-labelWidth-2, 10)

	var b strings.Builder
	if sheet.Name != "" {
		b.WriteString(previewTitleStyle.Render(sheet.Name))
		b.WriteString("\n")
	}
	for _, row := range sheet.Rows() {
		b.WriteString(specRow(row[0], row[1], valueWidth))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func specRow(label, value string, valueWidth int) string {
	style := valueStyle
	if value == domain.Placeholder {
		style = placeholderStyle
	}
	l := labelStyle.Width(labelWidth).Render(label)
	v := style.Width(valueWidth).Render(wrapText(value, valueWidth))
	return lipgloss.JoinHorizontal(lipgloss.Top, l, "  ", v)
}

func renderComparison(res domain.ComparisonResult, width int) string {
	colWidth := max((width-labelWidth-4)/2, 10)

	head := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Width(labelWidth).Render(""), "  ",
		columnHeadStyle.Width(colWidth).Render(res.Phone1), "  ",
		columnHeadStyle.Width(colWidth).Render(res.Phone2),
	)

	lines := []string{head}
	for _, s := range res.Specs {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Width(labelWidth).Render(domain.SpecLabel(s.Feature)), "  ",
			valueStyle.Width(colWidth).Render(wrapText(s.Phone1, colWidth)), "  ",
			valueStyle.Width(colWidth).Render(wrapText(s.Phone2, colWidth)),
		))
	}

	winner := "Better phone: " + winnerStyle.Render(res.BetterPhone)
	if res.IsTie() {
		winner = "Better phone: " + winnerStyle.Render("too close to call")
	}
	lines = append(lines, "", winner)
	if res.Verdict != "" {
		lines = append(lines, "", previewBodyStyle.Render(wrapText(res.Verdict, width)))
	}
	return strings.Join(lines, "\n")
}

func renderStats(res domain.StatsResult, width int) string {
	valueWidth := max(width-labelWidth-2, 10)

	lines := []string{previewTitleStyle.Render(res.Query)}
	if len(res.Fields) == 0 {
		return lines[0] + "\n" + placeholderStyle.Render("No statistics published.")
	}
	for _, k := range res.Keys() {
		lines = append(lines, specRow(domain.StatLabel(k), res.Value(k), valueWidth))
	}
	return strings.Join(lines, "\n")
}
