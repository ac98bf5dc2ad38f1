package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techpulse/internal/domain"
)

func renderPreview(item *domain.AINewsItem, width, height, scroll int) string {
	if item == nil {
		return centerText("Select a story", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(item.Title)
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(item.Description, contentWidth))
	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + item.URL)

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, "", link)
	return clipLines(content, height, scroll)
}

// clipLines scrolls content by scroll lines and pads or cuts it to height.
func clipLines(content string, height, scroll int) string {
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
