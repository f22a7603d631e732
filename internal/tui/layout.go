package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight    = 1
	statusBarHeight = 1

	minWidth  = 20
	minHeight = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	filterBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// viewportSize returns the scroll area left after the header and status
// bar.
func viewportSize(totalW, totalH int) (int, int) {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}
	return totalW, totalH - headerHeight - statusBarHeight
}

func renderHeader(title string, f SenderFilter, width int) string {
	text := " " + title
	if f.Sender != "" {
		text += " " + filterBadgeStyle.Render("["+f.Sender+"]")
	}
	return headerStyle.Width(width).Render(text)
}

func renderStatusBar(f SenderFilter, count int, percent float64, bindings []key.Binding) string {
	var help []string
	for _, b := range bindings {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	left := fmt.Sprintf("%s | %s | %3.0f%%", f.Label(), pluralize(count, "message"), percent*100)
	return statusBarStyle.Render(left) + "  " + dimStyle.Render(strings.Join(help, " • "))
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
