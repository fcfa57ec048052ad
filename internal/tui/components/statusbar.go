package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar with key hints on the left and
// plan status on the right. warn switches the right side to the warning color.
func RenderStatusBar(width int, hints, status string, warn bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	right := base
	if warn {
		right = lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	}

	left := " " + hints
	status += " "
	gap := width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	return base.Render(left+strings.Repeat(" ", gap)) + right.Render(status)
}
