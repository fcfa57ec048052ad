package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/tui/theme"
)

func clampPct(pct float64) float64 {
	return max(0, min(pct, 1))
}

// ProgressBar renders a block bar followed by its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampPct(pct)
	filled := int(pct * float64(width))

	fill := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return fill.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled)) +
		label.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForPaid colors payoff progress: red when little is paid, green near done.
func ColorForPaid(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return t.Green
	case pct >= 0.4:
		return t.Yellow
	case pct >= 0.15:
		return t.Orange
	default:
		return t.Red
	}
}

// PaidBar renders how much of principal has been paid off, as a solid bar
// with the percentage.
func PaidBar(paid, principal float64, width int) string {
	t := theme.Active
	pct := 0.0
	if principal > 0 {
		pct = clampPct(paid / principal)
	}
	color := ColorForPaid(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	label := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)
	return bar.ViewAs(pct) + space.Render(" ") + label.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
