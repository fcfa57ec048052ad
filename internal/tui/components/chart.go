package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a single row of block characters.
func Sparkline(values []float64, color lipgloss.Color) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// BalanceChart renders a column chart of values, one column per value after
// downsampling to fit width. The y axis is labeled in short money form and
// labels, when given, mark the first and last column.
func BalanceChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 20 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}
	step := niceStep(peak / float64(height))
	top := math.Ceil(peak/step) * step

	axisW := max(len(cli.FormatMoneyShort(top)), len(cli.FormatMoneyShort(top*float64((height+1)/2)/float64(height)))) + 1
	plotW := width - axisW - 1
	first, last := "", ""
	if len(labels) == len(values) {
		first, last = labels[0], labels[len(labels)-1]
	}
	values = cli.Downsample(values, plotW)

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		hi := top * float64(row) / float64(height)
		lo := top * float64(row-1) / float64(height)

		label := ""
		if row == height || row == (height+1)/2 {
			label = cli.FormatMoneyShort(hi)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		var line strings.Builder
		for _, v := range values {
			switch {
			case v >= hi:
				line.WriteRune('█')
			case v > lo:
				idx := int((v - lo) / (hi - lo) * 8)
				line.WriteRune(eighths[max(1, min(idx, 8))])
			default:
				line.WriteRune(' ')
			}
		}
		b.WriteString(bar.Render(line.String()))
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", len(values)))))
	if first != "" {
		gap := len(values) - lipgloss.Width(first) - lipgloss.Width(last)
		foot := first
		if gap > 0 {
			foot += strings.Repeat(" ", gap) + last
		}
		b.WriteString("\n")
		b.WriteString(axis.Render(strings.Repeat(" ", axisW+1) + foot))
	}
	return b.String()
}

// niceStep rounds rough up to 1, 2 or 5 times a power of ten.
func niceStep(rough float64) float64 {
	if rough <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac <= 1:
		return base
	case frac <= 2:
		return 2 * base
	case frac <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}
