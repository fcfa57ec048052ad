package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/strategy"
	"github.com/payoffplan/payoff/internal/tui/components"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

// comparisonRow returns the comparison entry of the active strategy.
func (a App) comparisonRow() (model.StrategyComparison, bool) {
	if a.cmp == nil {
		return model.StrategyComparison{}, false
	}
	for i, k := range strategy.Kinds {
		if k == a.kind && i < len(a.cmp.Rows) {
			return a.cmp.Rows[i], true
		}
	}
	return model.StrategyComparison{}, false
}

func (a App) renderCompareTab(cw int) string {
	t := theme.Active
	if a.cmp == nil {
		return components.ContentCard("Compare", "No comparison yet. Press r to reload.", cw)
	}

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	best := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var table strings.Builder
	table.WriteString(header.Render(fmt.Sprintf("  %-12s%10s%12s%14s%14s%14s",
		"Strategy", "Months", "Debt free", "Interest", "Total paid", "vs best")))
	for i, row := range a.cmp.Rows {
		s := row.Summary
		marker := "  "
		if strategy.Kinds[i] == a.kind {
			marker = "▸ "
		}
		vsBest := "-"
		debtFree := cli.FormatMonthYear(s.PayoffDate)
		if s.Complete {
			vsBest = cli.FormatDelta(row.InterestDelta)
		} else {
			debtFree = "never"
		}
		line := fmt.Sprintf("%s%-12s%10s%12s%14s%14s%14s", marker, strategy.Kinds[i], cli.FormatMonths(s.Months),
			debtFree, cli.FormatMoney(s.TotalInterest), cli.FormatMoney(s.TotalPaid), vsBest)

		style := cell
		if row.Recommended {
			style = best
			line += "  best"
		}
		table.WriteString("\n")
		table.WriteString(style.Render(line))
	}
	table.WriteString("\n\n")
	table.WriteString(dim.Render("Press s to switch strategy. The recommendation is the cheapest complete plan."))

	sparkW := max(components.CardInnerWidth(cw)-14, 10)
	var curves strings.Builder
	for i, plan := range a.cmp.Plans {
		balances := make([]float64, len(plan.Periods))
		for j, p := range plan.Periods {
			balances[j] = p.TotalBalance
		}
		color := t.Accent
		if i < len(a.cmp.Rows) && a.cmp.Rows[i].Recommended {
			color = t.Green
		}
		if i > 0 {
			curves.WriteString("\n")
		}
		curves.WriteString(cell.Render(fmt.Sprintf("%-12s  ", strategy.Kinds[i])))
		curves.WriteString(components.Sparkline(cli.Downsample(balances, sparkW), color))
	}

	return components.ContentCard(fmt.Sprintf("Strategies at %s extra/month", cli.FormatMoney(a.extra)), table.String(), cw) +
		"\n" + components.ContentCard("Balance over time", curves.String(), cw)
}
