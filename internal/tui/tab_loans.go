package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/tui/components"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

func (a App) renderLoansTab(cw int) string {
	t := theme.Active
	loans := a.res.Loans

	widths := components.LayoutRow(cw, 2)
	listW, detailW := widths[0], widths[1]
	if cw < 120 {
		listW, detailW = cw, cw
	}
	inner := components.CardInnerWidth(listW)
	nameW := max(inner-11-12-22, 8)

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	var list strings.Builder
	list.WriteString(header.Render(fmt.Sprintf("%-*s%11s%12s  %s", nameW, "Loan", "Rate", "Balance", "Paid down")))
	for i, l := range loans {
		style := cell
		if i == a.loanCursor {
			style = selected
		}
		list.WriteString("\n")
		list.WriteString(style.Render(fmt.Sprintf("%-*s%11s%12s  ", nameW, truncStr(l.Name, nameW-1),
			cli.FormatRate(l.InterestRate), cli.FormatMoney(l.CurrentBalance))))
		list.WriteString(components.PaidBar(l.Principal-l.CurrentBalance, l.Principal, 14))
	}

	listCard := components.ContentCard(fmt.Sprintf("Loans (%d) in %s order", len(loans), a.kind), list.String(), listW)
	detail := components.ContentCard("Details", a.renderLoanDetail(), detailW)
	if cw < 120 {
		return listCard + "\n" + detail
	}
	return components.CardRow([]string{listCard, detail})
}

func (a App) renderLoanDetail() string {
	t := theme.Active
	if a.loanCursor >= len(a.res.Loans) {
		return ""
	}
	l := a.res.Loans[a.loanCursor]

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	good := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	rows := [][2]string{
		{"Name", l.Name},
		{"Lender", orDash(l.Lender)},
		{"Principal", cli.FormatMoney(l.Principal)},
		{"Balance", cli.FormatMoney(l.CurrentBalance)},
		{"Rate", cli.FormatRate(l.InterestRate)},
		{"Minimum", cli.FormatMoney(l.MonthlyMinPayment) + "/mo"},
		{"First due", cli.FormatDate(l.FirstDueDate)},
		{"Paid so far", cli.FormatMoney(l.TotalPaid)},
	}
	if l.LoanTermMonths > 0 {
		rows = append(rows, [2]string{"Term", cli.FormatMonths(l.LoanTermMonths)})
	}
	if !l.ForbearanceStart.IsZero() && !l.ForbearanceEnd.IsZero() {
		rows = append(rows, [2]string{"Forbearance",
			cli.FormatDate(l.ForbearanceStart) + " to " + cli.FormatDate(l.ForbearanceEnd)})
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(label.Render(fmt.Sprintf("%-13s", r[0])))
		b.WriteString(value.Render(r[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.loanCursor < len(a.loanStats) {
		s := a.loanStats[a.loanCursor]
		switch {
		case l.Retired():
			b.WriteString(good.Render("Already paid off"))
		case s.PayoffPeriod > 0:
			b.WriteString(good.Render(fmt.Sprintf("Paid off %s (month %d)", cli.FormatMonthYear(s.PayoffDate), s.PayoffPeriod)))
			b.WriteString("\n")
			b.WriteString(label.Render("Plan pays " + cli.FormatMoney(s.TotalPaid)))
		default:
			b.WriteString(warn.Render("Not paid off within the plan"))
		}
	}
	if l.InForbearance(model.Today()) {
		b.WriteString("\n")
		b.WriteString(warn.Render("In forbearance today: no interest accrues"))
	}
	if notes := strings.TrimSpace(l.Notes); notes != "" {
		b.WriteString("\n\n")
		b.WriteString(label.Render(notes))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
