package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/importer"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/tui/components"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

// planState tracks the schedule cursor and the row editor.
type planState struct {
	cursor  int
	offset  int // first visible row
	editing bool
	input   textinput.Model
}

func (p *planState) move(delta, n int) {
	p.cursor = max(0, min(p.cursor+delta, n-1))
}

// scroll keeps the cursor inside a window of height rows.
func (p *planState) scroll(height int) {
	if height <= 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+height {
		p.offset = p.cursor - height + 1
	}
	p.offset = max(p.offset, 0)
}

// planTopHeight is the height of the metric cards plus the balance chart card.
const planTopHeight = 5 + 11

// scheduleRows is how many periods fit in the schedule card.
func (a App) scheduleRows() int {
	// 3 = tab bar, info row, status bar; 4 = card border, title, header, editor line
	return max(a.height-3-planTopHeight-4, 3)
}

func (a App) updatePlanKey(key string) (tea.Model, tea.Cmd, bool) {
	n := a.periodCount()
	half := max(a.scheduleRows()/2, 1)

	switch key {
	case "j", "down":
		a.plan.move(1, n)
	case "k", "up":
		a.plan.move(-1, n)
	case "g", "home":
		a.plan.cursor = 0
	case "G", "end":
		a.plan.move(n, n)
	case "ctrl+d", "pgdown":
		a.plan.move(half, n)
	case "ctrl+u", "pgup":
		a.plan.move(-half, n)
	case "e", "enter":
		if n == 0 {
			return a, nil, true
		}
		m, cmd := a.planStartEdit()
		return m, cmd, true
	case "d", "delete", "backspace":
		m := a.clearRowEdit()
		return m, nil, true
	case "z":
		a.resize = !a.resize
		if a.resize {
			a.notice = "Edits may now shorten or lengthen the plan"
		} else {
			a.notice = "Edits keep the plan length"
		}
	default:
		return a, nil, false
	}
	a.plan.scroll(a.scheduleRows())
	return a, nil, true
}

func (a App) planStartEdit() (tea.Model, tea.Cmd) {
	p := a.res.Plan.Periods[a.plan.cursor]

	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 16
	ti.Prompt = "$"
	ti.Placeholder = fmt.Sprintf("%.2f", a.extra)
	ti.SetValue(fmt.Sprintf("%.2f", p.ExtraCash))
	ti.Focus()

	a.plan.editing = true
	a.plan.input = ti
	a.notice = ""
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updatePlanInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.plan.editing = false
		amount, err := importer.ParseAmount(a.plan.input.Value())
		if err != nil || amount < 0 {
			a.notice = fmt.Sprintf("Invalid amount %q", a.plan.input.Value())
			return a, nil
		}
		return a.applyRowEdit(a.plan.cursor, amount), nil
	case "esc":
		a.plan.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.plan.input, cmd = a.plan.input.Update(msg)
	return a, cmd
}

func (a App) recalcOptions() simulator.RecalcOptions {
	return simulator.RecalcOptions{Resize: a.resize}
}

// applyRowEdit sets row's extra cash, re-simulates from it and saves the edit.
func (a App) applyRowEdit(row int, amount float64) App {
	sim := a.res.Simulator(a.simulator())
	plan, err := sim.Override(a.res.Plan, a.res.Loans, row, amount, a.extra, a.recalcOptions())
	if err != nil {
		a.notice = err.Error()
		return a
	}
	plan.Strategy = a.res.Plan.Strategy
	a.setPlan(plan)

	if err := a.store.SaveOverride(string(a.kind), row, amount); err != nil {
		a.log.WithError(err).Warn("saving row override")
		a.notice = "Edit applied but not saved: " + err.Error()
		return a
	}
	a.notice = fmt.Sprintf("Row %d extra cash set to %s", row+1, cli.FormatMoney(amount))
	return a
}

// clearRowEdit drops the cursor row's override and re-simulates from it.
func (a App) clearRowEdit() App {
	row := a.plan.cursor
	if row >= a.periodCount() || a.res.Plan.Periods[row].RowExtraPayment == nil {
		a.notice = "Row has no edit"
		return a
	}
	plan, err := simulator.ClearRowExtra(a.res.Plan, row)
	if err == nil {
		plan, err = a.res.Simulator(a.simulator()).Recalculate(plan, a.res.Loans, row, a.extra, a.recalcOptions())
	}
	if err != nil {
		a.notice = err.Error()
		return a
	}
	plan.Strategy = a.res.Plan.Strategy
	a.setPlan(plan)

	if err := a.store.DeleteOverride(string(a.kind), row); err != nil {
		a.log.WithError(err).Warn("deleting row override")
		a.notice = "Edit cleared but not saved: " + err.Error()
		return a
	}
	a.notice = fmt.Sprintf("Row %d edit cleared", row+1)
	return a
}

// setPlan replaces the plan. The result is copied so plans handed out
// earlier stay untouched.
func (a *App) setPlan(plan model.Plan) {
	res := *a.res
	res.Plan = plan
	a.res = &res
	a.recompute()
}

func (a App) renderPlanTab(cw, h int) string {
	t := theme.Active
	plan := a.res.Plan

	delta := ""
	if row, ok := a.comparisonRow(); ok && row.Summary.Complete && !row.Recommended {
		delta = cli.FormatDelta(row.InterestDelta) + " vs best"
	}
	debtFree := cli.FormatMonthYear(a.summary.PayoffDate)
	if !plan.Complete() {
		debtFree = "not reached"
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Debt free", Value: debtFree, Delta: cli.FormatMonths(a.summary.Months)},
		{Label: "Total interest", Value: cli.FormatMoney(a.summary.TotalInterest), Delta: delta},
		{Label: "Total paid", Value: cli.FormatMoney(a.summary.TotalPaid)},
		{Label: "Monthly budget", Value: cli.FormatMoney(a.summary.MonthlyBudget),
			Delta: cli.FormatMoney(a.summary.MinimumTotal) + " minimums"},
	}, cw)

	balances := make([]float64, len(plan.Periods))
	labels := make([]string, len(plan.Periods))
	for i, p := range plan.Periods {
		balances[i] = p.TotalBalance
		labels[i] = cli.FormatMonthYear(p.Date)
	}
	chart := components.ContentCard("Balance",
		components.BalanceChart(balances, labels, t.Accent, components.CardInnerWidth(cw), 6), cw)

	top := metrics + "\n" + chart
	rows := max(h-lipgloss.Height(top)-4, 3)

	return top + "\n" + components.ContentCard("Schedule", a.renderSchedule(components.CardInnerWidth(cw), rows), cw)
}

// renderSchedule renders the visible window of periods. Per-loan columns are
// shown while they fit.
func (a App) renderSchedule(width, rows int) string {
	t := theme.Active
	plan := a.res.Plan

	const colW = 12
	fixed := []string{"#", "Date", "Extra", "Payment", "Balance"}
	fixedW := 5 + 11 + 3*colW
	loanCols := min(len(plan.Loans), max((width-fixedW)/colW, 0))

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	edited := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	line := fmt.Sprintf("%-5s%-11s%*s", fixed[0], fixed[1], colW, fixed[2])
	for _, l := range plan.Loans[:loanCols] {
		line += fmt.Sprintf("%*s", colW, truncStr(l, colW-1))
	}
	line += fmt.Sprintf("%*s%*s", colW, fixed[3], colW, fixed[4])
	b.WriteString(header.Render(line))

	window := a.plan
	window.scroll(rows)
	end := min(window.offset+rows, len(plan.Periods))
	for i := window.offset; i < end; i++ {
		p := plan.Periods[i]
		mark := " "
		if p.RowExtraPayment != nil {
			mark = "*"
		}
		line := fmt.Sprintf("%-5s%-11s%*s", fmt.Sprintf("%d%s", i+1, mark), cli.FormatDate(p.Date),
			colW, cli.FormatMoney(p.ExtraCash))
		for _, l := range plan.Loans[:loanCols] {
			line += fmt.Sprintf("%*s", colW, cli.FormatMoney(p.Payments[l]))
		}
		line += fmt.Sprintf("%*s%*s", colW, cli.FormatMoney(p.TotalPayment), colW, cli.FormatMoney(p.TotalBalance))

		style := cell
		switch {
		case i == a.plan.cursor:
			style = selected
			line += strings.Repeat(" ", max(width-lipgloss.Width(line), 0))
		case p.RowExtraPayment != nil:
			style = edited
		}
		b.WriteString("\n")
		b.WriteString(style.Render(line))
	}

	b.WriteString("\n")
	if a.plan.editing {
		b.WriteString(header.Render(fmt.Sprintf("Row %d extra cash ", a.plan.cursor+1)))
		b.WriteString(a.plan.input.View())
	} else {
		b.WriteString(muted.Render(fmt.Sprintf("row %d of %d  ·  * edited", a.plan.cursor+1, len(plan.Periods))))
	}
	return b.String()
}
