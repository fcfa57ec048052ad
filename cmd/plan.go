package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/pipeline"
)

var (
	flagOverrides   []string
	flagResize      bool
	flagRows        int
	flagNoOverrides bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Simulate the month-by-month payoff plan",
	RunE:  runPlan,
}

func init() {
	addPlanFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func addPlanFlags(c *cobra.Command) {
	c.Flags().StringArrayVar(&flagOverrides, "override", nil, "Set one row's extra cash, as ROW=AMOUNT (repeatable)")
	c.Flags().BoolVar(&flagResize, "resize", false, "Let overrides shorten or lengthen the plan")
	c.Flags().IntVar(&flagRows, "rows", 0, "Show only the first N rows (0 = all)")
	c.Flags().BoolVar(&flagNoOverrides, "no-overrides", false, "Ignore saved row overrides")
}

func runPlan(_ *cobra.Command, _ []string) error {
	overrides, err := parseOverrides(flagOverrides)
	if err != nil {
		return err
	}
	if flagResize {
		cfg.Simulation.ResizeOnOverride = true
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	progress("  Simulating %s plan...\n", strategyKind())
	res, err := buildPlan(st, overrides, flagNoOverrides)
	if err != nil {
		return err
	}

	if len(res.Loans) == 0 {
		fmt.Println("\n  No loans yet.")
		fmt.Println("  Add one with `payoff loans add` or `payoff import FILE`.")
		return nil
	}

	plan := res.Plan
	summary := pipeline.Summarize(plan, res.Loans)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PAYOFF PLAN  %s", res.Strategy.Name())))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Loans", cli.FormatNumber(int64(summary.Loans))},
		{"Starting balance", cli.FormatMoney(summary.StartBalance)},
		{"Monthly budget", fmt.Sprintf("%s (%s minimums + %s extra)",
			cli.FormatMoney(summary.MonthlyBudget), cli.FormatMoney(summary.MinimumTotal), cli.FormatMoney(plan.ExtraCash))},
		{"Months", cli.FormatMonths(summary.Months)},
		{"Debt free", cli.FormatMonthYear(summary.PayoffDate)},
		{"Total paid", cli.FormatMoney(summary.TotalPaid)},
		{"Total interest", cli.FormatMoney(summary.TotalInterest)},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(planTable(plan, flagRows)))
	if flagRows > 0 && flagRows < len(plan.Periods) {
		fmt.Printf("  ... %d more rows\n", len(plan.Periods)-flagRows)
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(loanTable(pipeline.AggregateLoans(plan, res.Loans))))

	for _, row := range res.Skipped {
		fmt.Fprintf(os.Stderr, "  override for row %d ignored: plan has %d rows\n", row+1, len(plan.Periods))
	}
	warnIncomplete(plan)
	return nil
}

// planTable renders one row per period. limit <= 0 shows all rows.
func planTable(plan model.Plan, limit int) cli.Table {
	headers := append([]string{"#", "Date", "Extra"}, plan.Loans...)
	headers = append(headers, "Total Payment", "Total Balance")

	periods := plan.Periods
	if limit > 0 && limit < len(periods) {
		periods = periods[:limit]
	}

	t := cli.Table{
		Title:     "Schedule",
		Headers:   headers,
		LeftCols:  2,
		Highlight: make(map[int]bool),
	}
	for i, p := range periods {
		row := []string{fmt.Sprintf("%d", p.Index+1), cli.FormatDate(p.Date), cli.FormatMoney(p.ExtraCash)}
		for _, label := range plan.Loans {
			row = append(row, cli.FormatMoney(p.Payments[label]))
		}
		row = append(row, cli.FormatMoney(p.TotalPayment), cli.FormatMoney(p.TotalBalance))
		t.Rows = append(t.Rows, row)
		if p.RowExtraPayment != nil {
			t.Highlight[i] = true
		}
	}
	return t
}

func loanTable(stats []model.LoanStats) cli.Table {
	t := cli.Table{
		Title:   "Loans",
		Headers: []string{"Loan", "Balance", "Paid", "Month", "Paid Off"},
	}
	for _, s := range stats {
		month, date := "-", "-"
		if s.PayoffPeriod > 0 {
			month = fmt.Sprintf("%d", s.PayoffPeriod)
			date = cli.FormatMonthYear(s.PayoffDate)
		}
		t.Rows = append(t.Rows, []string{s.Label, cli.FormatMoney(s.StartBalance), cli.FormatMoney(s.TotalPaid), month, date})
	}
	return t
}
