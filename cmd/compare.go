package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/pipeline"
	"github.com/payoffplan/payoff/internal/strategy"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare every strategy over the same loans",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kinds := strategy.Kinds
	cmp, err := pipeline.Compare(ctx, st, kinds, cfg.General.ExtraCash, newSimulator(), missingPolicy(),
		func(current, total int) {
			progress("\r  Simulating strategies... %d/%d", current, total)
		})
	progress("\n")
	if err != nil {
		return err
	}
	if len(cmp.Rows) == 0 || cmp.Rows[0].Summary.Loans == 0 {
		fmt.Println("\n  No loans to compare.")
		return nil
	}

	t := cli.Table{
		Headers:   []string{"Strategy", "Months", "Debt Free", "Interest", "Total Paid", "vs Best"},
		Highlight: make(map[int]bool),
	}
	for i, row := range cmp.Rows {
		s := row.Summary
		name := string(kinds[i])
		vsBest := "-"
		if s.Complete {
			vsBest = fmt.Sprintf("%s, %+dm", cli.FormatDelta(row.InterestDelta), row.MonthsDelta)
		} else {
			name += " (incomplete)"
		}
		if row.Recommended {
			name += " *"
			t.Highlight[i] = true
		}
		t.Rows = append(t.Rows, []string{
			name, cli.FormatMonths(s.Months), cli.FormatMonthYear(s.PayoffDate),
			cli.FormatMoney(s.TotalInterest), cli.FormatMoney(s.TotalPaid), vsBest,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STRATEGIES  %s extra/month", cli.FormatMoney(cfg.General.ExtraCash))))
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	fmt.Println()

	for i, plan := range cmp.Plans {
		balances := make([]float64, len(plan.Periods))
		for j, p := range plan.Periods {
			balances[j] = p.TotalBalance
		}
		fmt.Printf("  %-10s %s\n", kinds[i], cli.RenderSparkline(cli.Downsample(balances, 40)))
	}
	return nil
}
