package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/strategy"
)

var flagClearPriority bool

var priorityCmd = &cobra.Command{
	Use:   "priority [ID...]",
	Short: "Show or set the custom strategy's loan order",
	Long: "With loan IDs, saves them as the custom strategy's order, first ID paid first.\n" +
		"Without arguments, shows the saved order.",
	RunE: runPriority,
}

func init() {
	priorityCmd.Flags().BoolVar(&flagClearPriority, "clear", false, "Remove the saved order")
	rootCmd.AddCommand(priorityCmd)
}

func runPriority(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id := strategy.ID(strategy.Custom)
	switch {
	case flagClearPriority:
		if err := st.SetPriority(id, nil); err != nil {
			return err
		}
		fmt.Println("  Custom order cleared")
		return nil
	case len(args) > 0:
		ids := make([]int64, 0, len(args))
		seen := make(map[int64]bool, len(args))
		for _, a := range args {
			loanID, err := parseLoanID(a)
			if err != nil {
				return err
			}
			if seen[loanID] {
				return fmt.Errorf("loan %d listed twice", loanID)
			}
			seen[loanID] = true
			if _, err := st.GetLoan(loanID); err != nil {
				return err
			}
			ids = append(ids, loanID)
		}
		if err := st.SetPriority(id, ids); err != nil {
			return err
		}
	}

	loans, err := st.LoansByStrategy(id)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Println("\n  No custom order saved. Set one with `payoff priority ID...`.")
		return nil
	}
	t := cli.Table{
		Title:    "Custom order",
		Headers:  []string{"#", "ID", "Name", "Balance", "Rate"},
		LeftCols: 3,
	}
	for i, l := range loans {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", i+1), fmt.Sprintf("%d", l.ID), l.Name,
			cli.FormatMoney(l.CurrentBalance), cli.FormatRate(l.InterestRate),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}
