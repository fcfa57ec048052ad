package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/model"
)

var amortizeCmd = &cobra.Command{
	Use:   "amortize ID",
	Short: "Show one loan's standalone amortization schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmortize,
}

func init() {
	amortizeCmd.Flags().IntVar(&flagRows, "rows", 0, "Show only the first N rows (0 = all)")
	rootCmd.AddCommand(amortizeCmd)
}

func runAmortize(_ *cobra.Command, args []string) error {
	id, err := parseLoanID(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	l, err := st.GetLoan(id)
	if err != nil {
		return err
	}

	schedule := l.AmortizationSchedule()
	var interest float64
	for _, e := range schedule {
		interest += e.Interest
	}

	pairs := [][2]string{
		{"Balance", cli.FormatMoney(l.CurrentBalance)},
		{"Rate", cli.FormatRate(l.InterestRate)},
		{"Payment", cli.FormatMoney(l.MonthlyMinPayment + l.ExtraPayment)},
		{"Payments", cli.FormatNumber(int64(len(schedule)))},
		{"Total interest", cli.FormatMoney(model.RoundCents(interest))},
		{"Avg life", fmt.Sprintf("%.1f months", model.WeightedAverageLife(schedule))},
	}
	if l.LoanTermMonths > 0 {
		pairs = append(pairs, [2]string{
			fmt.Sprintf("Level payment (%s)", cli.FormatMonths(l.LoanTermMonths)),
			cli.FormatMoney(model.MonthlyPayment(l.Principal, l.InterestRate, l.LoanTermMonths)),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AMORTIZATION  %s", l.Name)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues(pairs))
	fmt.Println()

	rows := schedule
	if flagRows > 0 && flagRows < len(rows) {
		rows = rows[:flagRows]
	}
	t := cli.Table{Headers: []string{"#", "Date", "Payment", "Principal", "Interest", "Balance"}, LeftCols: 2}
	for i, e := range rows {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", i+1), cli.FormatDate(e.Date), cli.FormatMoney(e.Payment),
			cli.FormatMoney(e.Principal), cli.FormatMoney(e.Interest), cli.FormatMoney(e.Balance),
		})
	}
	fmt.Print(cli.RenderTable(t))

	if len(schedule) > 0 && schedule[len(schedule)-1].Balance > model.Epsilon {
		fmt.Println(cli.RenderWarning("the payment does not cover interest; this loan never pays off on its own"))
	}
	return nil
}
