package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/importer"
	"github.com/payoffplan/payoff/internal/logging"
)

var flagDryRun bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import loans from a CSV file (- for stdin)",
	Long: "Import loans from CSV. Required columns: name, principal, interest_rate,\n" +
		"monthly_min_payment, first_due_date. Rows that fail to parse are reported and skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and report without saving")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	res, err := importer.Import(r, logging.Component(logger, "importer"))
	if err != nil {
		return err
	}

	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  skipped %v\n", e)
	}
	if flagDryRun {
		t := cli.Table{Headers: []string{"Name", "Balance", "Rate", "Minimum", "First Due"}}
		for _, l := range res.Loans {
			t.Rows = append(t.Rows, []string{l.Name, cli.FormatMoney(l.CurrentBalance),
				cli.FormatRate(l.InterestRate), cli.FormatMoney(l.MonthlyMinPayment), cli.FormatDate(l.FirstDueDate)})
		}
		fmt.Print(cli.RenderTable(t))
		fmt.Printf("  %d loans parsed, %d rows skipped (dry run, nothing saved)\n", len(res.Loans), len(res.Errors))
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	for i, l := range res.Loans {
		if _, err := st.AddLoan(l); err != nil {
			return fmt.Errorf("saved %d of %d loans: %w", i, len(res.Loans), err)
		}
	}
	fmt.Printf("  Imported %d loans", len(res.Loans))
	if len(res.Errors) > 0 {
		fmt.Printf(", skipped %d rows", len(res.Errors))
	}
	fmt.Println()
	return nil
}
