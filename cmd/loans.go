package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/store"
)

var loanFlags struct {
	name             string
	principal        float64
	balance          float64
	rate             float64
	minPayment       float64
	extraPayment     float64
	due              string
	rateChange       float64
	term             int
	lender           string
	notes            string
	forbearanceStart string
	forbearanceEnd   string
}

var flagPayDate string

var loansCmd = &cobra.Command{
	Use:     "loans",
	Aliases: []string{"loan"},
	Short:   "List and manage loans",
	RunE:    runLoansList,
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans",
	RunE:  runLoansList,
}

var loansAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a loan",
	RunE:  runLoansAdd,
}

var loansEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change fields of a loan",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoansEdit,
}

var loansRmCmd = &cobra.Command{
	Use:     "rm ID...",
	Aliases: []string{"delete"},
	Short:   "Delete loans",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runLoansRm,
}

var loansPayCmd = &cobra.Command{
	Use:   "pay ID AMOUNT",
	Short: "Record a payment against a loan",
	Args:  cobra.ExactArgs(2),
	RunE:  runLoansPay,
}

var loansHistoryCmd = &cobra.Command{
	Use:   "history ID",
	Short: "Show recorded payments for a loan",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoansHistory,
}

func init() {
	for _, c := range []*cobra.Command{loansAddCmd, loansEditCmd} {
		addLoanFlags(c.Flags())
	}
	_ = loansAddCmd.MarkFlagRequired("name")
	_ = loansAddCmd.MarkFlagRequired("principal")
	_ = loansAddCmd.MarkFlagRequired("rate")
	_ = loansAddCmd.MarkFlagRequired("min")

	loansPayCmd.Flags().StringVar(&flagPayDate, "date", "", "Payment date (YYYY-MM-DD, default today)")

	loansCmd.AddCommand(loansListCmd, loansAddCmd, loansEditCmd, loansRmCmd, loansPayCmd, loansHistoryCmd)
	rootCmd.AddCommand(loansCmd)
}

func addLoanFlags(fs *pflag.FlagSet) {
	fs.StringVar(&loanFlags.name, "name", "", "Loan name")
	fs.Float64Var(&loanFlags.principal, "principal", 0, "Original principal")
	fs.Float64Var(&loanFlags.balance, "balance", 0, "Current balance (default principal)")
	fs.Float64Var(&loanFlags.rate, "rate", 0, "Annual interest rate in percent")
	fs.Float64Var(&loanFlags.minPayment, "min", 0, "Monthly minimum payment")
	fs.Float64Var(&loanFlags.extraPayment, "extra-payment", 0, "Standing extra payment for amortization")
	fs.StringVar(&loanFlags.due, "due", "", "First due date (YYYY-MM-DD, default today)")
	fs.Float64Var(&loanFlags.rateChange, "rate-change", 0, "Expected interest change rate")
	fs.IntVar(&loanFlags.term, "term", 0, "Loan term in months")
	fs.StringVar(&loanFlags.lender, "lender", "", "Lender")
	fs.StringVar(&loanFlags.notes, "notes", "", "Notes")
	fs.StringVar(&loanFlags.forbearanceStart, "forbearance-start", "", "Forbearance start date (YYYY-MM-DD)")
	fs.StringVar(&loanFlags.forbearanceEnd, "forbearance-end", "", "Forbearance end date (YYYY-MM-DD)")
}

func runLoansList(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	loans, err := st.ListLoans()
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Println("\n  No loans yet. Add one with `payoff loans add`.")
		return nil
	}

	var balance, principal, minimums float64
	t := cli.Table{
		Headers:  []string{"ID", "Name", "Lender", "Rate", "Balance", "Minimum", "Paid", "Progress"},
		LeftCols: 3,
	}
	for _, l := range loans {
		balance += l.CurrentBalance
		principal += l.Principal
		minimums += l.MonthlyMinPayment
		name := l.Name
		if l.InForbearance(model.Today()) {
			name += " (forbearance)"
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", l.ID), name, l.Lender,
			cli.FormatRate(l.InterestRate),
			cli.FormatMoney(l.CurrentBalance),
			cli.FormatMoney(l.MonthlyMinPayment),
			cli.FormatMoney(l.TotalPaid),
			cli.RenderProgressBar(l.Principal-l.CurrentBalance, l.Principal, 12),
		})
	}
	t.Rows = append(t.Rows, cli.SeparatorRow, []string{
		"", "Total", "", "",
		cli.FormatMoney(balance), cli.FormatMoney(minimums), "",
		cli.RenderProgressBar(principal-balance, principal, 12),
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOANS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runLoansAdd(cmd *cobra.Command, _ []string) error {
	rec := model.Record{
		Name:               loanFlags.name,
		Principal:          loanFlags.principal,
		CurrentBalance:     loanFlags.principal,
		InterestRate:       loanFlags.rate,
		MonthlyMinPayment:  loanFlags.minPayment,
		ExtraPayment:       loanFlags.extraPayment,
		FirstDueDate:       loanFlags.due,
		InterestChangeRate: loanFlags.rateChange,
		LoanTermMonths:     loanFlags.term,
		Lender:             loanFlags.lender,
		Notes:              loanFlags.notes,
		ForbearanceStart:   loanFlags.forbearanceStart,
		ForbearanceEnd:     loanFlags.forbearanceEnd,
	}
	if cmd.Flags().Changed("balance") {
		rec.CurrentBalance = loanFlags.balance
	}
	if rec.FirstDueDate == "" {
		rec.FirstDueDate = model.FormatDate(model.Today())
	}
	if err := checkAmounts(rec); err != nil {
		return err
	}
	l, err := model.NewLoan(rec)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := st.AddLoan(l)
	if err != nil {
		return err
	}
	fmt.Printf("  Added loan %d: %s (%s at %s)\n", id, l.Name, cli.FormatMoney(l.CurrentBalance), cli.FormatRate(l.InterestRate))
	return nil
}

func runLoansEdit(cmd *cobra.Command, args []string) error {
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
	rec := l.Record()
	changed := 0
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed++
		switch f.Name {
		case "name":
			rec.Name = loanFlags.name
		case "principal":
			rec.Principal = loanFlags.principal
		case "balance":
			rec.CurrentBalance = loanFlags.balance
		case "rate":
			rec.InterestRate = loanFlags.rate
		case "min":
			rec.MonthlyMinPayment = loanFlags.minPayment
		case "extra-payment":
			rec.ExtraPayment = loanFlags.extraPayment
		case "due":
			rec.FirstDueDate = loanFlags.due
		case "rate-change":
			rec.InterestChangeRate = loanFlags.rateChange
		case "term":
			rec.LoanTermMonths = loanFlags.term
		case "lender":
			rec.Lender = loanFlags.lender
		case "notes":
			rec.Notes = loanFlags.notes
		case "forbearance-start":
			rec.ForbearanceStart = loanFlags.forbearanceStart
		case "forbearance-end":
			rec.ForbearanceEnd = loanFlags.forbearanceEnd
		default:
			changed--
		}
	})
	if changed == 0 {
		return errors.New("nothing to change: pass at least one loan flag")
	}
	if err := checkAmounts(rec); err != nil {
		return err
	}
	updated, err := model.NewLoan(rec)
	if err != nil {
		return err
	}
	if err := st.UpdateLoan(updated); err != nil {
		return err
	}
	fmt.Printf("  Updated loan %d: %s\n", id, updated.Name)
	return nil
}

func checkAmounts(r model.Record) error {
	switch {
	case r.Principal < 0 || r.CurrentBalance < 0:
		return errors.New("principal and balance must not be negative")
	case r.InterestRate < 0:
		return errors.New("rate must not be negative")
	case r.MonthlyMinPayment < 0 || r.ExtraPayment < 0:
		return errors.New("payments must not be negative")
	case r.LoanTermMonths < 0:
		return errors.New("term must not be negative")
	}
	return nil
}

func runLoansRm(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	for _, a := range args {
		id, err := parseLoanID(a)
		if err != nil {
			return err
		}
		if err := st.DeleteLoan(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Printf("  Loan %d not found\n", id)
				continue
			}
			return err
		}
		fmt.Printf("  Deleted loan %d\n", id)
	}
	return nil
}

func runLoansPay(_ *cobra.Command, args []string) error {
	id, err := parseLoanID(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(args[1])
	if err != nil {
		return err
	}
	date := model.Today()
	if flagPayDate != "" {
		if date, err = model.ParseDate("date", flagPayDate); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := st.RecordPayment(id, amount, date)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Interest", cli.FormatMoney(res.InterestPaid)},
		{"Principal", cli.FormatMoney(res.PrincipalPaid)},
		{"Remaining", cli.FormatMoney(res.RemainingBalance)},
	}))
	if applied := res.InterestPaid + res.PrincipalPaid; amount-applied > model.Epsilon {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%s exceeded the balance and was not applied", cli.FormatMoney(amount-applied))))
	}
	if res.RemainingBalance <= 0 {
		fmt.Println("  Paid off!")
	}
	return nil
}

func runLoansHistory(_ *cobra.Command, args []string) error {
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
	payments, err := st.Payments(id)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Printf("\n  No payments recorded for %s.\n", l.Name)
		return nil
	}

	var interest, principal float64
	t := cli.Table{
		Title:   l.Name,
		Headers: []string{"Date", "Amount", "Interest", "Principal", "Balance"},
	}
	for _, p := range payments {
		interest += p.InterestPaid
		principal += p.PrincipalPaid
		t.Rows = append(t.Rows, []string{
			cli.FormatDate(p.PaidOn), cli.FormatMoney(p.Amount), cli.FormatMoney(p.InterestPaid),
			cli.FormatMoney(p.PrincipalPaid), cli.FormatMoney(p.RemainingBalance),
		})
	}
	t.Rows = append(t.Rows, cli.SeparatorRow, []string{"Total", "", cli.FormatMoney(interest), cli.FormatMoney(principal), ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}
