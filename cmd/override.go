package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/simulator"
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage saved per-row extra cash for the current strategy",
	RunE:  runOverrideList,
}

var overrideSetCmd = &cobra.Command{
	Use:   "set ROW AMOUNT",
	Short: "Save the extra cash for one plan row",
	Args:  cobra.ExactArgs(2),
	RunE:  runOverrideSet,
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved overrides",
	RunE:  runOverrideList,
}

var overrideClearCmd = &cobra.Command{
	Use:   "clear [ROW]",
	Short: "Remove one saved override, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOverrideClear,
}

func init() {
	overrideCmd.AddCommand(overrideSetCmd, overrideListCmd, overrideClearCmd)
	rootCmd.AddCommand(overrideCmd)
}

func runOverrideSet(_ *cobra.Command, args []string) error {
	pairs, err := parseOverrides([]string{args[0] + "=" + args[1]})
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := buildPlan(st, nil, false)
	if err != nil {
		return err
	}
	for row, amount := range pairs {
		if row >= len(res.Plan.Periods) {
			return fmt.Errorf("row %d: plan has %d rows: %w", row+1, len(res.Plan.Periods), simulator.ErrRowOutOfRange)
		}
		if err := st.SaveOverride(string(strategyKind()), row, amount); err != nil {
			return err
		}
		fmt.Printf("  Row %d (%s) extra cash set to %s\n", row+1, cli.FormatDate(res.Plan.Periods[row].Date), cli.FormatMoney(amount))
	}
	return nil
}

func runOverrideList(_ *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	rows, err := st.Overrides(string(strategyKind()))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("\n  No overrides saved for %s.\n", strategyKind())
		return nil
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	t := cli.Table{
		Title:   fmt.Sprintf("Overrides (%s)", strategyKind()),
		Headers: []string{"Row", "Extra Cash"},
	}
	for _, k := range keys {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("%d", k+1), cli.FormatMoney(rows[k])})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runOverrideClear(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	kind := string(strategyKind())
	if len(args) == 0 {
		if err := st.ClearOverrides(kind); err != nil {
			return err
		}
		fmt.Printf("  Cleared all overrides for %s\n", kind)
		return nil
	}
	row, err := parseRow(args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteOverride(kind, row); err != nil {
		return err
	}
	fmt.Printf("  Cleared override for row %d\n", row+1)
	return nil
}
