package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/export"
)

var (
	flagFormat string
	flagOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the payoff plan as CSV or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: csv or json (default from --out extension, else csv)")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringArrayVar(&flagOverrides, "override", nil, "Set one row's extra cash, as ROW=AMOUNT (repeatable)")
	exportCmd.Flags().BoolVar(&flagNoOverrides, "no-overrides", false, "Ignore saved row overrides")
	rootCmd.AddCommand(exportCmd)
}

func exportFormat() (export.Format, error) {
	name := flagFormat
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(flagOut)), ".")
		if name != string(export.JSON) {
			name = string(export.CSV)
		}
	}
	return export.ParseFormat(name)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := exportFormat()
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(flagOverrides)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := buildPlan(st, overrides, flagNoOverrides)
	if err != nil {
		return err
	}

	if flagOut == "" {
		return export.Write(os.Stdout, res.Plan, format)
	}

	f, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", flagOut, err)
	}
	if err := export.Write(f, res.Plan, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", flagOut, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	progress("  Wrote %d rows to %s\n", len(res.Plan.Periods), flagOut)
	return nil
}
