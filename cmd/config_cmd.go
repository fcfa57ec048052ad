// Package cmd implements the payoff CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	start := cfg.General.StartDate
	if start == "" {
		start = "today"
	}

	fmt.Println("  [General]")
	fmt.Printf("    Database:          %s\n", cfg.DBPath())
	fmt.Printf("    Default strategy:  %s\n", cfg.General.DefaultStrategy)
	fmt.Printf("    Extra cash:        %s/month\n", cli.FormatMoney(cfg.General.ExtraCash))
	fmt.Printf("    Start date:        %s\n", start)
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Max iterations:    %d\n", cfg.Simulation.MaxIterations)
	fmt.Printf("    Stagnation:        %.2f\n", cfg.Simulation.StagnationEpsilon)
	fmt.Printf("    Period days:       %d\n", cfg.Simulation.PeriodDays)
	fmt.Printf("    Ordering:          %s\n", cfg.Simulation.Ordering)
	fmt.Printf("    Resize on edit:    %v\n", cfg.Simulation.ResizeOnOverride)
	fmt.Println()

	fmt.Println("  [Strategy]")
	fmt.Printf("    Custom, unlisted:  %s\n", cfg.Strategy.CustomMissing)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `payoff setup` to reconfigure.")
	return nil
}
