package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/importer"
	"github.com/payoffplan/payoff/internal/strategy"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Start from the file on disk so flags and env don't leak into it
	fileCfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("  Welcome to payoff!")
	fmt.Println()
	if st, err := openStore(); err == nil {
		if n, err := st.LoanCount(); err == nil && n > 0 {
			fmt.Printf("  Found %d loans in %s\n\n", n, cfg.DBPath())
		}
		_ = st.Close()
	}

	// 1. Extra cash
	fmt.Println("  1. Monthly extra cash")
	fmt.Println("     Money you can put toward debt on top of the minimums.")
	fmt.Printf("     Current: %s\n", cli.FormatMoney(fileCfg.General.ExtraCash))
	fmt.Print("     > ")
	extra, _ := reader.ReadString('\n')
	if extra = strings.TrimSpace(extra); extra != "" {
		amt, err := importer.ParseAmount(extra)
		if err != nil || amt < 0 {
			return fmt.Errorf("invalid extra cash %q", extra)
		}
		fileCfg.General.ExtraCash = amt
	}
	fmt.Println()

	// 2. Strategy
	fmt.Println("  2. Default strategy")
	fmt.Println("     (1) Snowball, smallest balance first [default]")
	fmt.Println("     (2) Avalanche, highest rate first")
	fmt.Println("     (3) Custom order (see `payoff priority`)")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "2":
		fileCfg.General.DefaultStrategy = string(strategy.Avalanche)
	case "3":
		fileCfg.General.DefaultStrategy = string(strategy.Custom)
	default:
		fileCfg.General.DefaultStrategy = string(strategy.Snowball)
	}
	fmt.Println()

	// 3. Theme
	fmt.Println("  3. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(themeChoice) {
	case "2":
		fileCfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		fileCfg.Appearance.Theme = "tokyo-night"
	case "4":
		fileCfg.Appearance.Theme = "terminal"
	default:
		fileCfg.Appearance.Theme = "flexoki-dark"
	}

	if err := fileCfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(fileCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `payoff setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
