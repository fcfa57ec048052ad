package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/importer"
	"github.com/payoffplan/payoff/internal/strategy"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

// setupValues holds the first-run answers bound to the form fields.
type setupValues struct {
	extra    string
	strategy string
	theme    string
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		extra:    fmt.Sprintf("%.2f", cfg.General.ExtraCash),
		strategy: cfg.General.DefaultStrategy,
		theme:    theme.Active.Name,
	}
}

func validateExtra(s string) error {
	n, err := importer.ParseAmount(s)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func newSetupForm(loanCount int, dbPath string, vals *setupValues) *huh.Form {
	intro := fmt.Sprintf("Loans are read from %s (%d stored).", dbPath, loanCount)
	if loanCount == 0 {
		intro += "\nAdd some with `payoff loans add` or `payoff import FILE`."
	}

	strategies := []huh.Option[string]{
		huh.NewOption("Snowball: smallest balance first", string(strategy.Snowball)),
		huh.NewOption("Avalanche: highest rate first", string(strategy.Avalanche)),
		huh.NewOption("Custom: your own priority list", string(strategy.Custom)),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to payoff").
				Description(intro),
			huh.NewInput().
				Title("Extra cash per month").
				Description("Paid on top of every minimum payment.").
				Placeholder("200").
				Value(&vals.extra).
				Validate(validateExtra),
			huh.NewSelect[string]().
				Title("Payoff strategy").
				Options(strategies...).
				Value(&vals.strategy),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
		),
	).WithShowHelp(true)
}

// loadFileConfig reads the config file alone, without flags or environment,
// so that saving it does not persist one-off overrides.
func loadFileConfig() (config.Config, error) {
	return config.Load()
}

// saveSetupConfig writes the first-run answers and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	vals := a.setupVals
	if vals == nil {
		return errors.New("no setup answers")
	}
	extra, err := importer.ParseAmount(vals.extra)
	if err != nil {
		return fmt.Errorf("extra cash: %w", err)
	}
	kind, err := strategy.Parse(vals.strategy)
	if err != nil {
		return err
	}

	cfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg.General.ExtraCash = extra
	cfg.General.DefaultStrategy = string(kind)
	cfg.Appearance.Theme = strings.TrimSpace(vals.theme)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	a.cfg.General.ExtraCash = extra
	a.cfg.General.DefaultStrategy = string(kind)
	a.cfg.Appearance.Theme = cfg.Appearance.Theme
	a.kind = kind
	a.extra = extra
	theme.SetActive(cfg.Appearance.Theme)
	a.log.WithField("path", config.ConfigPath()).Info("setup saved")
	return nil
}
