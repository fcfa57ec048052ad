package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/importer"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
	"github.com/payoffplan/payoff/internal/tui/components"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

const (
	settingsFieldStrategy = iota
	settingsFieldExtra
	settingsFieldOrdering
	settingsFieldResize
	settingsFieldMissing
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 32
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldStrategy:
		ti.Placeholder = "snowball, avalanche, custom"
		ti.SetValue(string(a.kind))
	case settingsFieldExtra:
		ti.Placeholder = "monthly amount"
		ti.SetValue(fmt.Sprintf("%.2f", a.extra))
	case settingsFieldOrdering:
		ti.Placeholder = "balance or strategy"
		ti.SetValue(a.cfg.Simulation.Ordering)
	case settingsFieldResize:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.resize))
	case settingsFieldMissing:
		ti.Placeholder = "append or exclude"
		ti.SetValue(a.cfg.Strategy.CustomMissing)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(theme.Active.Name)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		reload, err := a.settingsSave()
		a.settings.saveErr = err
		a.settings.saved = err == nil
		if err == nil && reload {
			return a.reload()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave writes the edited field to the config file and applies it to
// the running dashboard. It reports whether the plan must be rebuilt.
func (a *App) settingsSave() (bool, error) {
	cfg, err := loadFileConfig()
	if err != nil {
		return false, err
	}
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldStrategy:
		kind, err := strategy.Parse(val)
		if err != nil {
			return false, err
		}
		cfg.General.DefaultStrategy = string(kind)
	case settingsFieldExtra:
		n, err := importer.ParseAmount(val)
		if err != nil {
			return false, err
		}
		if n < 0 {
			return false, errors.New("extra cash must not be negative")
		}
		cfg.General.ExtraCash = n
	case settingsFieldOrdering:
		cfg.Simulation.Ordering = strings.ToLower(val)
	case settingsFieldResize:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("invalid boolean %q", val)
		}
		cfg.Simulation.ResizeOnOverride = b
	case settingsFieldMissing:
		cfg.Strategy.CustomMissing = strings.ToLower(val)
	case settingsFieldTheme:
		if _, ok := theme.Lookup(val); !ok {
			return false, fmt.Errorf("unknown theme %q", val)
		}
		cfg.Appearance.Theme = val
	}

	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if err := config.Save(cfg); err != nil {
		return false, err
	}

	// Only the edited field is copied into the live config; flags and
	// environment overrides for the others stay in effect.
	switch a.settings.cursor {
	case settingsFieldStrategy:
		a.cfg.General.DefaultStrategy = cfg.General.DefaultStrategy
		a.kind = strategy.Kind(cfg.General.DefaultStrategy)
		return true, nil
	case settingsFieldExtra:
		a.cfg.General.ExtraCash = cfg.General.ExtraCash
		a.extra = cfg.General.ExtraCash
		return true, nil
	case settingsFieldOrdering:
		a.cfg.Simulation.Ordering = cfg.Simulation.Ordering
		return true, nil
	case settingsFieldResize:
		a.cfg.Simulation.ResizeOnOverride = cfg.Simulation.ResizeOnOverride
		a.resize = cfg.Simulation.ResizeOnOverride
	case settingsFieldMissing:
		a.cfg.Strategy.CustomMissing = cfg.Strategy.CustomMissing
		return a.kind == strategy.Custom, nil
	case settingsFieldTheme:
		a.cfg.Appearance.Theme = cfg.Appearance.Theme
		theme.SetActive(cfg.Appearance.Theme)
	}
	return false, nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	ordering := a.cfg.Simulation.Ordering
	if simulator.Ordering(ordering) == simulator.OrderBalance {
		ordering += " (smallest balance first)"
	}

	fields := [settingsFieldCount][2]string{
		{"Strategy", string(a.kind)},
		{"Extra cash", cli.FormatMoney(a.extra) + "/month"},
		{"Ordering", ordering},
		{"Resize on edit", strconv.FormatBool(a.resize)},
		{"Custom unlisted", a.cfg.Strategy.CustomMissing},
		{"Theme", t.Name},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f[0])))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f[0]+":"))
			value := selectedStyle.Render(f[1])
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := components.CardInnerWidth(cw) - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f[0]+":")))
			formBody.WriteString(valueStyle.Render(f[1]))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	loans := len(a.loansOrNil())
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Database:     ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Loans:        ") + valueStyle.Render(cli.FormatNumber(int64(loans))) + "\n")
	infoBody.WriteString(labelStyle.Render("Max periods:  ") + valueStyle.Render(strconv.Itoa(a.cfg.Simulation.MaxIterations)) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:    ") + valueStyle.Render(fmt.Sprintf("%.2fs", a.loadTime.Seconds())))

	return components.ContentCard("Settings", formBody.String(), cw) + "\n" +
		components.ContentCard("General", infoBody.String(), cw)
}
