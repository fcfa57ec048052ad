// Package tui provides the interactive Bubble Tea dashboard for payoff.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/pipeline"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
	"github.com/payoffplan/payoff/internal/tui/components"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

// Store is the loan store the dashboard reads plans from and saves row edits to.
type Store interface {
	pipeline.Source
	SaveOverride(strategy string, periodIndex int, extra float64) error
	DeleteOverride(strategy string, periodIndex int) error
}

// PlanLoadedMsg is sent when the current plan and the strategy comparison
// have been built.
type PlanLoadedMsg struct {
	Result     *pipeline.Result
	Comparison *pipeline.Comparison
	LoadTime   time.Duration
	Err        error
}

// ProgressMsg reports how many strategies have been simulated.
type ProgressMsg struct {
	Current int
	Total   int
}

const (
	tabPlan = iota
	tabLoans
	tabCompare
	tabSettings
)

// extraStep is how much + and - change the monthly extra cash.
const extraStep = 50

// App is the root Bubble Tea model.
type App struct {
	store Store
	cfg   config.Config
	log   logrus.FieldLogger

	// Plan inputs
	kind   strategy.Kind
	extra  float64
	resize bool

	// Data
	res       *pipeline.Result
	cmp       *pipeline.Comparison
	summary   model.PlanSummary
	loanStats []model.LoanStats
	loaded    bool
	loading   bool
	loadErr   error
	loadTime  time.Duration
	notice    string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	plan       planState
	loanCursor int
	settings   settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// Loading: progress and completion arrive over loadSub
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates the dashboard over st. cfg is the effective configuration,
// flags and environment included. needSetup shows the first-run form once
// the plan has loaded.
func NewApp(st Store, cfg config.Config, log logrus.FieldLogger, needSetup bool) App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	kind, err := strategy.Parse(cfg.General.DefaultStrategy)
	if err != nil {
		kind = strategy.Snowball
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		store:     st,
		cfg:       cfg,
		log:       log,
		kind:      kind,
		extra:     cfg.General.ExtraCash,
		resize:    cfg.Simulation.ResizeOnOverride,
		needSetup: needSetup,
		loading:   true,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.store, a.request(), a.log, a.loadSub),
		a.spinner.Tick,
	)
}

func (a App) simulator() *simulator.Simulator {
	return simulator.New(a.cfg.SimulatorOptions()).WithLogger(a.log)
}

func (a App) request() pipeline.Request {
	missing, err := strategy.ParseMissingPolicy(a.cfg.Strategy.CustomMissing)
	if err != nil {
		missing = strategy.MissingAppend
	}
	return pipeline.Request{
		Kind:      a.kind,
		ExtraCash: a.extra,
		Sim:       a.simulator(),
		Missing:   missing,
		Resize:    a.resize,
	}
}

// reload rebuilds the plan and comparison in the background.
func (a App) reload() (App, tea.Cmd) {
	if a.loading {
		return a, nil
	}
	a.loading = true
	return a, tea.Batch(loadDataCmd(a.store, a.request(), a.log, a.loadSub), a.spinner.Tick)
}

// recompute refreshes everything derived from the current plan.
func (a *App) recompute() {
	if a.res == nil {
		return
	}
	a.summary = pipeline.Summarize(a.res.Plan, a.res.Loans)
	a.loanStats = pipeline.AggregateLoans(a.res.Plan, a.res.Loans)

	if n := len(a.res.Plan.Periods); a.plan.cursor >= n {
		a.plan.cursor = max(n-1, 0)
	}
	if n := len(a.res.Loans); a.loanCursor >= n {
		a.loanCursor = max(n-1, 0)
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case PlanLoadedMsg:
		a.loading = false
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		a.progress, a.progressMax = 0, 0
		if msg.Err == nil {
			a.res = msg.Result
			a.cmp = msg.Comparison
			a.recompute()
		}

		if a.needSetup && a.setupForm == nil {
			a.setupVals = newSetupValues(a.cfg)
			a.setupForm = newSetupForm(len(a.loansOrNil()), a.cfg.DBPath(), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabPlan && a.plan.editing {
		return a.updatePlanInput(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabPlan:
		if m, cmd, ok := a.updatePlanKey(key); ok {
			return m, cmd
		}
	case tabLoans:
		switch key {
		case "j", "down":
			a.moveCursor(1)
			return a, nil
		case "k", "up":
			a.moveCursor(-1)
			return a, nil
		}
	case tabSettings:
		switch key {
		case "j", "down":
			a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
			return a, nil
		case "k", "up":
			a.settings.cursor = max(a.settings.cursor-1, 0)
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.notice = ""
		return a.reload()
	case "s":
		a.kind = nextKind(a.kind)
		a.notice = "Strategy: " + string(a.kind)
		return a.reload()
	case "+", "=":
		a.extra += extraStep
		a.notice = fmt.Sprintf("Extra cash: %s/month", cli.FormatMoney(a.extra))
		return a.reload()
	case "-":
		a.extra = max(a.extra-extraStep, 0)
		a.notice = fmt.Sprintf("Extra cash: %s/month", cli.FormatMoney(a.extra))
		return a.reload()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(key) == 1 {
			if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func nextKind(k strategy.Kind) strategy.Kind {
	for i, kind := range strategy.Kinds {
		if kind == k {
			return strategy.Kinds[(i+1)%len(strategy.Kinds)]
		}
	}
	return strategy.Kinds[0]
}

// moveCursor moves the active tab's list cursor by delta.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabPlan:
		a.plan.move(delta, a.periodCount())
	case tabLoans:
		a.loanCursor = max(0, min(a.loanCursor+delta, len(a.loansOrNil())-1))
	}
}

func (a App) periodCount() int {
	if a.res == nil {
		return 0
	}
	return len(a.res.Plan.Periods)
}

func (a App) loansOrNil() []model.Loan {
	if a.res == nil {
		return nil
	}
	return a.res.Loans
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupForm = nil
		a.needSetup = false
		if err := a.saveSetupConfig(); err != nil {
			a.notice = "Setup not saved: " + err.Error()
			return a, nil
		}
		a.notice = "Saved to " + config.ConfigPath()
		return a.reload()
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  payoff needs at least %d columns.\n",
		a.width, minTerminalWidth)
	h := max(a.height, 5)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ payoff"))
	b.WriteString(muted.Render(" · Loan Payoff Planner"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	if a.progressMax > 0 {
		b.WriteString(muted.Render(fmt.Sprintf(" Simulating strategies %d/%d\n\n", a.progress, a.progressMax)))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), 30))
	} else {
		b.WriteString(muted.Render(" Loading loans..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

var helpSections = []struct {
	title    string
	bindings []binding
}{
	{"Navigation", []binding{
		{"p l c x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move through rows"},
		{"g G", "First / last row"},
		{"^d ^u", "Half-page scroll"},
	}},
	{"Plan", []binding{
		{"e Enter", "Edit the row's extra cash"},
		{"d", "Clear the row's edit"},
		{"z", "Toggle plan resizing on edit"},
		{"s", "Next strategy"},
		{"+ -", "Change extra cash by $50"},
	}},
	{"General", []binding{
		{"r", "Reload loans"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (a App) viewHelp() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range helpSections {
		b.WriteString("\n")
		b.WriteString(section.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", bind.key)), desc.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	// 1. Header: tab bar and the plan inputs
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	info := pill.Render(" ") + accent.Render(string(a.kind)) +
		pill.Render(" │ ") + accent.Render(cli.FormatMoney(a.extra)+"/mo extra")
	if a.resize {
		info += pill.Render(" │ ") + accent.Render("resize")
	}
	if a.loading {
		info += pill.Render(" │ ") + a.spinner.View()
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(info)

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, a.hints(), a.status(), a.warnStatus())

	// 3. Content zone
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	case a.loadErr != nil:
		content = components.ContentCard("Error", a.loadErr.Error(), cw)
	case len(a.loansOrNil()) == 0:
		content = components.ContentCard("No loans",
			"Add loans with `payoff loans add` or `payoff import FILE`, then press r.", cw)
	case a.activeTab == tabPlan:
		content = a.renderPlanTab(cw, contentH)
	case a.activeTab == tabLoans:
		content = a.renderLoansTab(cw)
	case a.activeTab == tabCompare:
		content = a.renderCompareTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) hints() string {
	switch a.activeTab {
	case tabPlan:
		if a.plan.editing {
			return "[Enter]apply  [Esc]cancel"
		}
		return "[e]dit  [d]clear  [s]trategy  [+/-]extra  [?]help  [q]uit"
	case tabSettings:
		if a.settings.editing {
			return "[Enter]save  [Esc]cancel"
		}
		return "[j/k]move  [Enter]edit  [?]help  [q]uit"
	default:
		return "[s]trategy  [+/-]extra  [r]eload  [?]help  [q]uit"
	}
}

func (a App) status() string {
	if a.notice != "" {
		return a.notice
	}
	if a.res == nil {
		return ""
	}
	if !a.res.Plan.Complete() {
		return fmt.Sprintf("Incomplete (%s): %s still owed", a.res.Plan.Stop, cli.FormatMoney(a.res.Plan.FinalBalance()))
	}
	return fmt.Sprintf("Debt free %s  ·  %.1fs", cli.FormatMonthYear(a.summary.PayoffDate), a.loadTime.Seconds())
}

func (a App) warnStatus() bool {
	return a.notice == "" && a.res != nil && !a.res.Plan.Complete()
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd builds the strategy comparison and the current plan in a
// background goroutine, streaming ProgressMsg updates and a final
// PlanLoadedMsg through sub.
func loadDataCmd(st Store, req pipeline.Request, log logrus.FieldLogger, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking so a slow UI never stalls the simulation
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			cmp, err := pipeline.Compare(context.Background(), st, strategy.Kinds, req.ExtraCash, req.Sim, req.Missing, progressFn)
			if err != nil {
				sub <- PlanLoadedMsg{Err: err, LoadTime: time.Since(start)}
				return
			}
			res, err := pipeline.Load(st, req, log)
			sub <- PlanLoadedMsg{Result: res, Comparison: cmp, Err: err, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w in the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab under column x of the tab bar, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
