package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/pipeline"
	"github.com/payoffplan/payoff/internal/strategy"
	"github.com/payoffplan/payoff/internal/tui/theme"
)

type overrideKey struct {
	strategy string
	row      int
}

type fakeStore struct {
	loans     []model.Loan
	overrides map[overrideKey]float64
	saveErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		loans: []model.Loan{
			{ID: 1, Name: "Card", CurrentBalance: 3000, InterestRate: 22, MonthlyMinPayment: 90},
			{ID: 2, Name: "Medical", CurrentBalance: 500, InterestRate: 0, MonthlyMinPayment: 50},
			{ID: 3, Name: "Car", CurrentBalance: 6000, InterestRate: 5, MonthlyMinPayment: 200},
		},
		overrides: map[overrideKey]float64{},
	}
}

func (f *fakeStore) ListLoans() ([]model.Loan, error) {
	return append([]model.Loan(nil), f.loans...), nil
}

func (f *fakeStore) Priority(int) ([]int64, error) { return nil, nil }

func (f *fakeStore) Overrides(strategy string) (map[int]float64, error) {
	out := map[int]float64{}
	for k, v := range f.overrides {
		if k.strategy == strategy {
			out[k.row] = v
		}
	}
	return out, nil
}

func (f *fakeStore) SaveOverride(strategy string, row int, extra float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.overrides[overrideKey{strategy, row}] = extra
	return nil
}

func (f *fakeStore) DeleteOverride(strategy string, row int) error {
	delete(f.overrides, overrideKey{strategy, row})
	return nil
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.General.ExtraCash = 100
	cfg.General.StartDate = "2025-01-01"
	return cfg
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// loadedApp builds an App and feeds it a plan loaded the same way loadDataCmd does.
func loadedApp(t *testing.T, st *fakeStore) App {
	t.Helper()
	a := NewApp(st, testConfig(), quietLogger(), false)
	req := a.request()
	res, err := pipeline.Load(st, req, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.(App).Update(PlanLoadedMsg{Result: res})
	return m.(App)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlanLoadedPopulatesSummary(t *testing.T) {
	a := loadedApp(t, newFakeStore())
	if !a.loaded || a.loading {
		t.Fatalf("loaded=%v loading=%v, want loaded", a.loaded, a.loading)
	}
	if a.summary.Loans != 3 {
		t.Fatalf("summary.Loans = %d, want 3", a.summary.Loans)
	}
	if !a.summary.Complete {
		t.Fatalf("plan incomplete: %s", a.res.Plan.Stop)
	}
	if len(a.loanStats) != 3 {
		t.Fatalf("loanStats = %d, want 3", len(a.loanStats))
	}
	if got := a.View(); !strings.Contains(got, "snowball") {
		t.Fatal("view does not show the active strategy")
	}
}

func TestStrategyKeyCyclesAndReloads(t *testing.T) {
	a := loadedApp(t, newFakeStore())
	m, cmd := a.Update(key("s"))
	a = m.(App)
	if a.kind != strategy.Avalanche {
		t.Fatalf("kind = %s, want avalanche", a.kind)
	}
	if cmd == nil || !a.loading {
		t.Fatal("strategy change did not start a reload")
	}

	// A second press while loading changes the kind but does not stack reloads.
	m, cmd = a.Update(key("s"))
	if m.(App).kind != strategy.Custom || cmd != nil {
		t.Fatalf("kind = %s cmd = %v, want custom and no reload", m.(App).kind, cmd != nil)
	}
}

func TestNextKindWraps(t *testing.T) {
	tests := []struct{ in, want strategy.Kind }{
		{strategy.Snowball, strategy.Avalanche},
		{strategy.Avalanche, strategy.Custom},
		{strategy.Custom, strategy.Snowball},
		{strategy.Kind("bogus"), strategy.Snowball},
	}
	for _, tt := range tests {
		if got := nextKind(tt.in); got != tt.want {
			t.Fatalf("nextKind(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestExtraKeysClampAtZero(t *testing.T) {
	a := loadedApp(t, newFakeStore())
	a.extra = 30
	m, _ := a.Update(key("-"))
	if got := m.(App).extra; got != 0 {
		t.Fatalf("extra = %v, want 0", got)
	}
}

func TestApplyRowEditSavesOverride(t *testing.T) {
	st := newFakeStore()
	a := loadedApp(t, st)
	before := a.res.Plan

	a = a.applyRowEdit(2, 500)
	p := a.res.Plan.Periods[2]
	if p.RowExtraPayment == nil || *p.RowExtraPayment != 500 {
		t.Fatalf("row 2 override = %v, want 500", p.RowExtraPayment)
	}
	if got := st.overrides[overrideKey{"snowball", 2}]; got != 500 {
		t.Fatalf("saved override = %v, want 500", got)
	}
	if before.Periods[2].RowExtraPayment != nil {
		t.Fatal("edit mutated the previous plan")
	}
	if a.summary.TotalInterest > pipeline.Summarize(before, a.res.Loans).TotalInterest {
		t.Fatal("more extra cash increased total interest")
	}

	a.plan.cursor = 2
	a = a.clearRowEdit()
	if a.res.Plan.Periods[2].RowExtraPayment != nil {
		t.Fatal("row 2 still edited after clear")
	}
	if _, ok := st.overrides[overrideKey{"snowball", 2}]; ok {
		t.Fatal("override still stored after clear")
	}
}

func TestApplyRowEditReportsSaveFailure(t *testing.T) {
	st := newFakeStore()
	a := loadedApp(t, st)
	st.saveErr = errors.New("disk full")

	a = a.applyRowEdit(0, 250)
	if a.res.Plan.Periods[0].RowExtraPayment == nil {
		t.Fatal("edit not applied to the plan")
	}
	if !strings.Contains(a.notice, "disk full") {
		t.Fatalf("notice = %q, want the save error", a.notice)
	}
}

func TestApplyRowEditRejectsBadRow(t *testing.T) {
	a := loadedApp(t, newFakeStore())
	n := len(a.res.Plan.Periods)
	a = a.applyRowEdit(n+10, 100)
	if a.notice == "" {
		t.Fatal("out-of-range row produced no notice")
	}
}

func TestSettingsSaveExtraCash(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := loadedApp(t, newFakeStore())
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldExtra

	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("$250")
	m, cmd := a.updateSettingsInput(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)

	if a.settings.saveErr != nil {
		t.Fatalf("saveErr = %v", a.settings.saveErr)
	}
	if a.extra != 250 {
		t.Fatalf("extra = %v, want 250", a.extra)
	}
	if cmd == nil {
		t.Fatal("extra cash change did not reload")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.ExtraCash != 250 {
		t.Fatalf("saved extra = %v, want 250", cfg.General.ExtraCash)
	}
}

func TestSettingsSaveRejectsBadValues(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tests := []struct {
		field int
		value string
	}{
		{settingsFieldStrategy, "fastest"},
		{settingsFieldExtra, "-5"},
		{settingsFieldOrdering, "random"},
		{settingsFieldResize, "maybe"},
		{settingsFieldMissing, "drop"},
		{settingsFieldTheme, "neon"},
	}
	for _, tt := range tests {
		a := loadedApp(t, newFakeStore())
		a.settings.cursor = tt.field
		m, _ := a.settingsStartEdit()
		a = m.(App)
		a.settings.input.SetValue(tt.value)
		m, _ = a.updateSettingsInput(tea.KeyMsg{Type: tea.KeyEnter})
		if m.(App).settings.saveErr == nil {
			t.Fatalf("field %d = %q saved, want error", tt.field, tt.value)
		}
	}
	if config.Exists() {
		t.Fatal("invalid values wrote a config file")
	}
}

func TestSaveSetupConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { theme.SetActive("flexoki-dark") })

	a := loadedApp(t, newFakeStore())
	a.setupVals = newSetupValues(a.cfg)
	a.setupVals.extra = "1,200"
	a.setupVals.strategy = "avalanche"
	a.setupVals.theme = "tokyo-night"

	if err := a.saveSetupConfig(); err != nil {
		t.Fatalf("saveSetupConfig: %v", err)
	}
	if a.kind != strategy.Avalanche || a.extra != 1200 {
		t.Fatalf("kind=%s extra=%v, want avalanche 1200", a.kind, a.extra)
	}
	if theme.Active.Name != "tokyo-night" {
		t.Fatalf("theme = %s, want tokyo-night", theme.Active.Name)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultStrategy != "avalanche" || cfg.General.ExtraCash != 1200 {
		t.Fatalf("saved config = %+v", cfg.General)
	}
}

func TestValidateExtra(t *testing.T) {
	for _, s := range []string{"0", "150", "$1,000.50"} {
		if err := validateExtra(s); err != nil {
			t.Fatalf("validateExtra(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "abc", "-1"} {
		if err := validateExtra(s); err == nil {
			t.Fatalf("validateExtra(%q) accepted", s)
		}
	}
}
