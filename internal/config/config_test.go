package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/payoffplan/payoff/internal/simulator"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultStrategy != "snowball" || cfg.Simulation.MaxIterations != 1000 {
		t.Fatalf("Load = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.ExtraCash = 250
	cfg.Simulation.Ordering = "strategy"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "payoff", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general]\nextra_cash = 75.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.ExtraCash != 75.5 || cfg.Simulation.PeriodDays != 30 {
		t.Fatalf("Load = %+v", cfg)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "payoff", "config.toml")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("[general\n"), 0o600)

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("Load error = %v, want parse error", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PAYOFF_DB", "/tmp/x.db")
	t.Setenv("PAYOFF_EXTRA_CASH", "120.5")
	t.Setenv("PAYOFF_STRATEGY", "avalanche")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.DBPath() != "/tmp/x.db" || cfg.General.ExtraCash != 120.5 || cfg.General.DefaultStrategy != "avalanche" {
		t.Fatalf("ApplyEnv = %+v", cfg.General)
	}

	t.Setenv("PAYOFF_EXTRA_CASH", "lots")
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("ApplyEnv accepted a bad amount")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{"defaults", func(*Config) {}, false, ""},
		{"bad strategy", func(c *Config) { c.General.DefaultStrategy = "fastest" }, true, "default_strategy"},
		{"negative extra", func(c *Config) { c.General.ExtraCash = -1 }, true, "extra_cash"},
		{"bad start date", func(c *Config) { c.General.StartDate = "tomorrow" }, true, "start_date"},
		{"bad ordering", func(c *Config) { c.Simulation.Ordering = "random" }, true, "ordering"},
		{"bad policy", func(c *Config) { c.Strategy.CustomMissing = "drop" }, true, "custom_missing"},
		{"zero guards", func(c *Config) {
			c.Simulation.MaxIterations = 0
			c.Simulation.StagnationEpsilon = 0
		}, true, "max_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("Validate() error = %q, want it to mention %q", err, tt.errorString)
			}
		})
	}
}

func TestSimulatorOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.StartDate = "2025-03-01"
	cfg.Simulation.Ordering = "strategy"
	opts := cfg.SimulatorOptions()
	if opts.Start.Format("2006-01-02") != "2025-03-01" || opts.Ordering != simulator.OrderStrategy {
		t.Fatalf("SimulatorOptions = %+v", opts)
	}
}
