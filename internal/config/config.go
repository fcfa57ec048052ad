// Package config loads and saves payoff's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
)

// Config holds all payoff configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Simulation SimulationConfig `toml:"simulation"`
	Strategy   StrategyConfig   `toml:"strategy"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath          string  `toml:"db_path,omitempty"`
	DefaultStrategy string  `toml:"default_strategy"`
	ExtraCash       float64 `toml:"extra_cash"`
	StartDate       string  `toml:"start_date,omitempty"` // YYYY-MM-DD; empty means today
}

// SimulationConfig holds simulator guards.
type SimulationConfig struct {
	MaxIterations     int     `toml:"max_iterations"`
	StagnationEpsilon float64 `toml:"stagnation_epsilon"`
	PeriodDays        int     `toml:"period_days"`
	Ordering          string  `toml:"ordering"`
	ResizeOnOverride  bool    `toml:"resize_on_override"`
}

// StrategyConfig holds strategy settings.
type StrategyConfig struct {
	CustomMissing string `toml:"custom_missing"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	opts := simulator.DefaultOptions()
	return Config{
		General: GeneralConfig{
			DefaultStrategy: string(strategy.Snowball),
		},
		Simulation: SimulationConfig{
			MaxIterations:     opts.MaxIterations,
			StagnationEpsilon: opts.StagnationEpsilon,
			PeriodDays:        opts.PeriodDays,
			Ordering:          string(opts.Ordering),
		},
		Strategy: StrategyConfig{
			CustomMissing: string(strategy.MissingAppend),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "payoff")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "payoff")
}

// DBPath returns the configured database path, defaulting to the data dir.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "loans.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// ApplyEnv overrides cfg with PAYOFF_DB, PAYOFF_EXTRA_CASH and PAYOFF_STRATEGY.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("PAYOFF_DB"); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv("PAYOFF_STRATEGY"); v != "" {
		cfg.General.DefaultStrategy = v
	}
	if v := os.Getenv("PAYOFF_EXTRA_CASH"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PAYOFF_EXTRA_CASH: invalid amount %q", v)
		}
		cfg.General.ExtraCash = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	if _, err := strategy.Parse(c.General.DefaultStrategy); err != nil {
		errs = append(errs, fmt.Sprintf("general.default_strategy: %v", err))
	}
	if c.General.ExtraCash < 0 {
		errs = append(errs, "general.extra_cash must not be negative")
	}
	if c.General.StartDate != "" {
		if _, err := model.ParseDate("general.start_date", c.General.StartDate); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Simulation.MaxIterations <= 0 {
		errs = append(errs, "simulation.max_iterations must be positive")
	}
	if c.Simulation.StagnationEpsilon <= 0 {
		errs = append(errs, "simulation.stagnation_epsilon must be positive")
	}
	if c.Simulation.PeriodDays <= 0 {
		errs = append(errs, "simulation.period_days must be positive")
	}
	switch simulator.Ordering(c.Simulation.Ordering) {
	case simulator.OrderBalance, simulator.OrderStrategy:
	default:
		errs = append(errs, fmt.Sprintf("simulation.ordering: unknown ordering %q (want balance or strategy)", c.Simulation.Ordering))
	}
	if _, err := strategy.ParseMissingPolicy(c.Strategy.CustomMissing); err != nil {
		errs = append(errs, "strategy.custom_missing: "+err.Error())
	}

	if len(errs) > 0 {
		return errors.New("invalid config:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}

// SimulatorOptions converts the simulation settings. Call Validate first.
func (c Config) SimulatorOptions() simulator.Options {
	opts := simulator.Options{
		MaxIterations:     c.Simulation.MaxIterations,
		StagnationEpsilon: c.Simulation.StagnationEpsilon,
		PeriodDays:        c.Simulation.PeriodDays,
		Ordering:          simulator.Ordering(c.Simulation.Ordering),
	}
	if c.General.StartDate != "" {
		if t, err := time.Parse(model.DateLayout, c.General.StartDate); err == nil {
			opts.Start = t
		}
	}
	return opts
}
