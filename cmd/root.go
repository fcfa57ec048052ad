package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/payoffplan/payoff/internal/config"
	"github.com/payoffplan/payoff/internal/logging"
	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/pipeline"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/store"
	"github.com/payoffplan/payoff/internal/strategy"
)

var (
	flagDB       string
	flagStrategy string
	flagExtra    float64
	flagStart    string
	flagQuiet    bool
	flagVerbose  bool
	flagDebug    bool
)

var (
	cfg    config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:               "payoff",
	Short:             "Loan payoff planner",
	Long:              "Track loans and simulate month-by-month payoff plans under snowball, avalanche or custom strategies.",
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	RunE:              runPlan,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Loan database path (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Strategy: snowball, avalanche or custom")
	rootCmd.PersistentFlags().Float64VarP(&flagExtra, "extra", "e", 0, "Monthly extra cash on top of minimums")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "First payment date (YYYY-MM-DD, default today)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log informational messages")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log debug messages")

	addPlanFlags(rootCmd)
}

// initApp loads .env, the config file and environment overrides, then applies
// command-line flags on top.
func initApp(cmd *cobra.Command, _ []string) error {
	logger = logging.New(os.Stderr, logging.Level(flagVerbose, flagDebug))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("ignoring unreadable .env")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.General.DBPath = flagDB
	}
	if flags.Changed("strategy") {
		cfg.General.DefaultStrategy = flagStrategy
	}
	if flags.Changed("extra") {
		cfg.General.ExtraCash = flagExtra
	}
	if flags.Changed("start") {
		cfg.General.StartDate = flagStart
	}
	return cfg.Validate()
}

func progress(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.DBPath(), logging.Component(logger, "store"))
}

func strategyKind() strategy.Kind {
	kind, _ := strategy.Parse(cfg.General.DefaultStrategy) // validated in initApp
	return kind
}

func missingPolicy() strategy.MissingPolicy {
	p, _ := strategy.ParseMissingPolicy(cfg.Strategy.CustomMissing)
	return p
}

func newSimulator() *simulator.Simulator {
	return simulator.New(cfg.SimulatorOptions()).WithLogger(logging.Component(logger, "simulator"))
}

// buildPlan loads loans from st and simulates the configured strategy.
func buildPlan(st *store.Store, overrides map[int]float64, skipStored bool) (*pipeline.Result, error) {
	return pipeline.Load(st, pipeline.Request{
		Kind:       strategyKind(),
		ExtraCash:  cfg.General.ExtraCash,
		Sim:        newSimulator(),
		Missing:    missingPolicy(),
		Resize:     cfg.Simulation.ResizeOnOverride,
		Overrides:  overrides,
		SkipStored: skipStored,
	}, logging.Component(logger, "pipeline"))
}

// warnIncomplete prints why a plan stops short of payoff.
func warnIncomplete(plan model.Plan) {
	if plan.Complete() {
		return
	}
	reason := map[model.StopReason]string{
		model.StopIterationCap:  "the plan hit the period limit",
		model.StopStagnation:    "balances stopped shrinking; minimums may not cover interest",
		model.StopNoPayments:    "no payments could be made",
		simulator.StopWindowEnd: "the edited plan ends before payoff",
	}[plan.Stop]
	if reason == "" {
		reason = string(plan.Stop)
	}
	fmt.Println(cliWarning(fmt.Sprintf("Plan incomplete: %s (%s still owed)", reason, money(plan.FinalBalance()))))
	logger.WithFields(logrus.Fields{
		"stop":    plan.Stop,
		"balance": plan.FinalBalance(),
	}).Info("incomplete plan")
}
