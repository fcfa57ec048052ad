// Package strategy implements the loan prioritization strategies.
//
// Each strategy is a pure ordering of loans plus a shortcut that feeds that
// ordering into a simulator. The set is closed: SmallestBalanceFirst,
// HighestRateFirst and CustomOrder.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
)

// ErrUnknownStrategy is returned by Parse for an unrecognized name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind names a strategy.
type Kind string

const (
	Snowball  Kind = "snowball"
	Avalanche Kind = "avalanche"
	Custom    Kind = "custom"
)

// Kinds lists every strategy in display order.
var Kinds = []Kind{Snowball, Avalanche, Custom}

// Strategy orders loans for payoff and generates plans from that order.
type Strategy interface {
	Kind() Kind
	Name() string
	// Prioritize returns a reordered copy of loans; the input is not modified.
	Prioritize(loans []model.Loan) []model.Loan
	// Less reports whether a ranks ahead of b.
	Less(a, b model.Loan) bool
	GeneratePaymentPlan(loans []model.Loan, extraCash float64) model.Plan
}

// Parse maps a user-supplied name to a Kind.
func Parse(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snowball", "smallest-balance", "smallest-balance-first":
		return Snowball, nil
	case "avalanche", "highest-rate", "highest-rate-first":
		return Avalanche, nil
	case "custom", "custom-order":
		return Custom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// ID returns the persisted strategy_id for a kind.
func ID(k Kind) int {
	switch k {
	case Avalanche:
		return 2
	case Custom:
		return 3
	default:
		return 1
	}
}

// New builds the strategy for kind. priority and missing only apply to Custom.
func New(kind Kind, sim *simulator.Simulator, priority []int64, missing MissingPolicy) (Strategy, error) {
	switch kind {
	case Snowball:
		return SmallestBalanceFirst{Sim: sim}, nil
	case Avalanche:
		return HighestRateFirst{Sim: sim}, nil
	case Custom:
		return NewCustomOrder(sim, priority, missing), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
}

func sorted(loans []model.Loan, less func(a, b model.Loan) bool) []model.Loan {
	out := append([]model.Loan(nil), loans...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// generate runs the simulator ranked by s. A nil sim uses the default options.
func generate(s Strategy, sim *simulator.Simulator, loans []model.Loan, extraCash float64) model.Plan {
	if sim == nil {
		sim = simulator.New(simulator.DefaultOptions())
	}
	plan := sim.WithRanker(s.Less).Simulate(s.Prioritize(loans), extraCash)
	plan.Strategy = string(s.Kind())
	return plan
}

// SmallestBalanceFirst pays the smallest current balance first (snowball).
type SmallestBalanceFirst struct {
	Sim *simulator.Simulator
}

func (SmallestBalanceFirst) Kind() Kind   { return Snowball }
func (SmallestBalanceFirst) Name() string { return "Smallest balance first" }

func (SmallestBalanceFirst) Less(a, b model.Loan) bool {
	return a.CurrentBalance < b.CurrentBalance
}

func (s SmallestBalanceFirst) Prioritize(loans []model.Loan) []model.Loan {
	return sorted(loans, s.Less)
}

func (s SmallestBalanceFirst) GeneratePaymentPlan(loans []model.Loan, extraCash float64) model.Plan {
	return generate(s, s.Sim, loans, extraCash)
}

// HighestRateFirst pays the highest interest rate first (avalanche).
type HighestRateFirst struct {
	Sim *simulator.Simulator
}

func (HighestRateFirst) Kind() Kind   { return Avalanche }
func (HighestRateFirst) Name() string { return "Highest rate first" }

func (HighestRateFirst) Less(a, b model.Loan) bool {
	return a.InterestRate > b.InterestRate
}

func (s HighestRateFirst) Prioritize(loans []model.Loan) []model.Loan {
	return sorted(loans, s.Less)
}

func (s HighestRateFirst) GeneratePaymentPlan(loans []model.Loan, extraCash float64) model.Plan {
	return generate(s, s.Sim, loans, extraCash)
}
