package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
)

// Source is the part of the loan store the pipeline reads.
type Source interface {
	ListLoans() ([]model.Loan, error)
	Priority(strategyID int) ([]int64, error)
	Overrides(strategy string) (map[int]float64, error)
}

// Request describes one plan to build.
type Request struct {
	Kind      strategy.Kind
	ExtraCash float64
	Sim       *simulator.Simulator
	Missing   strategy.MissingPolicy
	Resize    bool
	// Overrides are applied after the stored ones and win on conflict.
	Overrides map[int]float64
	// SkipStored ignores overrides saved in the store.
	SkipStored bool
}

// Result is a built plan with everything needed to edit it further.
type Result struct {
	Loans    []model.Loan // in strategy order, as fed to the simulator
	Strategy strategy.Strategy
	Plan     model.Plan
	Skipped  []int // override rows outside the plan
}

// Load reads loans and strategy settings from src and builds the plan,
// applying row overrides.
func Load(src Source, req Request, log logrus.FieldLogger) (*Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	loans, err := src.ListLoans()
	if err != nil {
		return nil, err
	}
	strat, err := NewStrategy(src, req.Kind, req.Sim, req.Missing)
	if err != nil {
		return nil, err
	}

	ordered := strat.Prioritize(loans)
	res := &Result{
		Loans:    ordered,
		Strategy: strat,
		Plan:     strat.GeneratePaymentPlan(ordered, req.ExtraCash),
	}

	rows := map[int]float64{}
	if !req.SkipStored {
		stored, err := src.Overrides(string(req.Kind))
		if err != nil {
			return nil, err
		}
		for k, v := range stored {
			rows[k] = v
		}
	}
	for k, v := range req.Overrides {
		rows[k] = v
	}
	if len(rows) > 0 {
		plan, skipped, err := res.Simulator(req.Sim).ApplyOverrides(res.Plan, ordered, rows, req.ExtraCash,
			simulator.RecalcOptions{Resize: req.Resize})
		if err != nil {
			return nil, fmt.Errorf("applying overrides: %w", err)
		}
		plan.Strategy = res.Plan.Strategy
		res.Plan = plan
		res.Skipped = skipped
		if len(skipped) > 0 {
			log.WithField("rows", skipped).Warn("overrides beyond the end of the plan were ignored")
		}
	}

	log.WithFields(logrus.Fields{
		"strategy": req.Kind,
		"loans":    len(ordered),
		"periods":  len(res.Plan.Periods),
	}).Debug("plan built")
	return res, nil
}

// NewStrategy builds kind, loading the custom priority from src when needed.
func NewStrategy(src Source, kind strategy.Kind, sim *simulator.Simulator, missing strategy.MissingPolicy) (strategy.Strategy, error) {
	var priority []int64
	if kind == strategy.Custom {
		var err error
		priority, err = src.Priority(strategy.ID(kind))
		if err != nil {
			return nil, err
		}
	}
	return strategy.New(kind, sim, priority, missing)
}

// Simulator returns sim ranked by the result's strategy, for editing the plan.
func (r *Result) Simulator(sim *simulator.Simulator) *simulator.Simulator {
	return sim.WithRanker(r.Strategy.Less)
}
