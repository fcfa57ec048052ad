package pipeline

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
)

// ProgressFunc is called as strategies finish. current is the number done so
// far, total is the number requested.
type ProgressFunc func(current, total int)

// Comparison is the outcome of running several strategies over the same loans.
type Comparison struct {
	Plans []model.Plan
	Rows  []model.StrategyComparison
}

// Compare simulates every kind concurrently over the loans in src. Each
// goroutine prioritizes its own copy of the loans. Results keep the order of
// kinds.
func Compare(ctx context.Context, src Source, kinds []strategy.Kind, extraCash float64,
	sim *simulator.Simulator, missing strategy.MissingPolicy, progressFn ProgressFunc) (*Comparison, error) {
	loans, err := src.ListLoans()
	if err != nil {
		return nil, err
	}

	strategies := make([]strategy.Strategy, len(kinds))
	for i, k := range kinds {
		if strategies[i], err = NewStrategy(src, k, sim, missing); err != nil {
			return nil, err
		}
	}

	plans := make([]model.Plan, len(kinds))
	summaries := make([]model.PlanSummary, len(kinds))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			own := append([]model.Loan(nil), loans...)
			ordered := s.Prioritize(own)
			plans[i] = s.GeneratePaymentPlan(ordered, extraCash)
			summaries[i] = Summarize(plans[i], ordered)
			n := done.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(kinds))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{Plans: plans, Rows: Rank(summaries)}, nil
}

// Rank compares summaries against the cheapest and the fastest complete
// plans. The cheapest complete plan is recommended, ties going to the faster.
func Rank(summaries []model.PlanSummary) []model.StrategyComparison {
	rows := make([]model.StrategyComparison, len(summaries))
	best := -1
	minMonths := 0
	for i, s := range summaries {
		rows[i].Summary = s
		if !s.Complete {
			continue
		}
		if minMonths == 0 || s.Months < minMonths {
			minMonths = s.Months
		}
		if best < 0 ||
			s.TotalInterest < summaries[best].TotalInterest-model.Epsilon ||
			(s.TotalInterest <= summaries[best].TotalInterest+model.Epsilon && s.Months < summaries[best].Months) {
			best = i
		}
	}
	if best < 0 {
		return rows
	}
	rows[best].Recommended = true
	for i, s := range summaries {
		if !s.Complete {
			continue
		}
		rows[i].InterestDelta = model.RoundCents(s.TotalInterest - summaries[best].TotalInterest)
		rows[i].MonthsDelta = s.Months - minMonths
	}
	return rows
}
