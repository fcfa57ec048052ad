// Package pipeline builds plans from stored loans and aggregates them into
// summaries and strategy comparisons.
package pipeline

import (
	"sort"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
)

// Summarize computes the top-level statistics of a plan built from loans.
func Summarize(plan model.Plan, loans []model.Loan) model.PlanSummary {
	s := model.PlanSummary{
		Strategy:      plan.Strategy,
		Loans:         len(loans),
		Months:        len(plan.Periods),
		TotalPaid:     plan.TotalPaid(),
		TotalInterest: plan.TotalInterest(),
		PayoffDate:    plan.PayoffDate(),
		Complete:      plan.Complete(),
		Stop:          plan.Stop,
	}
	balances := make([]float64, len(loans))
	for i, l := range loans {
		balances[i] = l.CurrentBalance
	}
	s.StartBalance = model.SumCents(balances...)
	if len(plan.Periods) > 0 {
		s.MinimumTotal = plan.Periods[0].MinimumTotalPayment
		s.MonthlyBudget = plan.Periods[0].AdjustedTotalPayment
	}
	return s
}

// AggregateLoans computes per-loan totals and payoff dates, in plan order.
func AggregateLoans(plan model.Plan, loans []model.Loan) []model.LoanStats {
	labels := simulator.Labels(loans)
	stats := make([]model.LoanStats, len(loans))
	for i, l := range loans {
		stats[i] = model.LoanStats{Label: labels[i], StartBalance: l.CurrentBalance}
	}

	for _, p := range plan.Periods {
		for i := range stats {
			st := &stats[i]
			st.TotalPaid += p.Payments[st.Label]
			if st.PayoffPeriod == 0 && st.StartBalance > 0 && p.Balances[st.Label] <= model.Epsilon {
				st.PayoffPeriod = p.Index + 1
				st.PayoffDate = p.Date
			}
		}
	}
	for i := range stats {
		stats[i].TotalPaid = model.RoundCents(stats[i].TotalPaid)
	}
	return stats
}

// AggregateYears rolls periods up by calendar year, oldest first.
func AggregateYears(plan model.Plan) []model.YearlyStats {
	yearMap := make(map[int]*model.YearlyStats)
	prev := map[string]float64{}
	for _, p := range plan.Periods {
		y := p.Date.Year()
		ys, ok := yearMap[y]
		if !ok {
			ys = &model.YearlyStats{Year: y}
			yearMap[y] = ys
		}
		ys.Periods++
		ys.Paid = model.RoundCents(ys.Paid + p.TotalPayment)
		ys.Interest = model.RoundCents(ys.Interest + p.Interest)
		ys.EndBalance = p.TotalBalance
		for label, bal := range p.Balances {
			was, seen := prev[label]
			if bal <= model.Epsilon && (!seen || was > model.Epsilon) && p.Payments[label] > 0 {
				ys.Retired++
			}
			prev[label] = bal
		}
	}

	years := make([]model.YearlyStats, 0, len(yearMap))
	for _, ys := range yearMap {
		years = append(years, *ys)
	}
	sort.Slice(years, func(i, j int) bool {
		return years[i].Year < years[j].Year
	})
	return years
}
