// Package simulator turns an ordered set of loans and a monthly extra-cash
// budget into a month-by-month payoff plan.
//
// Every period pays each open loan its minimum, then pours the extra cash plus
// any minimums freed by loans retired this period into the smallest open
// balance first. The per-period budget (sum of original minimums plus extra
// cash) stays fixed for the whole plan.
package simulator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/model"
)

// Ordering selects how open loans are ranked for each period.
type Ordering string

const (
	// OrderBalance re-sorts by current balance, smallest first, every period.
	OrderBalance Ordering = "balance"
	// OrderStrategy re-applies the strategy's own ranking every period.
	OrderStrategy Ordering = "strategy"
)

// Options configures a Simulator. Zero fields take the DefaultOptions value.
type Options struct {
	MaxIterations     int
	StagnationEpsilon float64
	PeriodDays        int
	Start             time.Time // first period date; zero means today
	Ordering          Ordering
}

// DefaultOptions returns the standard guards: 1000 periods, 0.01 stagnation,
// 30-day periods.
func DefaultOptions() Options {
	return Options{
		MaxIterations:     1000,
		StagnationEpsilon: 0.01,
		PeriodDays:        30,
		Ordering:          OrderBalance,
	}
}

// Ranker reports whether loan a should receive money before loan b.
type Ranker func(a, b model.Loan) bool

// Simulator runs payoff simulations. It holds no per-run state and is safe to
// share between goroutines.
type Simulator struct {
	opts Options
	rank Ranker
	log  logrus.FieldLogger
}

// New creates a Simulator, filling unset options with defaults.
func New(opts Options) *Simulator {
	def := DefaultOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.StagnationEpsilon <= 0 {
		opts.StagnationEpsilon = def.StagnationEpsilon
	}
	if opts.PeriodDays <= 0 {
		opts.PeriodDays = def.PeriodDays
	}
	if opts.Ordering == "" {
		opts.Ordering = def.Ordering
	}
	return &Simulator{opts: opts, log: logrus.StandardLogger()}
}

// Options returns the effective options.
func (s *Simulator) Options() Options { return s.opts }

// WithLogger returns a copy of s that logs to l.
func (s *Simulator) WithLogger(l logrus.FieldLogger) *Simulator {
	c := *s
	c.log = l
	return &c
}

// WithRanker returns a copy of s that ranks loans with r when the ordering is
// OrderStrategy.
func (s *Simulator) WithRanker(r Ranker) *Simulator {
	c := *s
	c.rank = r
	return &c
}

// account is the private working copy of one loan during a run.
type account struct {
	loan        model.Loan
	label       string
	adjustedMin float64
}

func (a *account) open() bool {
	return a.loan.CurrentBalance > model.Epsilon
}

// pay reduces the balance by amount, snapping dust to zero.
func (a *account) pay(amount float64, date time.Time) {
	a.loan.CurrentBalance = model.RoundCents(a.loan.CurrentBalance - amount)
	if a.loan.CurrentBalance < model.Epsilon {
		a.loan.CurrentBalance = 0
	}
	a.loan.TotalPaid = model.RoundCents(a.loan.TotalPaid + amount)
	a.loan.LastPaymentDate = date
}

func (a *account) retire() {
	a.loan.CurrentBalance = 0
	a.adjustedMin = 0
}

// Labels returns the map keys used for loans in a plan: the loan name, made
// unique with a position suffix when two loans share a name.
func Labels(loans []model.Loan) []string {
	labels := make([]string, len(loans))
	used := make(map[string]bool, len(loans))
	for i, l := range loans {
		label := l.Name
		if used[label] {
			label = fmt.Sprintf("%s #%d", l.Name, i+1)
		}
		for used[label] {
			label += "'"
		}
		used[label] = true
		labels[i] = label
	}
	return labels
}

func newAccounts(loans []model.Loan) []*account {
	labels := Labels(loans)
	accts := make([]*account, len(loans))
	for i, l := range loans {
		a := &account{loan: l, label: labels[i], adjustedMin: l.MonthlyMinPayment}
		if !a.open() {
			a.retire()
		}
		accts[i] = a
	}
	return accts
}

func minimumTotal(loans []model.Loan) float64 {
	xs := make([]float64, len(loans))
	for i, l := range loans {
		xs[i] = l.MonthlyMinPayment
	}
	return model.SumCents(xs...)
}

func allRetired(accts []*account) bool {
	for _, a := range accts {
		if a.open() {
			return false
		}
	}
	return true
}

func (s *Simulator) start() time.Time {
	if s.opts.Start.IsZero() {
		return model.Today()
	}
	return s.opts.Start
}

// Simulate produces the payoff plan for loans, which are taken in priority
// order and never modified. Negative extra cash counts as zero. A plan that
// hits a guard before payoff is returned with Complete() false and Stop set.
func (s *Simulator) Simulate(loans []model.Loan, extraCash float64) model.Plan {
	extraCash = math.Max(0, extraCash)
	accts := newAccounts(loans)
	plan := model.Plan{
		Loans:     Labels(loans),
		ExtraCash: extraCash,
	}
	s.run(&plan, accts, minimumTotal(loans), extraCash, s.start())
	return plan
}

// run appends periods until payoff or a guard trips.
func (s *Simulator) run(plan *model.Plan, accts []*account, minTotal, extra float64, date time.Time) {
	for {
		if allRetired(accts) {
			plan.Stop = model.StopPaidOff
			return
		}
		if len(plan.Periods) >= s.opts.MaxIterations {
			plan.Stop = model.StopIterationCap
			s.log.WithField("periods", len(plan.Periods)).Debug("simulation hit iteration cap")
			return
		}

		p := s.step(accts, len(plan.Periods), date, extra, minTotal)
		plan.Periods = append(plan.Periods, p)

		if p.TotalPayment <= model.Epsilon {
			plan.Stop = model.StopNoPayments
			s.log.WithField("period", p.Index).Debug("simulation stopped: no payments made")
			return
		}
		// Only recorded periods are compared, so a plan always has at least
		// two periods before stagnation can stop it.
		if n := len(plan.Periods); n >= 2 &&
			math.Abs(plan.Periods[n-2].TotalBalance-p.TotalBalance) < s.opts.StagnationEpsilon {
			plan.Stop = model.StopStagnation
			s.log.WithFields(logrus.Fields{
				"period":  p.Index,
				"balance": p.TotalBalance,
			}).Debug("simulation stopped: balance stagnated")
			return
		}
		date = date.AddDate(0, 0, s.opts.PeriodDays)
	}
}

// order ranks accounts in place. Sorting is stable, so ties keep the order of
// the previous period (and initially the caller's order).
func (s *Simulator) order(accts []*account) {
	if s.opts.Ordering == OrderStrategy && s.rank != nil {
		sort.SliceStable(accts, func(i, j int) bool {
			return s.rank(accts[i].loan, accts[j].loan)
		})
		return
	}
	sort.SliceStable(accts, func(i, j int) bool {
		return accts[i].loan.CurrentBalance < accts[j].loan.CurrentBalance
	})
}

// step simulates one period over accts and returns its record.
func (s *Simulator) step(accts []*account, index int, date time.Time, extra, minTotal float64) model.Period {
	budget := model.RoundCents(minTotal + extra)
	p := model.Period{
		Index:                index,
		Date:                 date,
		Payments:             make(map[string]float64, len(accts)),
		Balances:             make(map[string]float64, len(accts)),
		ExtraCash:            extra,
		MinimumTotalPayment:  minTotal,
		AdjustedTotalPayment: budget,
	}
	for _, a := range accts {
		p.Payments[a.label] = 0
	}

	var paid, freed, interest float64

	// Minimums, after monthly interest.
	s.order(accts)
	for _, a := range accts {
		if !a.open() {
			continue
		}
		if !a.loan.InForbearance(date) {
			accrued := model.RoundCents(a.loan.CurrentBalance * a.loan.InterestRate / 100 / 12)
			a.loan.CurrentBalance = model.RoundCents(a.loan.CurrentBalance + accrued)
			interest += accrued
		}
		amt := math.Min(a.adjustedMin, a.loan.CurrentBalance)
		if amt > 0 {
			a.pay(amt, date)
			p.Payments[a.label] = model.RoundCents(p.Payments[a.label] + amt)
			paid += amt
		}
		if !a.open() {
			freed += a.loan.MonthlyMinPayment - amt
			a.retire()
		}
	}

	// Extra cash plus freed minimums, smallest balance first.
	s.order(accts)
	paid += disburse(accts, model.RoundCents(extra+freed), &p, date)

	// Anything still short of the budget, e.g. minimums of loans retired in
	// earlier periods.
	paid = model.RoundCents(paid)
	if short := model.RoundCents(budget - paid); short > model.Epsilon {
		paid = model.RoundCents(paid + disburse(accts, short, &p, date))
	}

	p.Interest = model.RoundCents(interest)
	p.TotalPayment = budget
	if budget-paid > model.Epsilon {
		// Balances could not absorb the whole budget.
		p.TotalPayment = paid
	}

	balances := make([]float64, 0, len(accts))
	for _, a := range accts {
		p.Balances[a.label] = a.loan.CurrentBalance
		balances = append(balances, a.loan.CurrentBalance)
	}
	p.TotalBalance = model.SumCents(balances...)
	return p
}

// disburse pays amount into open accounts in their current order and returns
// what was actually paid.
func disburse(accts []*account, amount float64, p *model.Period, date time.Time) float64 {
	var paid float64
	for _, a := range accts {
		if amount <= model.Epsilon {
			break
		}
		if !a.open() {
			continue
		}
		amt := model.RoundCents(math.Min(amount, a.loan.CurrentBalance))
		a.pay(amt, date)
		p.Payments[a.label] = model.RoundCents(p.Payments[a.label] + amt)
		paid += amt
		amount = model.RoundCents(amount - amt)
		if !a.open() {
			a.retire()
		}
	}
	return model.RoundCents(paid)
}
