package model

import (
	"maps"
	"time"
)

// StopReason records why a simulation ended.
type StopReason string

const (
	StopPaidOff      StopReason = "paid_off"
	StopIterationCap StopReason = "iteration_cap"
	StopStagnation   StopReason = "stagnation"
	StopNoPayments   StopReason = "no_payments"
)

// Period is one simulated month of a plan.
type Period struct {
	Index                int
	Date                 time.Time
	Payments             map[string]float64 // loan label -> amount paid this period
	Balances             map[string]float64 // loan label -> balance after payment
	Interest             float64            // interest accrued across all loans
	ExtraCash            float64            // extra cash in effect for the period
	TotalPayment         float64
	TotalBalance         float64
	MinimumTotalPayment  float64
	AdjustedTotalPayment float64

	// RowExtraPayment is set only when the period's extra cash was edited by hand.
	RowExtraPayment *float64
}

// Clone returns a deep copy of p.
func (p Period) Clone() Period {
	c := p
	c.Payments = maps.Clone(p.Payments)
	c.Balances = maps.Clone(p.Balances)
	if p.RowExtraPayment != nil {
		v := *p.RowExtraPayment
		c.RowExtraPayment = &v
	}
	return c
}

// Plan is an ordered payoff schedule.
type Plan struct {
	Strategy  string
	Loans     []string // labels in caller order
	ExtraCash float64
	Periods   []Period
	Stop      StopReason
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	c := p
	c.Loans = append([]string(nil), p.Loans...)
	c.Periods = make([]Period, len(p.Periods))
	for i, period := range p.Periods {
		c.Periods[i] = period.Clone()
	}
	return c
}

// FinalBalance is the total balance after the last period.
func (p Plan) FinalBalance() float64 {
	if len(p.Periods) == 0 {
		return 0
	}
	return p.Periods[len(p.Periods)-1].TotalBalance
}

// Complete reports whether every loan reaches zero within the plan.
func (p Plan) Complete() bool {
	return p.FinalBalance() <= Epsilon
}

// TotalPaid sums every payment in the plan.
func (p Plan) TotalPaid() float64 {
	xs := make([]float64, 0, len(p.Periods))
	for _, period := range p.Periods {
		for _, amt := range period.Payments {
			xs = append(xs, amt)
		}
	}
	return SumCents(xs...)
}

// TotalInterest sums interest accrued over the plan.
func (p Plan) TotalInterest() float64 {
	xs := make([]float64, 0, len(p.Periods))
	for _, period := range p.Periods {
		xs = append(xs, period.Interest)
	}
	return SumCents(xs...)
}

// PayoffDate returns the date of the last period, or the zero time for an
// empty or incomplete plan.
func (p Plan) PayoffDate() time.Time {
	if len(p.Periods) == 0 || !p.Complete() {
		return time.Time{}
	}
	return p.Periods[len(p.Periods)-1].Date
}
