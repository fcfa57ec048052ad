package model

import (
	"math"
	"time"
)

// maxScheduleEntries bounds schedules whose payment never covers interest.
const maxScheduleEntries = 1000

// AmortizationEntry is one payment in a single-loan schedule.
type AmortizationEntry struct {
	Date      time.Time
	Payment   float64
	Principal float64
	Interest  float64
	Balance   float64
}

// AmortizationSchedule pays MonthlyMinPayment+ExtraPayment every 30 days from
// FirstDueDate with monthly interest of rate/12. It stops at a zero balance,
// when the payment no longer reduces principal, or after 1000 entries.
func (l Loan) AmortizationSchedule() []AmortizationEntry {
	var schedule []AmortizationEntry
	balance := l.CurrentBalance
	rate := l.InterestRate / 100 / 12
	payment := l.MonthlyMinPayment + l.ExtraPayment
	date := l.FirstDueDate

	for balance > Epsilon && len(schedule) < maxScheduleEntries {
		interest := RoundCents(balance * rate)
		principal := RoundCents(payment - interest)
		if principal <= 0 {
			break
		}
		pay := payment
		if principal > balance {
			principal = balance
			pay = RoundCents(principal + interest)
		}
		balance = RoundCents(balance - principal)
		schedule = append(schedule, AmortizationEntry{
			Date:      date,
			Payment:   RoundCents(pay),
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
		date = date.AddDate(0, 0, 30)
	}
	return schedule
}

// MonthlyPayment is the level annuity payment that retires principal in
// termMonths at annualRate percent.
func MonthlyPayment(principal, annualRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return RoundCents(principal / float64(termMonths))
	}
	return RoundCents(principal * r / (1 - math.Pow(1+r, -float64(termMonths))))
}

// WeightedAverageLife returns the principal-weighted mean payment number of a
// schedule, in periods.
func WeightedAverageLife(schedule []AmortizationEntry) float64 {
	var total, weighted float64
	for i, e := range schedule {
		total += e.Principal
		weighted += e.Principal * float64(i+1)
	}
	if total == 0 {
		return 0
	}
	return RoundCents(weighted / total)
}
