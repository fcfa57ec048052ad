// Package model defines domain types for loans and payoff plans.
package model

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the on-disk and CSV date format.
const DateLayout = "2006-01-02"

// Loan is one debt instrument. It is a plain value: copying a Loan clones it.
type Loan struct {
	ID                 int64
	Name               string
	Principal          float64
	CurrentBalance     float64
	InterestRate       float64 // annual percent, 5.0 = 5%
	MonthlyMinPayment  float64
	ExtraPayment       float64
	FirstDueDate       time.Time
	InterestChangeRate float64
	LoanTermMonths     int // 0 when unknown
	Lender             string
	Notes              string
	ForbearanceStart   time.Time
	ForbearanceEnd     time.Time
	TotalPaid          float64
	LastPaymentDate    time.Time
	CreatedAt          time.Time
}

// Record is a loan as persisted, with dates still in text form.
type Record struct {
	ID                 int64
	Name               string
	Principal          float64
	CurrentBalance     float64
	InterestRate       float64
	MonthlyMinPayment  float64
	ExtraPayment       float64
	FirstDueDate       string
	InterestChangeRate float64
	LoanTermMonths     int
	Lender             string
	Notes              string
	ForbearanceStart   string
	ForbearanceEnd     string
	TotalPaid          float64
	LastPaymentDate    string
	CreatedAt          string
}

// FormatError reports a date field that does not match DateLayout.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: want YYYY-MM-DD", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseDate parses a required DateLayout date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &FormatError{Field: field, Value: value, Err: err}
	}
	return t, nil
}

// parseOptionalDate returns the zero time for an empty value.
func parseOptionalDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return ParseDate(field, value)
}

// NewLoan builds a Loan from a persisted record. A malformed date yields *FormatError.
// A missing CreatedAt defaults to today.
func NewLoan(r Record) (Loan, error) {
	l := Loan{
		ID:                 r.ID,
		Name:               r.Name,
		Principal:          r.Principal,
		CurrentBalance:     r.CurrentBalance,
		InterestRate:       r.InterestRate,
		MonthlyMinPayment:  r.MonthlyMinPayment,
		ExtraPayment:       r.ExtraPayment,
		InterestChangeRate: r.InterestChangeRate,
		LoanTermMonths:     r.LoanTermMonths,
		Lender:             r.Lender,
		Notes:              r.Notes,
		TotalPaid:          r.TotalPaid,
	}

	var err error
	if l.FirstDueDate, err = ParseDate("first_due_date", r.FirstDueDate); err != nil {
		return Loan{}, err
	}
	if l.ForbearanceStart, err = parseOptionalDate("forbearance_start_date", r.ForbearanceStart); err != nil {
		return Loan{}, err
	}
	if l.ForbearanceEnd, err = parseOptionalDate("forbearance_end_date", r.ForbearanceEnd); err != nil {
		return Loan{}, err
	}
	if l.LastPaymentDate, err = parseOptionalDate("last_payment_date", r.LastPaymentDate); err != nil {
		return Loan{}, err
	}
	if l.CreatedAt, err = parseOptionalDate("created_at", r.CreatedAt); err != nil {
		return Loan{}, err
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = Today()
	}
	return l, nil
}

// Record converts the loan back to its persisted form.
func (l Loan) Record() Record {
	return Record{
		ID:                 l.ID,
		Name:               l.Name,
		Principal:          l.Principal,
		CurrentBalance:     l.CurrentBalance,
		InterestRate:       l.InterestRate,
		MonthlyMinPayment:  l.MonthlyMinPayment,
		ExtraPayment:       l.ExtraPayment,
		FirstDueDate:       FormatDate(l.FirstDueDate),
		InterestChangeRate: l.InterestChangeRate,
		LoanTermMonths:     l.LoanTermMonths,
		Lender:             l.Lender,
		Notes:              l.Notes,
		ForbearanceStart:   FormatDate(l.ForbearanceStart),
		ForbearanceEnd:     FormatDate(l.ForbearanceEnd),
		TotalPaid:          l.TotalPaid,
		LastPaymentDate:    FormatDate(l.LastPaymentDate),
		CreatedAt:          FormatDate(l.CreatedAt),
	}
}

// FormatDate renders t in DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Today returns the current local date at midnight UTC.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Retired reports whether the loan has been paid off.
func (l Loan) Retired() bool {
	return l.CurrentBalance <= 0
}

// InForbearance reports whether date falls inside the inclusive forbearance window.
// Both ends must be set.
func (l Loan) InForbearance(date time.Time) bool {
	if l.ForbearanceStart.IsZero() || l.ForbearanceEnd.IsZero() {
		return false
	}
	return !date.Before(l.ForbearanceStart) && !date.After(l.ForbearanceEnd)
}

// AccruedInterest returns simple daily interest on the current balance between
// from and to, rounded to cents. No interest accrues when to is in forbearance.
func (l Loan) AccruedInterest(from, to time.Time) float64 {
	if !from.Before(to) {
		return 0
	}
	if l.InForbearance(to) {
		return 0
	}
	days := daysBetween(from, to)
	return RoundCents(l.CurrentBalance * (l.InterestRate / 100 / 365) * float64(days))
}

// daysBetween counts calendar days, ignoring the time of day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(t.Sub(f).Hours() / 24))
}

// PaymentResult is the split of one applied payment.
type PaymentResult struct {
	InterestPaid     float64
	PrincipalPaid    float64
	RemainingBalance float64
}

// ApplyPayment accrues interest since the last payment (or the first due date),
// then applies amount to interest first and the remainder to principal. The
// balance never goes negative; any overpayment is not applied.
func (l *Loan) ApplyPayment(amount float64, date time.Time) PaymentResult {
	from := l.LastPaymentDate
	if from.IsZero() {
		from = l.FirstDueDate
	}
	interest := l.AccruedInterest(from, date)
	l.CurrentBalance = RoundCents(l.CurrentBalance + interest)

	interestPaid := math.Max(0, math.Min(amount, interest))
	principalPaid := math.Max(0, math.Min(amount-interestPaid, l.CurrentBalance-interestPaid))
	l.CurrentBalance = math.Max(0, RoundCents(l.CurrentBalance-interestPaid-principalPaid))
	l.TotalPaid = RoundCents(l.TotalPaid + interestPaid + principalPaid)
	l.LastPaymentDate = date

	return PaymentResult{
		InterestPaid:     RoundCents(interestPaid),
		PrincipalPaid:    RoundCents(principalPaid),
		RemainingBalance: l.CurrentBalance,
	}
}
