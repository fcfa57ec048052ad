package model

import "testing"

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		want      float64
	}{
		{"five percent five years", 10000, 5, 60, 188.71},
		{"zero rate", 1200, 0, 12, 100},
		{"no term", 1200, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthlyPayment(tt.principal, tt.rate, tt.term); !approx(got, tt.want) {
				t.Fatalf("MonthlyPayment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAmortizationSchedule_ZeroRate(t *testing.T) {
	l := Loan{CurrentBalance: 1000, MonthlyMinPayment: 80, ExtraPayment: 20, FirstDueDate: mustDate(t, "2025-01-01")}
	schedule := l.AmortizationSchedule()
	if len(schedule) != 10 {
		t.Fatalf("len(schedule) = %d, want 10", len(schedule))
	}
	last := schedule[len(schedule)-1]
	if last.Balance != 0 {
		t.Fatalf("final balance = %v, want 0", last.Balance)
	}
	if got := FormatDate(schedule[1].Date); got != "2025-01-31" {
		t.Fatalf("second date = %s, want 2025-01-31", got)
	}
	if got := WeightedAverageLife(schedule); !approx(got, 5.5) {
		t.Fatalf("WeightedAverageLife = %v, want 5.5", got)
	}
}

func TestAmortizationSchedule_FinalPaymentShrinks(t *testing.T) {
	l := Loan{CurrentBalance: 250, MonthlyMinPayment: 100, FirstDueDate: mustDate(t, "2025-01-01")}
	schedule := l.AmortizationSchedule()
	if len(schedule) != 3 {
		t.Fatalf("len(schedule) = %d, want 3", len(schedule))
	}
	if got := schedule[2].Payment; !approx(got, 50) {
		t.Fatalf("last payment = %v, want 50", got)
	}
}

func TestAmortizationSchedule_PaymentBelowInterest(t *testing.T) {
	l := Loan{CurrentBalance: 10000, InterestRate: 12, MonthlyMinPayment: 50, FirstDueDate: mustDate(t, "2025-01-01")}
	if got := l.AmortizationSchedule(); len(got) != 0 {
		t.Fatalf("len(schedule) = %d, want 0 when payment cannot cover interest", len(got))
	}
}
