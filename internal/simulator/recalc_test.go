package simulator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/payoffplan/payoff/internal/model"
)

func fivePeriodPlan(t *testing.T) (*Simulator, []model.Loan, model.Plan) {
	t.Helper()
	sim := newTestSim(t)
	loans := []model.Loan{loan(1, "auto", 1000, 0, 200)}
	plan := sim.Simulate(loans, 0)
	if len(plan.Periods) != 5 {
		t.Fatalf("baseline has %d periods, want 5", len(plan.Periods))
	}
	return sim, loans, plan
}

func TestOverride_RecalculatesForward(t *testing.T) {
	sim, loans, plan := fivePeriodPlan(t)

	got, err := sim.Override(plan, loans, 2, 300, 0, RecalcOptions{})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if len(got.Periods) != 5 {
		t.Fatalf("len(Periods) = %d, want 5", len(got.Periods))
	}
	for i := 0; i < 2; i++ {
		if !reflect.DeepEqual(got.Periods[i], plan.Periods[i]) {
			t.Fatalf("period %d changed: %+v vs %+v", i, got.Periods[i], plan.Periods[i])
		}
	}

	p2 := got.Periods[2]
	if p2.RowExtraPayment == nil || *p2.RowExtraPayment != 300 {
		t.Fatalf("period 2 RowExtraPayment = %v, want 300", p2.RowExtraPayment)
	}
	if p2.Payments["auto"] != 500 || p2.Balances["auto"] != 100 {
		t.Fatalf("period 2 paid %v balance %v, want 500 and 100", p2.Payments["auto"], p2.Balances["auto"])
	}
	if p2.AdjustedTotalPayment != 500 {
		t.Fatalf("period 2 AdjustedTotalPayment = %v, want 500", p2.AdjustedTotalPayment)
	}
	if got.Periods[3].Payments["auto"] != 100 || got.Periods[3].TotalBalance != 0 {
		t.Fatalf("period 3 = %+v, want final 100 payment", got.Periods[3])
	}
	if got.Periods[4].Payments["auto"] != 0 || got.Periods[4].TotalBalance != 0 {
		t.Fatalf("period 4 = %+v, want empty trailing period", got.Periods[4])
	}
	if !got.Periods[4].Date.Equal(plan.Periods[4].Date) {
		t.Fatal("recalculation moved period dates")
	}

	// The input plan is untouched.
	if plan.Periods[2].RowExtraPayment != nil || plan.Periods[2].Payments["auto"] != 200 {
		t.Fatal("Override modified the input plan")
	}
}

func TestOverride_ResizeTruncates(t *testing.T) {
	sim, loans, plan := fivePeriodPlan(t)

	got, err := sim.Override(plan, loans, 2, 300, 0, RecalcOptions{Resize: true})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if len(got.Periods) != 4 {
		t.Fatalf("len(Periods) = %d, want 4", len(got.Periods))
	}
	if got.Stop != model.StopPaidOff {
		t.Fatalf("Stop = %s, want %s", got.Stop, model.StopPaidOff)
	}
}

func TestRecalculate_ResizeExtends(t *testing.T) {
	opts := DefaultOptions()
	opts.Start = mustDate(t, "2025-01-01")
	opts.MaxIterations = 3
	loans := []model.Loan{loan(1, "auto", 1000, 0, 200)}
	short := New(opts).Simulate(loans, 0)
	if len(short.Periods) != 3 || short.Stop != model.StopIterationCap {
		t.Fatalf("short plan: %d periods stop %s", len(short.Periods), short.Stop)
	}

	sim := newTestSim(t)
	fixed, err := sim.Recalculate(short, loans, 1, 0, RecalcOptions{})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(fixed.Periods) != 3 || fixed.Stop != StopWindowEnd {
		t.Fatalf("fixed: %d periods stop %s, want 3 and %s", len(fixed.Periods), fixed.Stop, StopWindowEnd)
	}

	grown, err := sim.Recalculate(short, loans, 1, 0, RecalcOptions{Resize: true})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if len(grown.Periods) != 5 || !grown.Complete() {
		t.Fatalf("resized: %d periods complete %v, want 5 and complete", len(grown.Periods), grown.Complete())
	}
	if got := model.FormatDate(grown.Periods[3].Date); got != "2025-04-01" {
		t.Fatalf("extended period date = %s, want 2025-04-01", got)
	}
}

func TestRecalculate_FromZeroReproducesPlan(t *testing.T) {
	sim := newTestSim(t)
	loans := portfolio()
	plan := sim.Simulate(loans, 120)

	got, err := sim.Recalculate(plan, loans, 0, 120, RecalcOptions{})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !reflect.DeepEqual(got, plan) {
		t.Fatal("recalculating an unedited plan from row 0 changed it")
	}
}

func TestRecalculate_RetiredLoanStaysRetired(t *testing.T) {
	sim := newTestSim(t)
	loans := []model.Loan{
		loan(1, "small", 100, 0, 100),
		loan(2, "big", 1000, 0, 100),
	}
	plan := sim.Simulate(loans, 0)

	got, err := sim.Override(plan, loans, 1, 50, 0, RecalcOptions{})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	p1 := got.Periods[1]
	if p1.Payments["small"] != 0 {
		t.Fatalf("retired loan paid %v", p1.Payments["small"])
	}
	// Budget is 200 minimums plus 50 extra, all into the open loan.
	if p1.Payments["big"] != 250 || p1.TotalPayment != 250 {
		t.Fatalf("period 1 big paid %v total %v, want 250", p1.Payments["big"], p1.TotalPayment)
	}
}

func TestRowEdits_OutOfRange(t *testing.T) {
	sim, loans, plan := fivePeriodPlan(t)

	if _, err := SetRowExtra(plan, 5, 10); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("SetRowExtra(5) error = %v, want ErrRowOutOfRange", err)
	}
	if _, err := sim.Override(plan, loans, -1, 10, 0, RecalcOptions{}); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("Override(-1) error = %v, want ErrRowOutOfRange", err)
	}
	if _, err := ClearRowExtra(plan, 9); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("ClearRowExtra(9) error = %v, want ErrRowOutOfRange", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	sim, loans, plan := fivePeriodPlan(t)

	got, skipped, err := sim.ApplyOverrides(plan, loans, map[int]float64{1: 100, 3: 0, 12: 50}, 0, RecalcOptions{})
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	if !reflect.DeepEqual(skipped, []int{12}) {
		t.Fatalf("skipped = %v, want [12]", skipped)
	}
	if got.Periods[1].Payments["auto"] != 300 {
		t.Fatalf("period 1 payment = %v, want 300", got.Periods[1].Payments["auto"])
	}
	if got.Periods[3].RowExtraPayment == nil {
		t.Fatal("period 3 override lost")
	}
	if !reflect.DeepEqual(got.Periods[0], plan.Periods[0]) {
		t.Fatal("period 0 changed")
	}
}

func TestRecalculate_NegativeExtraCountsAsZero(t *testing.T) {
	sim := newTestSim(t)
	loans := []model.Loan{
		loan(1, "A", 1000, 0, 100),
		loan(2, "B", 2000, 0, 100),
	}
	plan := sim.Simulate(loans, 0)

	got, err := sim.Override(plan, loans, 1, -150, 0, RecalcOptions{})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	for i, p := range got.Periods {
		var sum float64
		for _, amt := range p.Payments {
			sum += amt
		}
		if model.RoundCents(sum) != p.TotalPayment {
			t.Fatalf("period %d TotalPayment = %v, want sum of payments %v", i, p.TotalPayment, sum)
		}
	}
	p1 := got.Periods[1]
	if p1.TotalPayment != 200 || p1.ExtraCash != 0 {
		t.Fatalf("period 1 TotalPayment = %v ExtraCash = %v, want 200 and 0", p1.TotalPayment, p1.ExtraCash)
	}

	again, err := sim.Recalculate(plan, loans, 0, -50, RecalcOptions{})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	if !reflect.DeepEqual(again.Periods, plan.Periods) || again.ExtraCash != 0 {
		t.Fatal("negative default extra did not behave like zero")
	}
}
