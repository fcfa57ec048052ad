package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
	"github.com/payoffplan/payoff/internal/strategy"
)

type fakeSource struct {
	loans     []model.Loan
	priority  []int64
	overrides map[int]float64
	err       error
}

func (f *fakeSource) ListLoans() ([]model.Loan, error) {
	return append([]model.Loan(nil), f.loans...), f.err
}

func (f *fakeSource) Priority(int) ([]int64, error) { return f.priority, nil }

func (f *fakeSource) Overrides(string) (map[int]float64, error) { return f.overrides, nil }

func testSim() *simulator.Simulator {
	opts := simulator.DefaultOptions()
	opts.Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return simulator.New(opts)
}

func testLoans() []model.Loan {
	return []model.Loan{
		{ID: 1, Name: "Card", CurrentBalance: 3000, InterestRate: 22, MonthlyMinPayment: 90},
		{ID: 2, Name: "Medical", CurrentBalance: 500, InterestRate: 0, MonthlyMinPayment: 50},
		{ID: 3, Name: "Car", CurrentBalance: 6000, InterestRate: 5, MonthlyMinPayment: 200},
	}
}

func TestLoad_AppliesStoredOverrides(t *testing.T) {
	src := &fakeSource{loans: testLoans(), overrides: map[int]float64{0: 500, 400: 1}}
	sim := testSim()

	res, err := Load(src, Request{Kind: strategy.Snowball, ExtraCash: 100, Sim: sim}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p0 := res.Plan.Periods[0]
	if p0.RowExtraPayment == nil || *p0.RowExtraPayment != 500 {
		t.Fatalf("period 0 override = %v, want 500", p0.RowExtraPayment)
	}
	if p0.AdjustedTotalPayment != 840 {
		t.Fatalf("period 0 budget = %v, want 840", p0.AdjustedTotalPayment)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != 400 {
		t.Fatalf("Skipped = %v, want [400]", res.Skipped)
	}
	if res.Plan.Strategy != "snowball" {
		t.Fatalf("Strategy = %q", res.Plan.Strategy)
	}
	if res.Loans[0].Name != "Medical" {
		t.Fatalf("first loan = %s, want Medical", res.Loans[0].Name)
	}

	plain, err := Load(src, Request{Kind: strategy.Snowball, ExtraCash: 100, Sim: sim, SkipStored: true}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if plain.Plan.Periods[0].RowExtraPayment != nil {
		t.Fatal("SkipStored still applied overrides")
	}
}

func TestLoad_CustomUsesStoredPriority(t *testing.T) {
	src := &fakeSource{loans: testLoans(), priority: []int64{3, 1}}
	res, err := Load(src, Request{Kind: strategy.Custom, Sim: testSim()}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := []string{res.Loans[0].Name, res.Loans[1].Name, res.Loans[2].Name}
	if got[0] != "Car" || got[1] != "Card" || got[2] != "Medical" {
		t.Fatalf("order = %v, want [Car Card Medical]", got)
	}
}

func TestLoad_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(&fakeSource{err: boom}, Request{Kind: strategy.Snowball, Sim: testSim()}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Load error = %v, want boom", err)
	}
}

func TestSummarize(t *testing.T) {
	loans := testLoans()
	plan := testSim().Simulate(loans, 100)
	s := Summarize(plan, loans)

	if s.StartBalance != 9500 || s.Loans != 3 {
		t.Fatalf("Summarize = %+v", s)
	}
	if s.MinimumTotal != 340 || s.MonthlyBudget != 440 {
		t.Fatalf("budget = %v/%v, want 340/440", s.MinimumTotal, s.MonthlyBudget)
	}
	if !s.Complete || s.Months != len(plan.Periods) || s.PayoffDate.IsZero() {
		t.Fatalf("Summarize = %+v", s)
	}
	if diff := s.TotalPaid - (s.StartBalance + s.TotalInterest); diff > 0.05 || diff < -0.05 {
		t.Fatalf("paid %v != balance %v + interest %v", s.TotalPaid, s.StartBalance, s.TotalInterest)
	}
}

func TestAggregateLoans(t *testing.T) {
	loans := testLoans()
	plan := testSim().Simulate(loans, 100)
	stats := AggregateLoans(plan, loans)

	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d", len(stats))
	}
	for _, st := range stats {
		if st.PayoffPeriod == 0 {
			t.Fatalf("%s never paid off", st.Label)
		}
		if st.TotalPaid < st.StartBalance {
			t.Fatalf("%s paid %v of %v", st.Label, st.TotalPaid, st.StartBalance)
		}
	}
	// Medical has the smallest balance and no interest, so it goes first.
	if stats[1].PayoffPeriod >= stats[0].PayoffPeriod || stats[1].PayoffPeriod >= stats[2].PayoffPeriod {
		t.Fatalf("payoff periods = %+v", stats)
	}
	if stats[1].TotalPaid != 500 {
		t.Fatalf("Medical paid %v, want 500", stats[1].TotalPaid)
	}
}

func TestAggregateYears(t *testing.T) {
	loans := testLoans()
	plan := testSim().Simulate(loans, 100)
	years := AggregateYears(plan)

	if len(years) < 2 || years[0].Year != 2025 {
		t.Fatalf("years = %+v", years)
	}
	var periods, retired int
	for i, y := range years {
		periods += y.Periods
		retired += y.Retired
		if i > 0 && y.Year <= years[i-1].Year {
			t.Fatal("years not ascending")
		}
	}
	if periods != len(plan.Periods) {
		t.Fatalf("periods = %d, want %d", periods, len(plan.Periods))
	}
	if retired != 3 {
		t.Fatalf("retired = %d, want 3", retired)
	}
	if years[len(years)-1].EndBalance != 0 {
		t.Fatalf("final EndBalance = %v", years[len(years)-1].EndBalance)
	}
}

func TestCompare(t *testing.T) {
	src := &fakeSource{loans: testLoans(), priority: []int64{3, 2, 1}}
	opts := simulator.DefaultOptions()
	opts.Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Ordering = simulator.OrderStrategy
	sim := simulator.New(opts)

	var calls atomic.Int64
	cmp, err := Compare(context.Background(), src, strategy.Kinds, 150, sim, strategy.MissingAppend,
		func(current, total int) {
			calls.Add(1)
			if total != 3 || current < 1 || current > 3 {
				t.Errorf("progress(%d, %d)", current, total)
			}
		})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("progress called %d times, want 3", calls.Load())
	}
	if len(cmp.Rows) != 3 || len(cmp.Plans) != 3 {
		t.Fatalf("Compare returned %d rows, %d plans", len(cmp.Rows), len(cmp.Plans))
	}
	for i, k := range strategy.Kinds {
		if cmp.Plans[i].Strategy != string(k) {
			t.Fatalf("plan %d strategy = %q, want %q", i, cmp.Plans[i].Strategy, k)
		}
	}

	snowball, avalanche := cmp.Rows[0].Summary, cmp.Rows[1].Summary
	if avalanche.TotalInterest > snowball.TotalInterest {
		t.Fatalf("avalanche interest %v exceeds snowball %v", avalanche.TotalInterest, snowball.TotalInterest)
	}
	recommended := 0
	for _, r := range cmp.Rows {
		if r.Recommended {
			recommended++
			if r.InterestDelta != 0 {
				t.Fatalf("recommended row has InterestDelta %v", r.InterestDelta)
			}
		}
		if r.InterestDelta < 0 || r.MonthsDelta < 0 {
			t.Fatalf("negative delta in %+v", r)
		}
	}
	if recommended != 1 {
		t.Fatalf("%d rows recommended, want 1", recommended)
	}
}

func TestCompare_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, &fakeSource{loans: testLoans()}, strategy.Kinds, 0, testSim(), "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Compare error = %v, want context.Canceled", err)
	}
}

func TestRank_IncompleteNeverRecommended(t *testing.T) {
	rows := Rank([]model.PlanSummary{
		{Strategy: "a", Complete: false, TotalInterest: 1, Months: 1000},
		{Strategy: "b", Complete: true, TotalInterest: 500, Months: 30},
		{Strategy: "c", Complete: true, TotalInterest: 500, Months: 28},
	})
	if rows[0].Recommended || rows[1].Recommended || !rows[2].Recommended {
		t.Fatalf("Rank = %+v, want c recommended", rows)
	}
	if rows[1].MonthsDelta != 2 {
		t.Fatalf("b MonthsDelta = %d, want 2", rows[1].MonthsDelta)
	}
}
