package simulator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/model"
)

// ErrRowOutOfRange is returned for a period index outside the plan.
var ErrRowOutOfRange = errors.New("row index out of range")

// StopWindowEnd marks a fixed-length recalculation that ended before payoff.
const StopWindowEnd model.StopReason = "window_end"

// RecalcOptions controls forward recalculation.
type RecalcOptions struct {
	// Resize drops trailing periods once every loan is retired and extends the
	// plan, with the usual guards, when the existing slots end before payoff.
	// By default the period count never changes.
	Resize bool
}

func checkRow(plan model.Plan, index int) error {
	if index < 0 || index >= len(plan.Periods) {
		return fmt.Errorf("row %d of %d: %w", index, len(plan.Periods), ErrRowOutOfRange)
	}
	return nil
}

// SetRowExtra returns a copy of plan with period index's extra cash overridden.
// Nothing is recalculated.
func SetRowExtra(plan model.Plan, index int, amount float64) (model.Plan, error) {
	if err := checkRow(plan, index); err != nil {
		return model.Plan{}, err
	}
	out := plan.Clone()
	v := amount
	out.Periods[index].RowExtraPayment = &v
	return out, nil
}

// ClearRowExtra returns a copy of plan with period index's override removed.
func ClearRowExtra(plan model.Plan, index int) (model.Plan, error) {
	if err := checkRow(plan, index); err != nil {
		return model.Plan{}, err
	}
	out := plan.Clone()
	out.Periods[index].RowExtraPayment = nil
	return out, nil
}

// Recalculate re-simulates plan from period from onward. The starting state is
// taken from loans when from is 0 and from the balances of period from-1
// otherwise; a zero balance there means the loan is retired. Each period uses
// its RowExtraPayment when set and defaultExtra otherwise; negative amounts
// count as zero. Periods before from are returned unchanged. loans must be the same loans, in the same order,
// that produced plan.
func (s *Simulator) Recalculate(plan model.Plan, loans []model.Loan, from int, defaultExtra float64, opts RecalcOptions) (model.Plan, error) {
	if err := checkRow(plan, from); err != nil {
		return model.Plan{}, err
	}

	out := plan.Clone()
	accts := newAccounts(loans)
	if from > 0 {
		prev := out.Periods[from-1]
		for _, a := range accts {
			bal, ok := prev.Balances[a.label]
			if !ok {
				return model.Plan{}, fmt.Errorf("recalculate: loan %q missing from period %d", a.label, from-1)
			}
			a.loan.CurrentBalance = bal
			a.adjustedMin = a.loan.MonthlyMinPayment
			if !a.open() {
				a.retire()
			}
		}
	}

	defaultExtra = math.Max(0, defaultExtra)
	minTotal := minimumTotal(loans)
	slots := out.Periods[from:]
	out.Periods = out.Periods[:from:from]
	out.ExtraCash = defaultExtra
	for i, slot := range slots {
		if opts.Resize && allRetired(accts) {
			break
		}
		extra := defaultExtra
		if slot.RowExtraPayment != nil {
			extra = math.Max(0, *slot.RowExtraPayment)
		}
		p := s.step(accts, from+i, slot.Date, extra, minTotal)
		p.RowExtraPayment = slot.RowExtraPayment
		out.Periods = append(out.Periods, p)
	}

	switch {
	case allRetired(accts):
		out.Stop = model.StopPaidOff
	case opts.Resize:
		last := out.Periods[len(out.Periods)-1]
		s.run(&out, accts, minTotal, defaultExtra, last.Date.AddDate(0, 0, s.opts.PeriodDays))
	default:
		out.Stop = StopWindowEnd
	}

	s.log.WithFields(logrus.Fields{
		"from":    from,
		"periods": len(out.Periods),
		"stop":    out.Stop,
	}).Debug("plan recalculated")
	return out, nil
}

// Override sets period index's extra cash to amount and recalculates forward.
func (s *Simulator) Override(plan model.Plan, loans []model.Loan, index int, amount, defaultExtra float64, opts RecalcOptions) (model.Plan, error) {
	edited, err := SetRowExtra(plan, index, amount)
	if err != nil {
		return model.Plan{}, err
	}
	return s.Recalculate(edited, loans, index, defaultExtra, opts)
}

// ApplyOverrides sets every override in rows (period index -> extra cash) and
// recalculates once from the earliest. Indices outside the plan are skipped
// and returned.
func (s *Simulator) ApplyOverrides(plan model.Plan, loans []model.Loan, rows map[int]float64, defaultExtra float64, opts RecalcOptions) (model.Plan, []int, error) {
	indices := make([]int, 0, len(rows))
	for i := range rows {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	out := plan
	var skipped []int
	from := -1
	for _, i := range indices {
		edited, err := SetRowExtra(out, i, rows[i])
		if errors.Is(err, ErrRowOutOfRange) {
			skipped = append(skipped, i)
			continue
		}
		if err != nil {
			return model.Plan{}, nil, err
		}
		out = edited
		if from < 0 {
			from = i
		}
	}
	if from < 0 {
		return out, skipped, nil
	}
	out, err := s.Recalculate(out, loans, from, defaultExtra, opts)
	if err != nil {
		return model.Plan{}, nil, err
	}
	return out, skipped, nil
}
