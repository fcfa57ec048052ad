package strategy

import (
	"fmt"
	"strings"

	"github.com/payoffplan/payoff/internal/model"
	"github.com/payoffplan/payoff/internal/simulator"
)

// MissingPolicy decides what CustomOrder does with loans absent from its
// priority list.
type MissingPolicy string

const (
	// MissingAppend places unlisted loans after the listed ones, in input order.
	MissingAppend MissingPolicy = "append"
	// MissingExclude drops unlisted loans from the ordering entirely.
	MissingExclude MissingPolicy = "exclude"
)

// ParseMissingPolicy validates a configured policy; empty means append.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(s)) {
	case "", MissingAppend:
		return MissingAppend, nil
	case MissingExclude:
		return MissingExclude, nil
	}
	return "", fmt.Errorf("unknown missing-loan policy %q (want append or exclude)", s)
}

// CustomOrder pays loans in a user-defined order of loan IDs. IDs that match no
// loan are ignored. With no priority list it orders loans by name.
type CustomOrder struct {
	Sim      *simulator.Simulator
	Priority []int64
	Missing  MissingPolicy

	rank map[int64]int
}

// NewCustomOrder builds a CustomOrder over priority.
func NewCustomOrder(sim *simulator.Simulator, priority []int64, missing MissingPolicy) CustomOrder {
	if missing == "" {
		missing = MissingAppend
	}
	rank := make(map[int64]int, len(priority))
	for i, id := range priority {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	return CustomOrder{Sim: sim, Priority: priority, Missing: missing, rank: rank}
}

func (CustomOrder) Kind() Kind   { return Custom }
func (CustomOrder) Name() string { return "Custom order" }

// Less ranks listed loans by list position, then unlisted loans. Without a list
// it compares names.
func (c CustomOrder) Less(a, b model.Loan) bool {
	if len(c.Priority) == 0 {
		return a.Name < b.Name
	}
	ra, aok := c.position(a.ID)
	rb, bok := c.position(b.ID)
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	default:
		return false
	}
}

func (c CustomOrder) position(id int64) (int, bool) {
	if c.rank != nil {
		i, ok := c.rank[id]
		return i, ok
	}
	for i, p := range c.Priority {
		if p == id {
			return i, true
		}
	}
	return 0, false
}

func (c CustomOrder) Prioritize(loans []model.Loan) []model.Loan {
	out := sorted(loans, c.Less)
	if len(c.Priority) == 0 || c.Missing != MissingExclude {
		return out
	}
	kept := out[:0]
	for _, l := range out {
		if _, ok := c.position(l.ID); ok {
			kept = append(kept, l)
		}
	}
	return kept
}

func (c CustomOrder) GeneratePaymentPlan(loans []model.Loan, extraCash float64) model.Plan {
	return generate(c, c.Sim, loans, extraCash)
}
