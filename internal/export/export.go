// Package export writes payoff plans as delimited text or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/payoffplan/payoff/internal/model"
)

// Format selects the export encoding.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Write encodes plan to w in format f.
func Write(w io.Writer, plan model.Plan, f Format) error {
	switch f {
	case JSON:
		return WriteJSON(w, plan)
	default:
		return WriteCSV(w, plan)
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes a header of Date, one column per loan, Total Payment and
// Total Balance, followed by one row per period.
func WriteCSV(w io.Writer, plan model.Plan) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(plan.Loans)+3)
	header = append(header, "Date")
	header = append(header, plan.Loans...)
	header = append(header, "Total Payment", "Total Balance")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, p := range plan.Periods {
		rec := make([]string, 0, len(header))
		rec = append(rec, model.FormatDate(p.Date))
		for _, label := range plan.Loans {
			rec = append(rec, money(p.Payments[label]))
		}
		rec = append(rec, money(p.TotalPayment), money(p.TotalBalance))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing period %d: %w", p.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonPeriod struct {
	Index           int                `json:"index"`
	Date            string             `json:"date"`
	Payments        map[string]float64 `json:"payments"`
	Balances        map[string]float64 `json:"balances"`
	Interest        float64            `json:"interest"`
	TotalPayment    float64            `json:"total_payment"`
	TotalBalance    float64            `json:"total_balance"`
	MinimumTotal    float64            `json:"minimum_total_payment"`
	AdjustedTotal   float64            `json:"adjusted_total_payment"`
	RowExtraPayment *float64           `json:"row_extra_payment,omitempty"`
}

type jsonPlan struct {
	Strategy  string       `json:"strategy,omitempty"`
	Loans     []string     `json:"loans"`
	ExtraCash float64      `json:"extra_cash"`
	Complete  bool         `json:"complete"`
	Stop      string       `json:"stop"`
	Periods   []jsonPeriod `json:"periods"`
}

// WriteJSON writes the plan as an indented JSON document.
func WriteJSON(w io.Writer, plan model.Plan) error {
	out := jsonPlan{
		Strategy:  plan.Strategy,
		Loans:     plan.Loans,
		ExtraCash: plan.ExtraCash,
		Complete:  plan.Complete(),
		Stop:      string(plan.Stop),
		Periods:   make([]jsonPeriod, len(plan.Periods)),
	}
	for i, p := range plan.Periods {
		out.Periods[i] = jsonPeriod{
			Index:           p.Index,
			Date:            model.FormatDate(p.Date),
			Payments:        p.Payments,
			Balances:        p.Balances,
			Interest:        p.Interest,
			TotalPayment:    p.TotalPayment,
			TotalBalance:    p.TotalBalance,
			MinimumTotal:    p.MinimumTotalPayment,
			AdjustedTotal:   p.AdjustedTotalPayment,
			RowExtraPayment: p.RowExtraPayment,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
