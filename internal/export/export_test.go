package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/payoffplan/payoff/internal/model"
)

func samplePlan() model.Plan {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	extra := 25.0
	return model.Plan{
		Strategy: "snowball",
		Loans:    []string{"X", "Y, Jr"},
		Stop:     model.StopPaidOff,
		Periods: []model.Period{
			{
				Index:        0,
				Date:         d,
				Payments:     map[string]float64{"X": 50, "Y, Jr": 100},
				Balances:     map[string]float64{"X": 50, "Y, Jr": 0},
				TotalPayment: 150,
				TotalBalance: 50,
			},
			{
				Index:           1,
				Date:            d.AddDate(0, 0, 30),
				Payments:        map[string]float64{"X": 50, "Y, Jr": 0},
				Balances:        map[string]float64{"X": 0, "Y, Jr": 0},
				TotalPayment:    50,
				RowExtraPayment: &extra,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, samplePlan()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Date,X,\"Y, Jr\",Total Payment,Total Balance\n" +
		"2025-01-01,50.00,100.00,150.00,50.00\n" +
		"2025-01-31,50.00,0.00,50.00,0.00\n"
	if sb.String() != want {
		t.Fatalf("WriteCSV =\n%s\nwant\n%s", sb.String(), want)
	}
}

func TestWriteCSV_EmptyPlan(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, model.Plan{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if sb.String() != "Date,Total Payment,Total Balance\n" {
		t.Fatalf("WriteCSV = %q", sb.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, samplePlan(), JSON); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got jsonPlan
	if err := json.Unmarshal([]byte(sb.String()), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !got.Complete || got.Stop != "paid_off" || len(got.Periods) != 2 {
		t.Fatalf("decoded = %+v", got)
	}
	if got.Periods[1].RowExtraPayment == nil || *got.Periods[1].RowExtraPayment != 25 {
		t.Fatal("row override not exported")
	}
	if got.Periods[0].RowExtraPayment != nil {
		t.Fatal("unedited period exported an override")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != JSON {
		t.Fatalf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatal("ParseFormat(xlsx) succeeded")
	}
}
