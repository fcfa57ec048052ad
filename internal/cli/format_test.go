package cli

import (
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{2937.5, "$2,937.50"},
		{1000000, "$1,000,000.00"},
		{0.015, "$0.02"},
		{-3, "-$3.00"},
		{-1234.56, "-$1,234.56"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{950, "$950"},
		{9999.6, "$10,000"},
		{12345, "$12.3K"},
		{2500000, "$2.5M"},
		{-450, "-$450"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(tt.in); got != tt.want {
			t.Errorf("FormatMoneyShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{11, "11m"},
		{12, "1y"},
		{27, "2y 3m"},
	}
	for _, tt := range tests {
		if got := FormatMonths(tt.in); got != tt.want {
			t.Errorf("FormatMonths(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-9876543, "-9,876,543"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(0.001); got != "-" {
		t.Errorf("FormatDelta(0.001) = %q, want -", got)
	}
	if got := FormatDelta(12); got != "+$12.00" {
		t.Errorf("FormatDelta(12) = %q", got)
	}
	if got := FormatDelta(-3.5); got != "-$3.50" {
		t.Errorf("FormatDelta(-3.5) = %q", got)
	}
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2026-01-15" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatMonthYear(d); got != "Jan 2026" {
		t.Errorf("FormatMonthYear = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
}
