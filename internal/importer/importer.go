// Package importer reads loans from CSV files.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/payoffplan/payoff/internal/model"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns must appear in the header, in any order.
var RequiredColumns = []string{
	"name", "principal", "current_balance", "interest_rate",
	"monthly_min_payment", "first_due_date",
}

// RowError describes one rejected row. Line is the 1-based line in the file.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, %s: %v", e.Line, e.Column, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result holds the loans parsed from a file and the rows that were rejected.
type Result struct {
	Loans  []model.Loan
	Errors []RowError
}

// Import parses a CSV stream. Header names are matched case-insensitively. A
// bad row is recorded in Result.Errors and parsing continues; only an
// unreadable stream or a bad header fails the whole import.
func Import(r io.Reader, logger logrus.FieldLogger) (Result, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("reading header: empty file")
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var res Result
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, RowError{Line: pe.Line, Err: pe.Err})
				continue
			}
			return res, fmt.Errorf("reading csv: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)

		l, rowErr := parseRow(row{cols: cols, fields: record})
		if rowErr != nil {
			rowErr.Line = line
			res.Errors = append(res.Errors, *rowErr)
			logger.WithError(rowErr.Err).WithField("line", line).Debug("csv row rejected")
			continue
		}
		res.Loans = append(res.Loans, l)
	}
	return res, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type row struct {
	cols   map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func parseRow(r row) (model.Loan, *RowError) {
	rec := model.Record{
		Name:             r.get("name"),
		FirstDueDate:     r.get("first_due_date"),
		Lender:           r.get("lender"),
		Notes:            r.get("notes"),
		ForbearanceStart: r.get("forbearance_start_date"),
		ForbearanceEnd:   r.get("forbearance_end_date"),
	}
	if rec.Name == "" {
		return model.Loan{}, &RowError{Column: "name", Err: errors.New("empty name")}
	}

	amounts := []struct {
		col      string
		dst      *float64
		required bool
	}{
		{"principal", &rec.Principal, true},
		{"current_balance", &rec.CurrentBalance, true},
		{"interest_rate", &rec.InterestRate, true},
		{"monthly_min_payment", &rec.MonthlyMinPayment, true},
		{"extra_payment", &rec.ExtraPayment, false},
		{"interest_change_rate", &rec.InterestChangeRate, false},
	}
	for _, a := range amounts {
		v := r.get(a.col)
		if v == "" && !a.required {
			continue
		}
		places := int32(2)
		if a.col == "interest_rate" || a.col == "interest_change_rate" {
			places = 4
		}
		n, err := parseDecimal(v, places)
		if err != nil {
			return model.Loan{}, &RowError{Column: a.col, Err: err}
		}
		*a.dst = n
	}
	if rec.CurrentBalance < 0 {
		return model.Loan{}, &RowError{Column: "current_balance", Err: errors.New("negative balance")}
	}

	if v := r.get("loan_term_months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return model.Loan{}, &RowError{Column: "loan_term_months", Err: fmt.Errorf("invalid term %q", v)}
		}
		rec.LoanTermMonths = n
	}

	l, err := model.NewLoan(rec)
	if err != nil {
		var fe *model.FormatError
		if errors.As(err, &fe) {
			return model.Loan{}, &RowError{Column: fe.Field, Err: err}
		}
		return model.Loan{}, &RowError{Err: err}
	}
	return l, nil
}

// ParseAmount parses a money value such as "1,250.00" or "$300" and rounds
// it to cents.
func ParseAmount(s string) (float64, error) {
	return parseDecimal(s, 2)
}

// ParseRate parses a percentage such as "4.5" or "4.5%".
func ParseRate(s string) (float64, error) {
	return parseDecimal(s, 4)
}

func parseDecimal(s string, places int32) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.TrimSuffix(clean, "%")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, errors.New("empty amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.Round(places).InexactFloat64(), nil
}
