package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/payoffplan/payoff/internal/cli"
	"github.com/payoffplan/payoff/internal/importer"
)

func money(v float64) string { return cli.FormatMoney(v) }

func cliWarning(msg string) string { return cli.RenderWarning(msg) }

// parseLoanID parses a loan ID argument.
func parseLoanID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid loan id %q", s)
	}
	return id, nil
}

// parseRow converts a 1-based row number to a period index.
func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row %q: want a row number from 1", s)
	}
	return n - 1, nil
}

// parseOverrides reads ROW=AMOUNT pairs into period index -> extra cash.
func parseOverrides(pairs []string) (map[int]float64, error) {
	out := make(map[int]float64, len(pairs))
	for _, p := range pairs {
		rowStr, amtStr, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override %q: want ROW=AMOUNT", p)
		}
		row, err := parseRow(rowStr)
		if err != nil {
			return nil, err
		}
		amt, err := importer.ParseAmount(amtStr)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", p, err)
		}
		if amt < 0 {
			return nil, fmt.Errorf("override %q: extra cash must not be negative", p)
		}
		out[row] = amt
	}
	return out, nil
}

// parseAmountArg parses a positive money amount such as "250" or "$1,200.50".
func parseAmountArg(s string) (float64, error) {
	amt, err := importer.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if amt <= 0 {
		return 0, fmt.Errorf("amount %q must be positive", s)
	}
	return amt, nil
}
