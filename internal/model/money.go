package model

import "github.com/shopspring/decimal"

// Epsilon is the tolerance below which an amount counts as zero.
const Epsilon = 0.005

// RoundCents rounds half away from zero to two decimals using the shortest
// decimal representation of x, so 2.675 becomes 2.68.
func RoundCents(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// SumCents adds amounts in decimal and rounds the result to cents.
func SumCents(xs ...float64) float64 {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(decimal.NewFromFloat(x))
	}
	return total.Round(2).InexactFloat64()
}
