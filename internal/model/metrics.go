package model

import "time"

// PlanSummary holds the top-level aggregate of a plan.
type PlanSummary struct {
	Strategy      string
	Loans         int
	Months        int
	StartBalance  float64
	TotalPaid     float64
	TotalInterest float64
	MonthlyBudget float64
	MinimumTotal  float64
	PayoffDate    time.Time
	Complete      bool
	Stop          StopReason
}

// LoanStats holds per-loan results within a plan.
type LoanStats struct {
	Label        string
	StartBalance float64
	TotalPaid    float64
	PayoffPeriod int // 1-based; 0 when not paid off
	PayoffDate   time.Time
}

// YearlyStats rolls periods up by calendar year.
type YearlyStats struct {
	Year       int
	Periods    int
	Paid       float64
	Interest   float64
	EndBalance float64
	Retired    int // loans reaching zero during the year
}

// StrategyComparison holds one strategy's summary alongside the best result.
type StrategyComparison struct {
	Summary       PlanSummary
	InterestDelta float64 // vs the cheapest strategy
	MonthsDelta   int     // vs the fastest strategy
	Recommended   bool
}
