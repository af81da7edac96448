// Package report computes derived reporting values from an in-memory
// transaction list. All functions are pure: the reference time is always a
// parameter, never read from the clock.
package report

import (
	"time"

	"deltafin/internal/core"
)

// FallbackCategory is the bucket used for debit transactions without a
// category name.
const FallbackCategory = "Outros"

// ChartPalette is the fixed color cycle for category breakdowns. Colors are
// assigned by group index modulo the palette length.
var ChartPalette = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6",
	"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6B7280",
}

// MonthlyStats summarizes one month of activity.
type MonthlyStats struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
	Count    int        `json:"transaction_count"`
}

// CategoryExpense is one slice of the monthly expense breakdown.
type CategoryExpense struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"value"`
	Color  string     `json:"color"`
}

// MonthWindow returns the inclusive [start, end] calendar-day range used to
// scope monthly reports. The start is the first day of the month. For a past
// (or future) month the end is that month's last calendar day; for the
// current month the end is today, which excludes future-dated entries. The
// asymmetry is deliberate and must not be "fixed".
func MonthWindow(month time.Time, now time.Time) (start, end core.Date) {
	start = core.NewDate(month.Year(), int(month.Month()), 1)
	if month.Year() == now.Year() && month.Month() == now.Month() {
		end = core.DateOf(now)
		return start, end
	}
	// Day zero of the following month is the last day of this one.
	last := time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	end = core.DateOf(last)
	return start, end
}

func inWindow(d core.Date, start, end core.Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

// Monthly computes income, expenses and balance for the given month. Income
// sums credit amounts; expenses sum debit magnitudes; balance is their
// difference, by construction.
func Monthly(transactions []core.Transaction, month time.Time, now time.Time) MonthlyStats {
	start, end := MonthWindow(month, now)

	var stats MonthlyStats
	for _, t := range transactions {
		if !inWindow(t.Date, start, end) {
			continue
		}
		stats.Count++
		switch t.Type {
		case core.Credit:
			stats.Income.Cents += t.Amount.Cents
		case core.Debit:
			stats.Expenses.Cents += abs(t.Amount.Cents)
		}
	}
	stats.Balance.Cents = stats.Income.Cents - stats.Expenses.Cents
	return stats
}

// CategoryExpenses groups the month's debit transactions by category name,
// falling back to FallbackCategory when the name is empty. Groups keep
// first-seen order; colors cycle through ChartPalette by group index.
func CategoryExpenses(transactions []core.Transaction, month time.Time, now time.Time) []CategoryExpense {
	start, end := MonthWindow(month, now)

	totals := map[string]int64{}
	order := make([]string, 0)
	for _, t := range transactions {
		if t.Type != core.Debit || !inWindow(t.Date, start, end) {
			continue
		}
		name := t.CategoryName
		if name == "" {
			name = FallbackCategory
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += abs(t.Amount.Cents)
	}

	out := make([]CategoryExpense, 0, len(order))
	for i, name := range order {
		out = append(out, CategoryExpense{
			Name:   name,
			Amount: core.Money{Cents: totals[name]},
			Color:  ChartPalette[i%len(ChartPalette)],
		})
	}
	return out
}

// TotalBalance is the unwindowed credit-minus-debit sum over the whole
// history. It is a different figure from a monthly balance.
func TotalBalance(transactions []core.Transaction) core.Money {
	var cents int64
	for _, t := range transactions {
		switch t.Type {
		case core.Credit:
			cents += t.Amount.Cents
		case core.Debit:
			cents -= abs(t.Amount.Cents)
		}
	}
	return core.Money{Cents: cents}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
