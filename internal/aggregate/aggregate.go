// Package aggregate groups classified transactions by calendar month and
// computes the summaries the dashboard renders: income/expense balances,
// fixed/variable cost structure, a food pivot, and weekday averages.
//
// All functions are pure, single-pass transforms over the in-memory set.
// Output is always chronologically sorted by month: downstream charts
// assume a monotonic x-axis.
package aggregate

import (
	"math"
	"sort"

	"kakeibo/internal/core"
)

// IncomeMode controls whether bonus and other income count toward income.
type IncomeMode string

const (
	// IncomeAll sums salary, bonus and other income.
	IncomeAll IncomeMode = "all"

	// IncomeSalaryOnly sums salary alone. Bonus and other-income rows are
	// excluded from income without becoming expense.
	IncomeSalaryOnly IncomeMode = "salary"
)

// MonthlyBalances computes income, expense and balance per month.
// Expense keeps its negative ledger sign, so Balance = Income + Expense
// exactly. Returns *core.EmptyResultError when txs is empty.
func MonthlyBalances(txs []core.Transaction, mode IncomeMode) ([]core.MonthlyBalance, error) {
	if len(txs) == 0 {
		return nil, &core.EmptyResultError{Reason: "no transactions to aggregate"}
	}

	byMonth := make(map[core.Month]*core.MonthlyBalance)
	for _, tx := range txs {
		m := tx.Date.Month()
		row, ok := byMonth[m]
		if !ok {
			row = &core.MonthlyBalance{Month: m}
			byMonth[m] = row
		}
		switch {
		case tx.IsIncome():
			if countsAsIncome(tx, mode) {
				row.Income = row.Income.Add(tx.Amount)
			}
		default:
			row.Expense = row.Expense.Add(tx.Amount)
		}
	}

	out := make([]core.MonthlyBalance, 0, len(byMonth))
	for _, row := range byMonth {
		row.Balance = row.Income.Add(row.Expense)
		out = append(out, *row)
	}
	sortByMonth(out, func(b core.MonthlyBalance) core.Month { return b.Month })
	return out, nil
}

func countsAsIncome(tx core.Transaction, mode IncomeMode) bool {
	if mode == IncomeSalaryOnly {
		return tx.IsSalary
	}
	return true
}

// CostSummaries computes the monthly fixed/variable cost structure over
// the non-income rows. Costs are sign-flipped to positive magnitudes and
// the ratios are percentages rounded to one decimal; both ratios are zero
// for a month whose total cost is zero.
func CostSummaries(txs []core.Transaction) ([]core.CostSummary, error) {
	if len(txs) == 0 {
		return nil, &core.EmptyResultError{Reason: "no transactions to aggregate"}
	}

	byMonth := make(map[core.Month]*core.CostSummary)
	for _, tx := range txs {
		if tx.IsIncome() {
			continue
		}
		m := tx.Date.Month()
		row, ok := byMonth[m]
		if !ok {
			row = &core.CostSummary{Month: m}
			byMonth[m] = row
		}
		if tx.IsFixedCost {
			row.FixedCost = row.FixedCost.Add(tx.Amount.Neg())
		} else {
			row.VariableCost = row.VariableCost.Add(tx.Amount.Neg())
		}
	}

	out := make([]core.CostSummary, 0, len(byMonth))
	for _, row := range byMonth {
		row.TotalCost = row.FixedCost.Add(row.VariableCost)
		row.FixedCostRatio, row.VariableCostRatio = costRatios(row.FixedCost, row.VariableCost, row.TotalCost)
		out = append(out, *row)
	}
	sortByMonth(out, func(c core.CostSummary) core.Month { return c.Month })
	return out, nil
}

// costRatios computes percentage shares rounded to one decimal, with an
// explicit zero-total guard instead of letting the division fault.
func costRatios(fixed, variable, total core.Money) (float64, float64) {
	if total.IsZero() {
		return 0, 0
	}
	f := round1(float64(fixed.Yen) / float64(total.Yen) * 100)
	v := round1(float64(variable.Yen) / float64(total.Yen) * 100)
	return f, v
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// FoodPivot groups food-flagged rows by (month, minor category) and
// pivots into one column per category, zero-filled and sign-flipped, with
// a row-wise TotalFood. The category list is sorted for chart stability.
func FoodPivot(txs []core.Transaction) (core.FoodReport, error) {
	if len(txs) == 0 {
		return core.FoodReport{}, &core.EmptyResultError{Reason: "no transactions to aggregate"}
	}

	catSet := make(map[string]struct{})
	byMonth := make(map[core.Month]map[string]core.Money)
	for _, tx := range txs {
		if !tx.IsFood {
			continue
		}
		m := tx.Date.Month()
		cats, ok := byMonth[m]
		if !ok {
			cats = make(map[string]core.Money)
			byMonth[m] = cats
		}
		cats[tx.MinorCategory] = cats[tx.MinorCategory].Add(tx.Amount.Neg())
		catSet[tx.MinorCategory] = struct{}{}
	}

	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	months := make([]core.FoodSummary, 0, len(byMonth))
	for m, cats := range byMonth {
		row := core.FoodSummary{Month: m, ByCategory: make(map[string]core.Money, len(categories))}
		for _, c := range categories {
			amount := cats[c] // zero value fills missing combinations
			row.ByCategory[c] = amount
			row.TotalFood = row.TotalFood.Add(amount)
		}
		months = append(months, row)
	}
	sortByMonth(months, func(f core.FoodSummary) core.Month { return f.Month })
	return core.FoodReport{Categories: categories, Months: months}, nil
}

// WorkdayAverages computes, for months with spending in the designated
// minor category, the total magnitude divided by that month's weekday
// count, rounded to the nearest yen.
func WorkdayAverages(txs []core.Transaction, minorCategory string) ([]core.WorkdayFood, error) {
	if len(txs) == 0 {
		return nil, &core.EmptyResultError{Reason: "no transactions to aggregate"}
	}

	byMonth := make(map[core.Month]core.Money)
	for _, tx := range txs {
		if !tx.IsFood || tx.MinorCategory != minorCategory {
			continue
		}
		m := tx.Date.Month()
		byMonth[m] = byMonth[m].Add(tx.Amount.Neg())
	}

	out := make([]core.WorkdayFood, 0, len(byMonth))
	for m, total := range byMonth {
		weekdays := m.Weekdays()
		avg := int64(math.Round(float64(total.Yen) / float64(weekdays)))
		out = append(out, core.WorkdayFood{
			Month:        m,
			Total:        total,
			WeekdayCount: weekdays,
			DailyAverage: core.Money{Yen: avg},
		})
	}
	sortByMonth(out, func(w core.WorkdayFood) core.Month { return w.Month })
	return out, nil
}

// Range returns the oldest and newest transaction dates.
func Range(txs []core.Transaction) (core.DateRange, error) {
	if len(txs) == 0 {
		return core.DateRange{}, &core.EmptyResultError{Reason: "no transactions to aggregate"}
	}
	r := core.DateRange{Oldest: txs[0].Date, Newest: txs[0].Date}
	for _, tx := range txs[1:] {
		if tx.Date.Before(r.Oldest.Time) {
			r.Oldest = tx.Date
		}
		if tx.Date.After(r.Newest.Time) {
			r.Newest = tx.Date
		}
	}
	return r, nil
}

func sortByMonth[T any](rows []T, key func(T) core.Month) {
	sort.Slice(rows, func(i, j int) bool {
		return key(rows[i]).Before(key(rows[j]))
	})
}
