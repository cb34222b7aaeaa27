package aggregate

import (
	"math"

	"kakeibo/internal/core"
)

// BalanceTotals are the whole-period income/expense tiles.
type BalanceTotals struct {
	TotalIncome  core.Money
	TotalExpense core.Money
}

// CostTotals are the whole-period cost-structure tiles: totals, monthly
// means rounded to yen, and overall ratios rounded to one decimal.
type CostTotals struct {
	TotalFixed         core.Money
	TotalVariable      core.Money
	TotalCost          core.Money
	MonthlyAvgFixed    core.Money
	MonthlyAvgVariable core.Money
	MonthlyAvgTotal    core.Money
	FixedCostRatio     float64
	VariableCostRatio  float64
}

// FoodTotals are the whole-period food tiles. WorkdayShare is the
// designated category's share of total food spending, in percent.
type FoodTotals struct {
	TotalFood       core.Money
	MonthlyAvgFood  core.Money
	WorkdayTotal    core.Money
	WorkdayDailyAvg core.Money
	TotalWeekdays   int
	WorkdayShare    float64
}

// SummarizeBalance sums income and expense over the whole period.
func SummarizeBalance(txs []core.Transaction, mode IncomeMode) BalanceTotals {
	var t BalanceTotals
	for _, tx := range txs {
		if tx.IsIncome() {
			if countsAsIncome(tx, mode) {
				t.TotalIncome = t.TotalIncome.Add(tx.Amount)
			}
			continue
		}
		t.TotalExpense = t.TotalExpense.Add(tx.Amount)
	}
	return t
}

// SummarizeCosts folds monthly cost summaries into period totals.
func SummarizeCosts(months []core.CostSummary) CostTotals {
	var t CostTotals
	for _, m := range months {
		t.TotalFixed = t.TotalFixed.Add(m.FixedCost)
		t.TotalVariable = t.TotalVariable.Add(m.VariableCost)
	}
	t.TotalCost = t.TotalFixed.Add(t.TotalVariable)
	t.FixedCostRatio, t.VariableCostRatio = costRatios(t.TotalFixed, t.TotalVariable, t.TotalCost)

	if n := int64(len(months)); n > 0 {
		t.MonthlyAvgFixed = core.Money{Yen: roundDiv(t.TotalFixed.Yen, n)}
		t.MonthlyAvgVariable = core.Money{Yen: roundDiv(t.TotalVariable.Yen, n)}
		t.MonthlyAvgTotal = core.Money{Yen: roundDiv(t.TotalCost.Yen, n)}
	}
	return t
}

// SummarizeFood folds the food pivot and workday averages into period totals.
func SummarizeFood(report core.FoodReport, workdays []core.WorkdayFood) FoodTotals {
	var t FoodTotals
	for _, m := range report.Months {
		t.TotalFood = t.TotalFood.Add(m.TotalFood)
	}
	if n := int64(len(report.Months)); n > 0 {
		t.MonthlyAvgFood = core.Money{Yen: roundDiv(t.TotalFood.Yen, n)}
	}

	var avgSum int64
	for _, w := range workdays {
		t.WorkdayTotal = t.WorkdayTotal.Add(w.Total)
		t.TotalWeekdays += w.WeekdayCount
		avgSum += w.DailyAverage.Yen
	}
	if n := int64(len(workdays)); n > 0 {
		t.WorkdayDailyAvg = core.Money{Yen: roundDiv(avgSum, n)}
	}
	if !t.TotalFood.IsZero() {
		t.WorkdayShare = round1(float64(t.WorkdayTotal.Yen) / float64(t.TotalFood.Yen) * 100)
	}
	return t
}

func roundDiv(sum, n int64) int64 {
	return int64(math.Round(float64(sum) / float64(n)))
}
