package http

import (
	"kakeibo/internal/core"
	"kakeibo/internal/report"
)

// JSON payload shapes for the chart-data endpoints. Amounts are whole
// yen; months are YYYY-MM strings already in chronological order.

type sourceDTO struct {
	FilesRead    int      `json:"files_read"`
	FilesSkipped int      `json:"files_skipped"`
	Months       []string `json:"months"`
}

type rangeDTO struct {
	Oldest string `json:"oldest"`
	Newest string `json:"newest"`
}

type monthlyBalanceDTO struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Balance int64  `json:"balance"`
}

type costSummaryDTO struct {
	Month             string  `json:"month"`
	FixedCost         int64   `json:"fixed_cost"`
	VariableCost      int64   `json:"variable_cost"`
	TotalCost         int64   `json:"total_cost"`
	FixedCostRatio    float64 `json:"fixed_cost_ratio"`
	VariableCostRatio float64 `json:"variable_cost_ratio"`
}

type foodMonthDTO struct {
	Month      string           `json:"month"`
	ByCategory map[string]int64 `json:"by_category"`
	TotalFood  int64            `json:"total_food"`
}

type workdayFoodDTO struct {
	Month        string `json:"month"`
	Total        int64  `json:"total"`
	WeekdayCount int    `json:"weekday_count"`
	DailyAverage int64  `json:"daily_average"`
}

func sourceOf(s report.Source) sourceDTO {
	return sourceDTO{FilesRead: s.FilesRead, FilesSkipped: s.FilesSkipped, Months: s.Months}
}

func rangeOf(r core.DateRange) rangeDTO {
	const layout = "2006/01/02"
	return rangeDTO{
		Oldest: r.Oldest.Format(layout),
		Newest: r.Newest.Format(layout),
	}
}

func overviewPayload(ov report.Overview) map[string]any {
	return map[string]any{
		"source": sourceOf(ov.Source),
		"range":  rangeOf(ov.Range),
		"balance": map[string]any{
			"total_income":  ov.Balance.TotalIncome.Yen,
			"total_expense": ov.Balance.TotalExpense.Yen,
		},
		"costs": map[string]any{
			"total_fixed":          ov.Costs.TotalFixed.Yen,
			"total_variable":       ov.Costs.TotalVariable.Yen,
			"total_cost":           ov.Costs.TotalCost.Yen,
			"monthly_avg_fixed":    ov.Costs.MonthlyAvgFixed.Yen,
			"monthly_avg_variable": ov.Costs.MonthlyAvgVariable.Yen,
			"monthly_avg_total":    ov.Costs.MonthlyAvgTotal.Yen,
			"fixed_cost_ratio":     ov.Costs.FixedCostRatio,
			"variable_cost_ratio":  ov.Costs.VariableCostRatio,
		},
		"food": map[string]any{
			"total_food":        ov.Food.TotalFood.Yen,
			"monthly_avg_food":  ov.Food.MonthlyAvgFood.Yen,
			"workday_total":     ov.Food.WorkdayTotal.Yen,
			"workday_daily_avg": ov.Food.WorkdayDailyAvg.Yen,
			"total_weekdays":    ov.Food.TotalWeekdays,
			"workday_share":     ov.Food.WorkdayShare,
		},
	}
}

func balancePayload(rep report.BalanceReport) map[string]any {
	months := make([]monthlyBalanceDTO, 0, len(rep.Months))
	for _, m := range rep.Months {
		months = append(months, monthlyBalanceDTO{
			Month:   m.Month.String(),
			Income:  m.Income.Yen,
			Expense: m.Expense.Yen,
			Balance: m.Balance.Yen,
		})
	}
	return map[string]any{
		"source": sourceOf(rep.Source),
		"range":  rangeOf(rep.Range),
		"mode":   string(rep.Mode),
		"totals": map[string]any{
			"total_income":  rep.Totals.TotalIncome.Yen,
			"total_expense": rep.Totals.TotalExpense.Yen,
		},
		"months": months,
	}
}

func costsPayload(rep report.CostReport) map[string]any {
	months := make([]costSummaryDTO, 0, len(rep.Months))
	for _, m := range rep.Months {
		months = append(months, costSummaryDTO{
			Month:             m.Month.String(),
			FixedCost:         m.FixedCost.Yen,
			VariableCost:      m.VariableCost.Yen,
			TotalCost:         m.TotalCost.Yen,
			FixedCostRatio:    m.FixedCostRatio,
			VariableCostRatio: m.VariableCostRatio,
		})
	}
	return map[string]any{
		"source": sourceOf(rep.Source),
		"range":  rangeOf(rep.Range),
		"totals": map[string]any{
			"total_fixed":          rep.Totals.TotalFixed.Yen,
			"total_variable":       rep.Totals.TotalVariable.Yen,
			"total_cost":           rep.Totals.TotalCost.Yen,
			"monthly_avg_fixed":    rep.Totals.MonthlyAvgFixed.Yen,
			"monthly_avg_variable": rep.Totals.MonthlyAvgVariable.Yen,
			"monthly_avg_total":    rep.Totals.MonthlyAvgTotal.Yen,
			"fixed_cost_ratio":     rep.Totals.FixedCostRatio,
			"variable_cost_ratio":  rep.Totals.VariableCostRatio,
		},
		"months": months,
	}
}

func foodPayload(rep report.FoodReport) map[string]any {
	months := make([]foodMonthDTO, 0, len(rep.Pivot.Months))
	for _, m := range rep.Pivot.Months {
		byCat := make(map[string]int64, len(m.ByCategory))
		for cat, amount := range m.ByCategory {
			byCat[cat] = amount.Yen
		}
		months = append(months, foodMonthDTO{
			Month:      m.Month.String(),
			ByCategory: byCat,
			TotalFood:  m.TotalFood.Yen,
		})
	}
	workdays := make([]workdayFoodDTO, 0, len(rep.Workdays))
	for _, w := range rep.Workdays {
		workdays = append(workdays, workdayFoodDTO{
			Month:        w.Month.String(),
			Total:        w.Total.Yen,
			WeekdayCount: w.WeekdayCount,
			DailyAverage: w.DailyAverage.Yen,
		})
	}
	return map[string]any{
		"source":     sourceOf(rep.Source),
		"range":      rangeOf(rep.Range),
		"categories": rep.Pivot.Categories,
		"totals": map[string]any{
			"total_food":        rep.Totals.TotalFood.Yen,
			"monthly_avg_food":  rep.Totals.MonthlyAvgFood.Yen,
			"workday_total":     rep.Totals.WorkdayTotal.Yen,
			"workday_daily_avg": rep.Totals.WorkdayDailyAvg.Yen,
			"total_weekdays":    rep.Totals.TotalWeekdays,
			"workday_share":     rep.Totals.WorkdayShare,
		},
		"months":   months,
		"workdays": workdays,
	}
}
