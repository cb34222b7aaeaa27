package core

// MonthlyBalance is income, expense and their sum for one calendar month.
// Expense keeps its ledger sign (negative), so Balance = Income + Expense.
type MonthlyBalance struct {
	Month   Month
	Income  Money
	Expense Money
	Balance Money
}

// CostSummary is the fixed/variable cost structure of one month.
// FixedCost and VariableCost are positive magnitudes; the ratios are
// percentages rounded to one decimal, both zero when TotalCost is zero.
type CostSummary struct {
	Month             Month
	FixedCost         Money
	VariableCost      Money
	TotalCost         Money
	FixedCostRatio    float64
	VariableCostRatio float64
}

// FoodSummary is one month of food spending pivoted by minor category.
// ByCategory carries positive magnitudes with missing combinations at
// zero; the stable category list lives on the enclosing FoodReport.
type FoodSummary struct {
	Month      Month
	ByCategory map[string]Money
	TotalFood  Money
}

// FoodReport is the full food pivot: chronologically ordered months plus
// the sorted union of minor categories seen, so charts get a stable
// column order.
type FoodReport struct {
	Categories []string
	Months     []FoodSummary
}

// WorkdayFood is one month of spending in a single designated minor
// category averaged over that month's weekdays (Monday-Friday).
type WorkdayFood struct {
	Month        Month
	Total        Money
	WeekdayCount int
	DailyAverage Money
}

// DateRange is the span of the filtered transaction set.
type DateRange struct {
	Oldest Date
	Newest Date
}
