package core

import (
	"errors"
	"time"
)

type (
	// Date is a calendar day (UTC, midnight).
	Date struct {
		time.Time
	}

	// Month identifies a calendar month. The zero value is invalid.
	Month struct {
		Year  int
		Month time.Month
	}

	// Transaction is one classified ledger entry. Rows excluded from
	// calculation (non-target or inter-account transfers) never reach
	// this type; the classifier drops them.
	Transaction struct {
		Date          Date
		Description   string
		Amount        Money
		Institution   string
		MajorCategory string
		MinorCategory string
		Memo          string
		ID            string
		SourceFile    string

		IsSalary       bool
		IsBonus        bool
		IsOtherIncome  bool
		IsFixedCost    bool
		IsVariableCost bool
		IsFood         bool
	}

	// SourceFile is one raw CSV export: header plus string cells, tagged
	// with the object name it was read from. Column order may differ
	// between files; the classifier matches columns by name.
	SourceFile struct {
		Name    string
		Columns []string
		Rows    [][]string

		// StatementMonth is the calendar month the export is filed
		// under, derived from the statement filename. Zero when the
		// name is outside the statement convention.
		StatementMonth Month
	}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month the date falls in.
func (d Date) Month() Month {
	return Month{Year: d.Time.Year(), Month: d.Time.Month()}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// MonthOf builds a Month from a year and a 1-12 month number.
func MonthOf(year, month int) Month {
	return Month{Year: year, Month: time.Month(month)}
}

// String renders the month as YYYY-MM, the key downstream charts sort on.
func (m Month) String() string {
	return m.Start().Format("2006-01")
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether m is the zero (invalid) month.
func (m Month) IsZero() bool {
	return m == Month{}
}

// Before reports whether m is chronologically before o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	t := m.Start().AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Weekdays counts the Monday-through-Friday days in the month by
// enumerating every calendar day.
func (m Month) Weekdays() int {
	count := 0
	for t := m.Start(); t.Month() == m.Month; t = t.AddDate(0, 0, 1) {
		switch t.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// IsIncome reports whether the row carries any of the income flags.
func (t Transaction) IsIncome() bool {
	return t.IsSalary || t.IsBonus || t.IsOtherIncome
}
