package loader

import (
	"errors"
	"path"
	"regexp"
	"strconv"
	"time"

	"kakeibo/internal/core"
)

// Statement exports are named 収入・支出詳細_YYYY-MM-DD_YYYY-MM-DD.csv,
// covering one payday-aligned period rather than a calendar month.
var statementPattern = regexp.MustCompile(`^収入・支出詳細_(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})\.csv$`)

var (
	// ErrBadStatementName is returned for filenames outside the convention.
	ErrBadStatementName = errors.New("filename does not match 収入・支出詳細_YYYY-MM-DD_YYYY-MM-DD.csv")

	// ErrBadStatementPeriod is returned when the start date is not before
	// the end date.
	ErrBadStatementPeriod = errors.New("statement start date must be before end date")
)

// StatementPeriod is the date span a statement export covers.
type StatementPeriod struct {
	Start core.Date
	End   core.Date
}

// ParseStatementFilename extracts the period from an export filename.
func ParseStatementFilename(name string) (StatementPeriod, error) {
	m := statementPattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return StatementPeriod{}, ErrBadStatementName
	}
	start, err := time.ParseInLocation("2006-01-02", m[1], time.UTC)
	if err != nil {
		return StatementPeriod{}, ErrBadStatementName
	}
	end, err := time.ParseInLocation("2006-01-02", m[2], time.UTC)
	if err != nil {
		return StatementPeriod{}, ErrBadStatementName
	}
	if !start.Before(end) {
		return StatementPeriod{}, ErrBadStatementPeriod
	}
	return StatementPeriod{Start: core.Date{Time: start}, End: core.Date{Time: end}}, nil
}

// StatementMonth maps the period to the calendar month it is filed under.
// A statement starting near the payday of one month holds the following
// month's data, so the month is taken offsetDays past the start date. The
// offset is configurable: it encodes one payroll export convention and is
// fragile near month boundaries.
func (p StatementPeriod) StatementMonth(offsetDays int) core.Month {
	t := p.Start.AddDate(0, 0, offsetDays)
	return core.MonthOf(t.Year(), int(t.Month()))
}

// StatementKey returns the store prefix a statement belongs under, e.g.
// "year=2025/month=1".
func StatementKey(prefix string, m core.Month) string {
	return path.Join(prefix, "year="+strconv.Itoa(m.Year), "month="+strconv.Itoa(int(m.Month)))
}
