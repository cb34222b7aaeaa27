// Package classify turns raw CSV exports into flag-enriched transactions.
//
// The source files carry localized (Japanese) column headers. The
// classifier maps them to normalized fields, coerces types, computes the
// category flags, and drops rows that are excluded from calculation or
// represent inter-account transfers. It is a pure transform: all policy
// lives in the Config value, never in package state.
package classify

import (
	"strings"

	"kakeibo/internal/core"
)

// FixedCostStrategy selects how fixed costs are recognized. The two
// strategies are alternatives, chosen once per deployment.
type FixedCostStrategy string

const (
	// StrategyCategoryList marks a row fixed when its major category is a
	// member of the configured category set. Authoritative default.
	StrategyCategoryList FixedCostStrategy = "category-list"

	// StrategyKeywordMatch marks a row fixed when its description, minor
	// category or major category contains any configured keyword. Fallback
	// for deployments without a curated category set.
	StrategyKeywordMatch FixedCostStrategy = "keyword-match"
)

// Localized source column labels.
const (
	colTarget      = "計算対象"
	colDate        = "日付"
	colDescription = "内容"
	colAmount      = "金額（円）"
	colInstitution = "保有金融機関"
	colMajor       = "大項目"
	colMinor       = "中項目"
	colMemo        = "メモ"
	colTransfer    = "振替"
	colID          = "ID"
)

// RequiredColumns lists every column a source file must carry.
var RequiredColumns = []string{
	colTarget, colDate, colDescription, colAmount, colInstitution,
	colMajor, colMinor, colMemo, colTransfer, colID,
}

// Config holds the category markers and fixed-cost policy. Markers are
// matched by substring against the source labels, mirroring how the
// origin system names its categories ("収入", "収入 - その他", ...).
type Config struct {
	IncomeMarker string
	SalaryMarker string
	BonusMarker  string
	FoodMarker   string

	FixedCostCategories []string
	FixedCostKeywords   []string
	Strategy            FixedCostStrategy
}

// DefaultConfig returns the marker set and fixed-cost categories used by
// the MoneyForward export format.
func DefaultConfig() Config {
	return Config{
		IncomeMarker: "収入",
		SalaryMarker: "給与",
		BonusMarker:  "一時所得",
		FoodMarker:   "食費",
		FixedCostCategories: []string{
			"通信費",
			"保険",
			"水道・光熱費",
			"住宅",
		},
		FixedCostKeywords: []string{
			"家賃", "保険", "通信", "固定費", "サブスク", "定期購入", "会費", "支払い",
		},
		Strategy: StrategyCategoryList,
	}
}

// Validate checks the config for an unusable strategy or missing markers.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyCategoryList, StrategyKeywordMatch:
	default:
		return &core.ParseError{Field: "strategy", Value: string(c.Strategy), Err: errInvalidStrategy}
	}
	return nil
}

// Classify maps, coerces, flags and filters every row of the given files.
//
// It fails with *core.SchemaError when a file misses a required column and
// with *core.ParseError on the first malformed cell: the whole batch is
// rejected rather than silently dropping financial rows. When every row is
// excluded by the target/transfer filter it returns *core.EmptyResultError,
// which callers treat as an empty state, not a failure.
func Classify(files []core.SourceFile, cfg Config) ([]core.Transaction, error) {
	sawRows := false
	var out []core.Transaction

	for _, f := range files {
		idx, err := columnIndex(f)
		if err != nil {
			return nil, err
		}
		for i, row := range f.Rows {
			sawRows = true
			tx, keep, err := classifyRow(f, idx, i, row, cfg)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, tx)
			}
		}
	}

	if len(out) == 0 {
		if !sawRows {
			return nil, &core.EmptyResultError{Reason: "no rows in source files"}
		}
		return nil, &core.EmptyResultError{Reason: "all rows excluded by target/transfer filter"}
	}
	return out, nil
}

// columnIndex resolves the localized header of one file to field
// positions, order-insensitively.
func columnIndex(f core.SourceFile) (map[string]int, error) {
	idx := make(map[string]int, len(f.Columns))
	for i, name := range f.Columns {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := idx[required]; !ok {
			return nil, &core.SchemaError{File: f.Name, Column: required}
		}
	}
	return idx, nil
}

func classifyRow(f core.SourceFile, idx map[string]int, line int, row []string, cfg Config) (core.Transaction, bool, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	// Line numbers are 1-based and account for the header row.
	lineNo := line + 2

	isTarget, err := parseFlag(cell(colTarget))
	if err != nil {
		return core.Transaction{}, false, &core.ParseError{File: f.Name, Line: lineNo, Field: "is_target", Value: cell(colTarget), Err: err}
	}
	isTransfer, err := parseFlag(cell(colTransfer))
	if err != nil {
		return core.Transaction{}, false, &core.ParseError{File: f.Name, Line: lineNo, Field: "is_transfer", Value: cell(colTransfer), Err: err}
	}

	date, err := parseDate(cell(colDate))
	if err != nil {
		return core.Transaction{}, false, &core.ParseError{File: f.Name, Line: lineNo, Field: "date", Value: cell(colDate), Err: err}
	}
	amount, err := core.ParseYen(cell(colAmount))
	if err != nil {
		return core.Transaction{}, false, &core.ParseError{File: f.Name, Line: lineNo, Field: "amount", Value: cell(colAmount), Err: err}
	}

	// Excluded rows are dropped after coercion: a malformed date in a
	// non-target row still rejects the batch, keeping loads deterministic.
	if !isTarget || isTransfer {
		return core.Transaction{}, false, nil
	}

	tx := core.Transaction{
		Date:          date,
		Description:   cell(colDescription),
		Amount:        amount,
		Institution:   cell(colInstitution),
		MajorCategory: cell(colMajor),
		MinorCategory: cell(colMinor),
		Memo:          cell(colMemo),
		ID:            cell(colID),
		SourceFile:    f.Name,
	}
	applyFlags(&tx, cfg)
	return tx, true, nil
}

// applyFlags computes the classification flags, highest specificity first.
// Income-major rows matching neither the salary nor the bonus marker are
// counted as other income rather than left unclassified, so that exactly
// one of the five income/cost flags holds per row.
func applyFlags(tx *core.Transaction, cfg Config) {
	isIncome := strings.Contains(tx.MajorCategory, cfg.IncomeMarker)

	if isIncome {
		switch {
		case strings.Contains(tx.MinorCategory, cfg.SalaryMarker):
			tx.IsSalary = true
		case strings.Contains(tx.MinorCategory, cfg.BonusMarker):
			tx.IsBonus = true
		default:
			tx.IsOtherIncome = true
		}
		return
	}

	tx.IsFood = strings.Contains(tx.MajorCategory, cfg.FoodMarker)

	switch cfg.Strategy {
	case StrategyKeywordMatch:
		for _, kw := range cfg.FixedCostKeywords {
			if strings.Contains(tx.Description, kw) ||
				strings.Contains(tx.MinorCategory, kw) ||
				strings.Contains(tx.MajorCategory, kw) {
				tx.IsFixedCost = true
				break
			}
		}
	default:
		for _, cat := range cfg.FixedCostCategories {
			if tx.MajorCategory == cat {
				tx.IsFixedCost = true
				break
			}
		}
	}
	tx.IsVariableCost = !tx.IsFixedCost
}
