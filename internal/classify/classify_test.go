package classify

import (
	"errors"
	"testing"

	"kakeibo/internal/core"
)

// row builds a source row in the canonical column order used by testFile.
func row(target, date, desc, amount, institution, major, minor, memo, transfer, id string) []string {
	return []string{target, date, desc, amount, institution, major, minor, memo, transfer, id}
}

func testFile(name string, rows ...[]string) core.SourceFile {
	return core.SourceFile{
		Name:    name,
		Columns: append([]string(nil), RequiredColumns...),
		Rows:    rows,
	}
}

func TestClassifyMissingColumn(t *testing.T) {
	f := core.SourceFile{
		Name:    "broken.csv",
		Columns: []string{"日付", "内容", "金額（円）"},
	}

	_, err := Classify([]core.SourceFile{f}, DefaultConfig())
	var schemaErr *core.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.File != "broken.csv" {
		t.Errorf("SchemaError.File = %q, want broken.csv", schemaErr.File)
	}
	if schemaErr.Column != "計算対象" {
		t.Errorf("SchemaError.Column = %q, want 計算対象", schemaErr.Column)
	}
}

func TestClassifyColumnOrderInsensitive(t *testing.T) {
	// Same data, reshuffled header.
	f := core.SourceFile{
		Name:    "shuffled.csv",
		Columns: []string{"ID", "振替", "メモ", "中項目", "大項目", "保有金融機関", "金額（円）", "内容", "日付", "計算対象"},
		Rows: [][]string{
			{"x1", "0", "", "食料品", "食費", "トマト銀行", "-1200", "スーパー", "2025/01/10", "1"},
		},
	}

	txs, err := Classify([]core.SourceFile{f}, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.Amount.Yen != -1200 || tx.MajorCategory != "食費" || tx.ID != "x1" {
		t.Errorf("fields misassigned: %+v", tx)
	}
	if !tx.IsFood {
		t.Error("expected IsFood for 食費 major category")
	}
}

func TestClassifyParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		row   []string
		field string
	}{
		{
			name:  "bad date",
			row:   row("1", "not-a-date", "x", "100", "", "食費", "", "", "0", "1"),
			field: "date",
		},
		{
			name:  "bad amount",
			row:   row("1", "2025/01/10", "x", "ten", "", "食費", "", "", "0", "1"),
			field: "amount",
		},
		{
			name:  "bad target flag",
			row:   row("maybe", "2025/01/10", "x", "100", "", "食費", "", "", "0", "1"),
			field: "is_target",
		},
		{
			name:  "bad transfer flag",
			row:   row("1", "2025/01/10", "x", "100", "", "食費", "", "", "yes", "1"),
			field: "is_transfer",
		},
		{
			// The filter runs after coercion: a bad cell in an excluded
			// row still rejects the whole batch.
			name:  "bad date in non-target row",
			row:   row("0", "garbage", "x", "100", "", "食費", "", "", "0", "1"),
			field: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := row("1", "2025/01/10", "ok", "100", "", "食費", "", "", "0", "2")
			_, err := Classify([]core.SourceFile{testFile("f.csv", tt.row, good)}, DefaultConfig())
			var parseErr *core.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Field != tt.field {
				t.Errorf("ParseError.Field = %q, want %q", parseErr.Field, tt.field)
			}
			if parseErr.Line != 2 {
				t.Errorf("ParseError.Line = %d, want 2", parseErr.Line)
			}
		})
	}
}

func TestClassifyFiltersTargetAndTransfer(t *testing.T) {
	f := testFile("f.csv",
		row("1", "2025/01/05", "keep", "-100", "", "食費", "", "", "0", "a"),
		row("0", "2025/01/06", "not target", "-200", "", "食費", "", "", "0", "b"),
		row("1", "2025/01/07", "transfer", "-300", "", "その他", "", "", "1", "c"),
		row("true", "2025-01-08", "alt formats", "-400", "", "食費", "", "", "false", "d"),
	)

	txs, err := Classify([]core.SourceFile{f}, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].ID != "a" || txs[1].ID != "d" {
		t.Errorf("wrong rows kept: %q, %q", txs[0].ID, txs[1].ID)
	}
}

func TestClassifyAllRowsExcluded(t *testing.T) {
	f := testFile("f.csv",
		row("0", "2025/01/05", "x", "-100", "", "食費", "", "", "0", "a"),
		row("1", "2025/01/06", "y", "-200", "", "食費", "", "", "1", "b"),
	)

	_, err := Classify([]core.SourceFile{f}, DefaultConfig())
	var emptyErr *core.EmptyResultError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyResultError, got %v", err)
	}
}

func TestClassifyNoRows(t *testing.T) {
	_, err := Classify([]core.SourceFile{testFile("f.csv")}, DefaultConfig())
	var emptyErr *core.EmptyResultError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyResultError, got %v", err)
	}
}

func TestClassifyFlags(t *testing.T) {
	tests := []struct {
		name        string
		major, minor string
		desc        string
		wantSalary   bool
		wantBonus    bool
		wantOther    bool
		wantFixed    bool
		wantVariable bool
		wantFood     bool
	}{
		{name: "salary", major: "収入", minor: "給与", wantSalary: true},
		{name: "bonus", major: "収入", minor: "一時所得", wantBonus: true},
		{name: "other income", major: "収入", minor: "雑所得", wantOther: true},
		{name: "income with empty minor", major: "収入", minor: "", wantOther: true},
		{name: "food is variable", major: "食費", minor: "食料品", wantFood: true, wantVariable: true},
		{name: "fixed category", major: "通信費", minor: "携帯電話", wantFixed: true},
		{name: "fixed category housing", major: "住宅", minor: "家賃", wantFixed: true},
		{name: "residual variable", major: "趣味・娯楽", minor: "", wantVariable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFile("f.csv",
				row("1", "2025/01/05", tt.desc, "-100", "", tt.major, tt.minor, "", "0", "x"))
			txs, err := Classify([]core.SourceFile{f}, DefaultConfig())
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			tx := txs[0]
			got := [6]bool{tx.IsSalary, tx.IsBonus, tx.IsOtherIncome, tx.IsFixedCost, tx.IsVariableCost, tx.IsFood}
			want := [6]bool{tt.wantSalary, tt.wantBonus, tt.wantOther, tt.wantFixed, tt.wantVariable, tt.wantFood}
			if got != want {
				t.Errorf("flags = %v, want %v (tx %+v)", got, want, tx)
			}
		})
	}
}

// Exactly one of the five income/cost flags must hold for every kept row.
func TestClassifyFlagExclusivity(t *testing.T) {
	f := testFile("f.csv",
		row("1", "2025/01/01", "", "500000", "", "収入", "給与", "", "0", "1"),
		row("1", "2025/01/02", "", "100000", "", "収入", "一時所得", "", "0", "2"),
		row("1", "2025/01/03", "", "3000", "", "収入", "還元", "", "0", "3"),
		row("1", "2025/01/04", "", "-8000", "", "通信費", "", "", "0", "4"),
		row("1", "2025/01/05", "", "-4000", "", "食費", "食料品", "", "0", "5"),
		row("1", "2025/01/06", "", "-2000", "", "趣味・娯楽", "", "", "0", "6"),
	)

	txs, err := Classify([]core.SourceFile{f}, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for _, tx := range txs {
		n := 0
		for _, flag := range []bool{tx.IsSalary, tx.IsBonus, tx.IsOtherIncome, tx.IsFixedCost, tx.IsVariableCost} {
			if flag {
				n++
			}
		}
		if n != 1 {
			t.Errorf("transaction %s: %d flags set, want exactly 1", tx.ID, n)
		}
	}
}

func TestClassifyKeywordStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyKeywordMatch

	tests := []struct {
		name      string
		desc      string
		major     string
		minor     string
		wantFixed bool
	}{
		{name: "keyword in description", desc: "アパート家賃", major: "住宅費用", wantFixed: true},
		{name: "keyword in minor category", minor: "生命保険", major: "その他", wantFixed: true},
		{name: "keyword in major category", major: "通信", wantFixed: true},
		{name: "no keyword anywhere", desc: "スーパー", major: "日用品", wantFixed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFile("f.csv",
				row("1", "2025/01/05", tt.desc, "-100", "", tt.major, tt.minor, "", "0", "x"))
			txs, err := Classify([]core.SourceFile{f}, cfg)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if txs[0].IsFixedCost != tt.wantFixed {
				t.Errorf("IsFixedCost = %v, want %v", txs[0].IsFixedCost, tt.wantFixed)
			}
			if txs[0].IsVariableCost == tt.wantFixed {
				t.Errorf("IsVariableCost must be the complement of IsFixedCost")
			}
		})
	}
}

func TestClassifySourceFileTag(t *testing.T) {
	a := testFile("a.csv", row("1", "2025/01/05", "", "-100", "", "食費", "", "", "0", "1"))
	b := testFile("b.csv", row("1", "2025/02/05", "", "-200", "", "食費", "", "", "0", "2"))

	txs, err := Classify([]core.SourceFile{a, b}, DefaultConfig())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if txs[0].SourceFile != "a.csv" || txs[1].SourceFile != "b.csv" {
		t.Errorf("source tags = %q, %q", txs[0].SourceFile, txs[1].SourceFile)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	cfg.Strategy = "guesswork"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
