package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kakeibo/internal/aggregate"
	"kakeibo/internal/core"
	"kakeibo/internal/report"
)

// fakeReporter returns canned reports, or err from every method when
// set. errSource mirrors the service contract: Source stays populated
// alongside the error.
type fakeReporter struct {
	err       error
	errSource report.Source
	lastMode  aggregate.IncomeMode
}

func (f *fakeReporter) Overview(context.Context) (report.Overview, error) {
	if f.err != nil {
		return report.Overview{Source: f.errSource}, f.err
	}
	return report.Overview{
		Source:  report.Source{FilesRead: 2, FilesSkipped: 1, Months: []string{"2025-01"}},
		Range:   testRange(),
		Balance: aggregate.BalanceTotals{TotalIncome: core.Money{Yen: 300000}, TotalExpense: core.Money{Yen: -50000}},
	}, nil
}

func (f *fakeReporter) Balance(_ context.Context, mode aggregate.IncomeMode) (report.BalanceReport, error) {
	if f.err != nil {
		return report.BalanceReport{Source: f.errSource}, f.err
	}
	f.lastMode = mode
	return report.BalanceReport{
		Source: report.Source{FilesRead: 2},
		Range:  testRange(),
		Mode:   mode,
		Months: []core.MonthlyBalance{{
			Month:   core.MonthOf(2025, 1),
			Income:  core.Money{Yen: 300000},
			Expense: core.Money{Yen: -50000},
			Balance: core.Money{Yen: 250000},
		}},
	}, nil
}

func (f *fakeReporter) Costs(context.Context) (report.CostReport, error) {
	if f.err != nil {
		return report.CostReport{Source: f.errSource}, f.err
	}
	return report.CostReport{
		Source: report.Source{FilesRead: 2},
		Range:  testRange(),
		Months: []core.CostSummary{{
			Month:             core.MonthOf(2025, 1),
			FixedCost:         core.Money{Yen: 30000},
			VariableCost:      core.Money{Yen: 70000},
			TotalCost:         core.Money{Yen: 100000},
			FixedCostRatio:    30.0,
			VariableCostRatio: 70.0,
		}},
	}, nil
}

func (f *fakeReporter) Food(context.Context) (report.FoodReport, error) {
	if f.err != nil {
		return report.FoodReport{Source: f.errSource}, f.err
	}
	return report.FoodReport{
		Source: report.Source{FilesRead: 2},
		Range:  testRange(),
		Pivot: core.FoodReport{
			Categories: []string{"外食", "食料品"},
			Months: []core.FoodSummary{{
				Month: core.MonthOf(2025, 1),
				ByCategory: map[string]core.Money{
					"外食":  {Yen: 8000},
					"食料品": {Yen: 20000},
				},
				TotalFood: core.Money{Yen: 28000},
			}},
		},
		Workdays: []core.WorkdayFood{{
			Month:        core.MonthOf(2025, 1),
			Total:        core.Money{Yen: 21000},
			WeekdayCount: 23,
			DailyAverage: core.Money{Yen: 913},
		}},
	}, nil
}

func testRange() core.DateRange {
	return core.DateRange{
		Oldest: core.Date{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Newest: core.Date{Time: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
}

func newTestServer(t *testing.T, reporter Reporter) *Server {
	t.Helper()
	s := NewServer(":0", reporter)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, s, path); rec.Code != http.StatusOK {
			t.Errorf("%s = %d, want 200", path, rec.Code)
		}
	}
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "家計簿") {
		t.Error("dashboard page missing title")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestOverviewEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	rec := get(t, s, "/api/overview")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)

	src, ok := body["source"].(map[string]any)
	if !ok {
		t.Fatalf("missing source section: %v", body)
	}
	if src["files_read"] != float64(2) || src["files_skipped"] != float64(1) {
		t.Errorf("source = %v", src)
	}
	months, ok := src["months"].([]any)
	if !ok || len(months) != 1 || months[0] != "2025-01" {
		t.Errorf("source months = %v, want [2025-01]", src["months"])
	}
	balance := body["balance"].(map[string]any)
	if balance["total_income"] != float64(300000) {
		t.Errorf("total_income = %v", balance["total_income"])
	}
}

func TestBalanceEndpoint(t *testing.T) {
	reporter := &fakeReporter{}
	s := newTestServer(t, reporter)

	rec := get(t, s, "/api/balance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["mode"] != "all" {
		t.Errorf("mode = %v, want all", body["mode"])
	}
	months := body["months"].([]any)
	m := months[0].(map[string]any)
	if m["month"] != "2025-01" || m["balance"] != float64(250000) {
		t.Errorf("month row = %v", m)
	}
}

func TestBalanceIncomeParam(t *testing.T) {
	reporter := &fakeReporter{}
	s := newTestServer(t, reporter)

	rec := get(t, s, "/api/balance?income=salary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if reporter.lastMode != aggregate.IncomeSalaryOnly {
		t.Errorf("mode passed = %q, want salary", reporter.lastMode)
	}

	rec = get(t, s, "/api/balance?income=gross")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] == nil {
		t.Error("400 response must carry an error message")
	}
}

func TestCostsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	rec := get(t, s, "/api/costs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	months := body["months"].([]any)
	m := months[0].(map[string]any)
	if m["fixed_cost_ratio"] != float64(30.0) {
		t.Errorf("fixed_cost_ratio = %v", m["fixed_cost_ratio"])
	}
}

func TestFoodEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	rec := get(t, s, "/api/food")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)

	cats := body["categories"].([]any)
	if len(cats) != 2 || cats[0] != "外食" {
		t.Errorf("categories = %v", cats)
	}
	months := body["months"].([]any)
	byCat := months[0].(map[string]any)["by_category"].(map[string]any)
	if byCat["食料品"] != float64(20000) {
		t.Errorf("by_category = %v", byCat)
	}
	workdays := body["workdays"].([]any)
	w := workdays[0].(map[string]any)
	if w["weekday_count"] != float64(23) || w["daily_average"] != float64(913) {
		t.Errorf("workday row = %v", w)
	}
}

func TestEmptyResultMapsToOK(t *testing.T) {
	s := newTestServer(t, &fakeReporter{
		err:       &core.EmptyResultError{Reason: "no CSV files"},
		errSource: report.Source{FilesSkipped: 3},
	})

	for _, path := range []string{"/api/overview", "/api/balance", "/api/costs", "/api/food"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
			continue
		}
		body := decodeBody(t, rec)
		if body["empty"] != true || body["reason"] != "no CSV files" {
			t.Errorf("%s body = %v", path, body)
		}
		// An all-skipped load must still report its skip count.
		src, ok := body["source"].(map[string]any)
		if !ok || src["files_skipped"] != float64(3) {
			t.Errorf("%s source = %v, want files_skipped 3", path, body["source"])
		}
	}
}

func TestBrokenSourceMapsTo422(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "schema error", err: &core.SchemaError{File: "a.csv", Column: "日付"}},
		{name: "parse error", err: &core.ParseError{File: "a.csv", Line: 3, Field: "amount", Value: "x", Err: errors.New("bad")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeReporter{err: tt.err})
			rec := get(t, s, "/api/balance")
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] == nil {
				t.Error("422 response must carry error detail")
			}
		})
	}
}

func TestUnexpectedErrorMapsTo500(t *testing.T) {
	s := newTestServer(t, &fakeReporter{err: errors.New("s3 outage")})

	rec := get(t, s, "/api/overview")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	// Internal detail must not leak to the client.
	if msg, _ := body["error"].(string); strings.Contains(msg, "s3") {
		t.Errorf("error leaked internals: %q", msg)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeReporter{})

	req := httptest.NewRequest(http.MethodPost, "/api/overview", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET" {
		t.Errorf("Allow = %q, want GET", rec.Header().Get("Allow"))
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 120; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 121 should be rejected")
	}
	// A different client is unaffected.
	if !rl.allow("10.0.0.2") {
		t.Error("distinct client should be allowed")
	}
}
