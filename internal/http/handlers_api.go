package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kakeibo/internal/aggregate"
	"kakeibo/internal/core"
	"kakeibo/internal/report"
)

const handlerTimeout = 15 * time.Second

// handleOverview returns the landing-page tiles.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	ov, err := s.reporter.Overview(ctx)
	if err != nil {
		writeReportError(ctx, w, err, ov.Source)
		return
	}
	writeJSON(w, http.StatusOK, overviewPayload(ov))
}

// handleBalance returns the monthly income/expense trend. The income
// query parameter selects the mode: "all" (default) or "salary".
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	mode := aggregate.IncomeAll
	switch r.URL.Query().Get("income") {
	case "", "all":
	case "salary":
		mode = aggregate.IncomeSalaryOnly
	default:
		writeJSON(w, http.StatusBadRequest, errorPayload("income must be 'all' or 'salary'"))
		return
	}

	rep, err := s.reporter.Balance(ctx, mode)
	if err != nil {
		writeReportError(ctx, w, err, rep.Source)
		return
	}
	writeJSON(w, http.StatusOK, balancePayload(rep))
}

// handleCosts returns the monthly fixed/variable cost structure.
func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	rep, err := s.reporter.Costs(ctx)
	if err != nil {
		writeReportError(ctx, w, err, rep.Source)
		return
	}
	writeJSON(w, http.StatusOK, costsPayload(rep))
}

// handleFood returns the food pivot and workday averages.
func (s *Server) handleFood(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	rep, err := s.reporter.Food(ctx)
	if err != nil {
		writeReportError(ctx, w, err, rep.Source)
		return
	}
	writeJSON(w, http.StatusOK, foodPayload(rep))
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// writeReportError maps the pipeline error taxonomy onto HTTP.
// An empty result is a valid state the UI renders, not a failure; it
// carries the source counts so an all-skipped load is distinguishable
// from a genuinely empty store. Broken source data is the caller's to
// fix, so it surfaces as 422 with detail.
func writeReportError(ctx context.Context, w http.ResponseWriter, err error, src report.Source) {
	var emptyErr *core.EmptyResultError
	if errors.As(err, &emptyErr) {
		writeJSON(w, http.StatusOK, map[string]any{
			"empty":  true,
			"reason": emptyErr.Reason,
			"source": sourceOf(src),
		})
		return
	}

	var schemaErr *core.SchemaError
	var parseErr *core.ParseError
	if errors.As(err, &schemaErr) || errors.As(err, &parseErr) {
		slog.WarnContext(ctx, "Rejected source data", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload(err.Error()))
		return
	}

	slog.ErrorContext(ctx, "Report computation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorPayload("report computation failed"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed encoding JSON response", "error", err)
	}
}

func errorPayload(msg string) map[string]any {
	return map[string]any{"error": msg}
}
