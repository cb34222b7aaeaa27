// Package report orchestrates one dashboard render: fetch raw CSV files,
// classify, aggregate. Every invocation recomputes from scratch; the only
// state is a bounded-TTL memo of the raw fetch, and no result may depend
// on whether that memo was hit.
package report

import (
	"context"
	"time"

	"kakeibo/internal/aggregate"
	"kakeibo/internal/cache"
	"kakeibo/internal/classify"
	"kakeibo/internal/core"
	"kakeibo/internal/loader"
	applog "kakeibo/internal/log"
)

// Service runs the loader -> classifier -> aggregator pipeline.
type Service struct {
	loader       *loader.Loader
	classifier   classify.Config
	workdayMinor string

	rawCache *cache.LRUCache[loader.Result]
	cacheKey string

	logger *applog.Logger
}

// NewService wires the pipeline. cacheKey identifies the load (bucket and
// prefix) so distinct deployments sharing a cache never mix raw data.
func NewService(l *loader.Loader, classifier classify.Config, workdayMinor, cacheKey string, ttl time.Duration, entries int, logger *applog.Logger) *Service {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Service{
		loader:       l,
		classifier:   classifier,
		workdayMinor: workdayMinor,
		rawCache:     cache.NewLRUCache[loader.Result](entries, ttl),
		cacheKey:     cacheKey,
		logger:       logger.WithComponent(applog.ComponentReport),
	}
}

// RawCache exposes the memo for cleanup registration.
func (s *Service) RawCache() cache.Cleaner {
	return s.rawCache
}

// Source is what the UI reports about the underlying load: successfully
// read files only, how many were skipped, and the statement months the
// read files cover (YYYY-MM, chronological).
type Source struct {
	FilesRead    int
	FilesSkipped int
	Months       []string
}

func sourceOf(res loader.Result) Source {
	src := Source{FilesRead: res.FileCount(), FilesSkipped: len(res.Skipped)}
	for _, m := range res.Months() {
		src.Months = append(src.Months, m.String())
	}
	return src
}

// BalanceReport is the monthly income/expense trend plus period totals.
type BalanceReport struct {
	Source Source
	Range  core.DateRange
	Mode   aggregate.IncomeMode
	Totals aggregate.BalanceTotals
	Months []core.MonthlyBalance
}

// CostReport is the monthly fixed/variable structure plus period totals.
type CostReport struct {
	Source Source
	Range  core.DateRange
	Totals aggregate.CostTotals
	Months []core.CostSummary
}

// FoodReport is the food pivot, workday averages and period totals.
type FoodReport struct {
	Source   Source
	Range    core.DateRange
	Totals   aggregate.FoodTotals
	Pivot    core.FoodReport
	Workdays []core.WorkdayFood
}

// Overview carries the tiles for the landing page.
type Overview struct {
	Source  Source
	Range   core.DateRange
	Balance aggregate.BalanceTotals
	Costs   aggregate.CostTotals
	Food    aggregate.FoodTotals
}

func (s *Service) load(ctx context.Context) (loader.Result, error) {
	if res, ok := s.rawCache.Get(s.cacheKey); ok {
		s.logger.DebugContext(ctx, "Raw load served from cache", applog.FieldCacheHit, true)
		return res, nil
	}
	res, err := s.loader.Load(ctx)
	if err != nil {
		// A failed load may still carry skipped-file detail the UI
		// reports alongside the empty state.
		return res, err
	}
	s.rawCache.Set(s.cacheKey, res)
	return res, nil
}

// transactions runs load + classify and reports the source file counts.
// Source is populated even on error, so an all-skipped load still tells
// the UI how many files were dropped.
func (s *Service) transactions(ctx context.Context) ([]core.Transaction, Source, error) {
	res, err := s.load(ctx)
	src := sourceOf(res)
	if err != nil {
		return nil, src, err
	}

	txs, err := classify.Classify(res.Files, s.classifier)
	if err != nil {
		return nil, src, err
	}
	s.logger.DebugContext(ctx, "Classified transactions",
		applog.FieldFileCount, src.FilesRead,
		applog.FieldSkipped, src.FilesSkipped,
		applog.FieldRowCount, len(txs))
	return txs, src, nil
}

// Balance computes the monthly balance trend under the given income mode.
func (s *Service) Balance(ctx context.Context, mode aggregate.IncomeMode) (BalanceReport, error) {
	txs, src, err := s.transactions(ctx)
	if err != nil {
		return BalanceReport{Source: src}, err
	}
	months, err := aggregate.MonthlyBalances(txs, mode)
	if err != nil {
		return BalanceReport{Source: src}, err
	}
	dr, err := aggregate.Range(txs)
	if err != nil {
		return BalanceReport{Source: src}, err
	}
	return BalanceReport{
		Source: src,
		Range:  dr,
		Mode:   mode,
		Totals: aggregate.SummarizeBalance(txs, mode),
		Months: months,
	}, nil
}

// Costs computes the monthly fixed/variable cost structure.
func (s *Service) Costs(ctx context.Context) (CostReport, error) {
	txs, src, err := s.transactions(ctx)
	if err != nil {
		return CostReport{Source: src}, err
	}
	months, err := aggregate.CostSummaries(txs)
	if err != nil {
		return CostReport{Source: src}, err
	}
	dr, err := aggregate.Range(txs)
	if err != nil {
		return CostReport{Source: src}, err
	}
	return CostReport{
		Source: src,
		Range:  dr,
		Totals: aggregate.SummarizeCosts(months),
		Months: months,
	}, nil
}

// Food computes the food pivot and the workday averages for the
// designated minor category.
func (s *Service) Food(ctx context.Context) (FoodReport, error) {
	txs, src, err := s.transactions(ctx)
	if err != nil {
		return FoodReport{Source: src}, err
	}
	pivot, err := aggregate.FoodPivot(txs)
	if err != nil {
		return FoodReport{Source: src}, err
	}
	workdays, err := aggregate.WorkdayAverages(txs, s.workdayMinor)
	if err != nil {
		return FoodReport{Source: src}, err
	}
	dr, err := aggregate.Range(txs)
	if err != nil {
		return FoodReport{Source: src}, err
	}
	return FoodReport{
		Source:   src,
		Range:    dr,
		Totals:   aggregate.SummarizeFood(pivot, workdays),
		Pivot:    pivot,
		Workdays: workdays,
	}, nil
}

// Overview computes the landing-page tiles in one pass over the data.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	txs, src, err := s.transactions(ctx)
	if err != nil {
		return Overview{Source: src}, err
	}
	dr, err := aggregate.Range(txs)
	if err != nil {
		return Overview{Source: src}, err
	}
	costMonths, err := aggregate.CostSummaries(txs)
	if err != nil {
		return Overview{Source: src}, err
	}
	pivot, err := aggregate.FoodPivot(txs)
	if err != nil {
		return Overview{Source: src}, err
	}
	workdays, err := aggregate.WorkdayAverages(txs, s.workdayMinor)
	if err != nil {
		return Overview{Source: src}, err
	}
	return Overview{
		Source:  src,
		Range:   dr,
		Balance: aggregate.SummarizeBalance(txs, aggregate.IncomeAll),
		Costs:   aggregate.SummarizeCosts(costMonths),
		Food:    aggregate.SummarizeFood(pivot, workdays),
	}, nil
}
