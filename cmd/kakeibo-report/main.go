// kakeibo-report runs the pipeline once and prints the requested monthly
// report to stdout. Useful for checking numbers without a browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"kakeibo/internal/aggregate"
	"kakeibo/internal/config"
	"kakeibo/internal/loader"
	applog "kakeibo/internal/log"
	"kakeibo/internal/report"
)

func main() {
	var (
		which      = flag.String("report", "balance", "report to print: balance, costs, food")
		salaryOnly = flag.Bool("salary-only", false, "exclude bonus and other income from income")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc, err := buildService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, svc, *which, *salaryOnly); err != nil {
		logger.Error("Report failed", "error", err, "report", *which)
		os.Exit(1)
	}
}

func buildService(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*report.Service, error) {
	var store loader.ObjectStore
	switch cfg.StoreBackend {
	case "fs":
		store = loader.NewDirStore(cfg.DataDir)
	default:
		s3store, err := loader.NewS3Store(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		store = s3store
	}

	ldr := loader.New(store, cfg.Prefix,
		loader.WithConcurrency(cfg.LoaderConcurrency),
		loader.WithMaxRetries(uint64(cfg.LoaderMaxRetries)),
		loader.WithStatementOffset(cfg.StatementOffsetDays))

	return report.NewService(ldr, cfg.ClassifierConfig(), cfg.WorkdayMinorCategory,
		cfg.StoreBackend+":"+cfg.Prefix, cfg.CacheTTL, cfg.CacheEntries, logger), nil
}

func run(ctx context.Context, svc *report.Service, which string, salaryOnly bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	switch which {
	case "balance":
		mode := aggregate.IncomeAll
		if salaryOnly {
			mode = aggregate.IncomeSalaryOnly
		}
		rep, err := svc.Balance(ctx, mode)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "month\tincome\texpense\tbalance\t\n")
		for _, m := range rep.Months {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m.Month, m.Income, m.Expense, m.Balance)
		}
		fmt.Fprintf(w, "total\t%s\t%s\t\t\n", rep.Totals.TotalIncome, rep.Totals.TotalExpense)

	case "costs":
		rep, err := svc.Costs(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "month\tfixed\tvariable\ttotal\tfixed%%\tvariable%%\t\n")
		for _, m := range rep.Months {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%.1f\t\n",
				m.Month, m.FixedCost, m.VariableCost, m.TotalCost,
				m.FixedCostRatio, m.VariableCostRatio)
		}

	case "food":
		rep, err := svc.Food(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "month\ttotal\tweekdays\tdaily avg\t\n")
		for _, wd := range rep.Workdays {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n",
				wd.Month, wd.Total, wd.WeekdayCount, wd.DailyAverage)
		}
		fmt.Fprintf(w, "total food\t%s\t\t\t\n", rep.Totals.TotalFood)

	default:
		return fmt.Errorf("unknown report %q: must be balance, costs or food", which)
	}
	return nil
}
