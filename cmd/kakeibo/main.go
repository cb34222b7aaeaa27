package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kakeibo/internal/cache"
	"kakeibo/internal/config"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/loader"
	applog "kakeibo/internal/log"
	"kakeibo/internal/report"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cacheKey, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize object store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}

	ldr := loader.New(store, cfg.Prefix,
		loader.WithConcurrency(cfg.LoaderConcurrency),
		loader.WithMaxRetries(uint64(cfg.LoaderMaxRetries)),
		loader.WithStatementOffset(cfg.StatementOffsetDays))

	svc := report.NewService(ldr, cfg.ClassifierConfig(), cfg.WorkdayMinorCategory,
		cacheKey, cfg.CacheTTL, cfg.CacheEntries, logger)

	// Periodic eviction of expired raw-load memos.
	cacheMgr := cache.NewManager()
	cacheMgr.Register(svc.RawCache())
	cacheMgr.StartCleanup(10 * time.Minute)
	defer cacheMgr.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting kakeibo server",
		"port", cfg.Port, "backend", cfg.StoreBackend, "prefix", cfg.Prefix)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// newStore selects the object-store backend. The cache key carries the
// backend identity so the raw-load memo never crosses sources.
func newStore(ctx context.Context, cfg *config.Config) (loader.ObjectStore, string, error) {
	switch cfg.StoreBackend {
	case "fs":
		slog.Info("Using local directory store", "dir", cfg.DataDir)
		return loader.NewDirStore(cfg.DataDir), "fs:" + cfg.DataDir + "/" + cfg.Prefix, nil
	default:
		store, err := loader.NewS3Store(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, "", err
		}
		slog.Info("Using S3 store", "bucket", cfg.S3Bucket)
		return store, "s3:" + cfg.S3Bucket + "/" + cfg.Prefix, nil
	}
}
