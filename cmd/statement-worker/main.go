package main

import (
	"context"
	"errors"
	"os"
	"time"

	"billcycle/internal/cache"
	"billcycle/internal/cli"
	"billcycle/internal/log"
	"billcycle/internal/services"
	"billcycle/internal/worker"
)

// Cycles are at most 31 days long, so a sent key outlives the cycle that follows it.
const sentTTL = 40 * 24 * time.Hour

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, nil)
	logger.Info("Starting statement-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := log.NewContext(context.Background(), logger)
	store := cli.InitBackend(ctx, logger, cfg)

	publisher, closePublisher := cli.InitPublisher(logger, cfg)
	if publisher == nil {
		logger.Warn("No publisher available, statement checks will be skipped")
	}

	sent := cache.NewLRUCache[time.Time](1000, sentTTL)
	caches := cache.NewManager(logger)
	caches.Register(sent)
	caches.StartCleanup(time.Hour)

	reports := services.NewReportService(store.Backend, store.Backend, cfg.ReportLookbackDays)
	notifier := services.NewStatementNotifier(reports, publisher, sent)
	w := worker.NewStatementWorker(notifier, cfg.StatementCheckInterval, logger)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		caches.Stop()
		if err := closePublisher(); err != nil {
			logger.Error("Publisher close error", log.FieldError, err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})
	runCtx = log.NewContext(runCtx, logger)

	if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Statement worker failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Statement-worker shutdown complete")
}
