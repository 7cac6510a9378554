package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"billcycle/internal/cli"
	apphttp "billcycle/internal/http"
	"billcycle/internal/log"
	"billcycle/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, nil)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := log.NewContext(context.Background(), logger)
	store := cli.InitBackend(ctx, logger, cfg)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:       ":" + cfg.Port,
		Store:      store.Backend,
		Reports:    services.NewReportService(store.Backend, store.Backend, cfg.ReportLookbackDays),
		Ready:      store.Ready,
		Logger:     logger,
		CycleCount: cfg.CycleCount,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB
	srv.Start()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting billcycle server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
