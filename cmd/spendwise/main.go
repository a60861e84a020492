package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, cli.NewService(be), apphttp.Options{
		Defaults: apphttp.Defaults{
			TrendMonths:  cfg.TrendMonths,
			InsightDays:  cfg.InsightWindowDays,
			DailyDays:    cfg.DailyWindowDays,
			TopLimit:     cfg.TopExpensesLimit,
			FetchTimeout: cfg.FetchTimeout,
		},
		Ready:     be.Ready,
		RateLimit: cfg.RateLimitPerMinute,
		Logger:    logger,
	})

	ctx, _, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting spendwise server", "port", cfg.Port, "backend", be.Name)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
