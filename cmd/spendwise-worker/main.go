package main

import (
	"context"
	"os"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting spendwise-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer be.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRequestQueue, cfg.AMQPResultRoutingKey)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	insightWorker := worker.NewInsightWorker(cli.NewService(be), amqpClient, cfg.InsightWindowDays, cfg.FetchTimeout)

	consumed := make(chan struct{})
	ctx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		// wait for the in-flight delivery to settle
		<-consumed
	})

	go func() {
		defer close(consumed)
		if err := insightWorker.Run(ctx, amqpClient); err != nil {
			logger.Error("Message consumption failed", "error", err)
			stop()
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
