package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	appamqp "donoboard/internal/amqp"
	"donoboard/internal/cli"
	"donoboard/internal/worker"
)

// board-worker is the rendering collaborator: it consumes published
// leaderboard snapshots and renders them for display.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("board-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the board worker")
		os.Exit(1)
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := worker.NewRenderWorker(nil)

	logger.Info("Starting board worker",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = amqpClient.ConsumeSnapshots(ctx, func(msg *appamqp.SnapshotMessage) error {
		return renderer.HandleSnapshot(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Snapshot consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Board worker stopped gracefully")
}
