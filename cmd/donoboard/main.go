package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appamqp "donoboard/internal/amqp"
	"donoboard/internal/cli"
	apphttp "donoboard/internal/http"
	"donoboard/internal/leaderboard"
	"donoboard/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("donoboard")
	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.InitStore(logger, cfg)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// AMQP transport is optional: without a broker the boards are projected
	// and logged but not delivered anywhere.
	var transport services.SnapshotTransport
	if cfg.AMQPURL != "" {
		amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without snapshot delivery", "error", err)
		} else {
			defer amqpClient.Close()
			transport = amqpClient
			logger.Info("Initialized AMQP snapshot transport",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	projector := leaderboard.NewProjector(result.Store, nil)
	ledger := services.NewLedgerService(result.Store, projector, nil)
	publisher := services.NewSnapshotPublisher(projector, transport)
	scheduler := services.NewRolloverScheduler(ledger, cfg.RolloverInterval)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, publisher)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting donoboard dispatcher",
			"port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Service error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
