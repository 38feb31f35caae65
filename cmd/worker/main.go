package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cookingbylea/recipes/backend/config"
	"github.com/cookingbylea/recipes/backend/internal/logging"
	"github.com/cookingbylea/recipes/backend/internal/media"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for the cleanup worker")
	}

	logger, shutdownLogs, err := logging.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownLogs(flushCtx)
	}()

	store, err := media.Open(ctx, cfg, logging.Component(logger, "media"))
	if err != nil {
		return err
	}

	conn, ch, err := media.DialQueue(cfg.RabbitMQURL, cfg.MediaCleanupQueue)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer ch.Close()

	workers := max(cfg.MediaCleanupWorkers, 1)
	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	for i := 0; i < workers; i++ {
		worker := media.NewCleanupWorker(ch, cfg.MediaCleanupQueue, store,
			logging.Component(logger, "cleanup").With(slog.Int("worker", i)))
		if err := worker.Start(ctx); err != nil {
			return err
		}
	}

	logger.Info("Cleanup workers running", slog.Int("workers", workers), slog.String("queue", cfg.MediaCleanupQueue))

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		logger.Info("Shutting down cleanup workers")
		return nil
	case err := <-closed:
		if err == nil {
			return nil
		}
		return fmt.Errorf("rabbitmq connection closed: %w", err)
	}
}
