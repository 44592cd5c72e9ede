// kopilka-worker consumes ledger mutation messages and writes them to a
// structured audit log. It is the reference consumer for the mutation
// queue; downstream integrations follow the same shape.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kopilka/internal/config"
	"kopilka/internal/events"
	"kopilka/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentEvents})
	log.SetDefault(logger)

	logger.Info("Starting kopilka-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.ConsumeMutations(ctx, func(msg *events.MutationMessage) error {
		logger.Info("Ledger mutation",
			log.FieldEntity, msg.Entity,
			log.FieldOperation, msg.Op,
			"id", msg.ID,
			"timestamp", msg.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
