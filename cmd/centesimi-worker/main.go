package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"centesimi/internal/amqp"
	"centesimi/internal/config"
	"centesimi/internal/log"
	"centesimi/internal/sheets"
	gsheet "centesimi/internal/sheets/google"
	"centesimi/internal/sheets/memory"
	"centesimi/internal/worker"
)

const reconnectDelay = 5 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting centesimi-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var writer sheets.AuditWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets mirror initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		// Still consume and ack so the queue does not grow unbounded.
		writer = memory.New()
		logger.Info("No GOOGLE_SPREADSHEET_ID set, mirroring to memory")
	}

	mirror := worker.NewMirrorWorker(writer)

	// Consume until shutdown; any broker hiccup tears the client down and a
	// fresh one reconnects after a short pause.
	for ctx.Err() == nil {
		if err := consume(ctx, cfg, mirror); err != nil && ctx.Err() == nil {
			logger.Error("Event consumption stopped, reconnecting",
				"error", err, "delay", reconnectDelay)
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}

	logger.Info("Worker stopped gracefully")
}

func consume(ctx context.Context, cfg *config.Config, mirror *worker.MirrorWorker) error {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.ConsumeEvents(ctx, mirror.HandleEvent)
}
