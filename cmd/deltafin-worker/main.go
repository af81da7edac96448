package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deltafin/internal/config"
	"deltafin/internal/events"
	"deltafin/internal/log"
	"deltafin/internal/storage"
	"deltafin/internal/store/postgrest"
	"deltafin/internal/worker"
)

func main() {
	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting deltafin-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// The worker pushes local rows to the remote store, so it always needs
	// both ends regardless of the server's backend selection.
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		logger.Error("SUPABASE_URL and SUPABASE_ANON_KEY are required for the sync worker")
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	remote := postgrest.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)

	eventsClient, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPDeleteQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer eventsClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(sqliteRepo, remote, cfg.SyncBatchSize)

	// On startup, push any rows that were written while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
		// Don't exit - continue with normal operation
	}

	go func() {
		if err := eventsClient.ConsumeTransactionSync(ctx, func(msg *events.TransactionSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		}); err != nil && err != context.Canceled {
			logger.Error("Sync message consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	go func() {
		if err := eventsClient.ConsumeTransactionDelete(ctx, func(msg *events.TransactionDeleteMessage) error {
			return syncWorker.HandleDeleteMessage(ctx, msg)
		}); err != nil && err != context.Canceled {
			logger.Error("Delete message consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	// Periodic sweep for rows whose messages were lost.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", log.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
