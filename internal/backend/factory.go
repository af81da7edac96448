package backend

import (
	"context"
	"fmt"

	"deltafin/internal/events"
	"deltafin/internal/log"
	"deltafin/internal/seed"
	"deltafin/internal/services"
	"deltafin/internal/storage"
	"deltafin/internal/store/memory"
	"deltafin/internal/store/postgrest"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case PostgRESTBackend:
		return f.createPostgRESTBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPostgRESTBackend(config Config) (*BackendResult, error) {
	client := postgrest.NewClient(config.SupabaseURL, config.SupabaseAnonKey, f.logger)

	f.logger.Info("Initialized PostgREST backend", "url", config.SupabaseURL)

	return &BackendResult{
		Store:   client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it writes stay local and the startup sweep
	// syncs them later.
	var eventsClient *events.Client
	if config.AMQPURL != "" {
		eventsClient, err = events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPSyncQueue, config.AMQPDeleteQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"sync_queue", config.AMQPSyncQueue,
				"delete_queue", config.AMQPDeleteQueue)
		}
	}

	syncing := services.NewSyncingStore(repo, eventsClient)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", eventsClient != nil)

	return &BackendResult{
		Store:   syncing,
		Cleanup: syncing.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store := memory.NewSeeded(seed.DefaultCategories())

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Store:   store,
		Cleanup: nil,
	}, nil
}
