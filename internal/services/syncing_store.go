// Package services composes the local SQLite repository with the AMQP queue:
// transaction writes land locally first and a sync message tells the worker
// to push them to the remote store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/events"
	"deltafin/internal/storage"
	"deltafin/internal/store"
)

// SyncingStore is a Store whose transaction writes are queued for remote
// sync. Categories, goals and contributions pass straight through to the
// repository.
type SyncingStore struct {
	*storage.SQLiteRepository
	events *events.Client
}

var _ store.Store = (*SyncingStore)(nil)

func NewSyncingStore(repo *storage.SQLiteRepository, eventsClient *events.Client) *SyncingStore {
	return &SyncingStore{
		SQLiteRepository: repo,
		events:           eventsClient,
	}
}

// CreateTransaction saves locally and publishes a sync message. Publish
// failures never fail the request; the row stays pending and the startup
// sweep picks it up.
func (s *SyncingStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.SQLiteRepository.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.publishSync(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
	}

	return created, nil
}

// UpdateTransaction saves locally and re-queues the row for sync.
func (s *SyncingStore) UpdateTransaction(ctx context.Context, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	updated, err := s.SQLiteRepository.UpdateTransaction(ctx, id, upd)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.publishSync(ctx, id, 0); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return updated, nil
}

// DeleteTransaction deletes locally and publishes a delete message.
func (s *SyncingStore) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.SQLiteRepository.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *SyncingStore) publishSync(ctx context.Context, id string, version int64) error {
	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.events.PublishTransactionSync(ctx, id, version)
}

func (s *SyncingStore) publishDelete(ctx context.Context, id string) error {
	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.events.PublishTransactionDelete(ctx, id)
}

// RequeuePending republishes sync messages for rows still marked pending,
// e.g. after the queue was unreachable.
func (s *SyncingStore) RequeuePending(ctx context.Context, limit int) (int, error) {
	pending, err := s.GetPendingSyncTransactions(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load pending transactions: %w", err)
	}

	requeued := 0
	for _, p := range pending {
		if err := s.publishSync(ctx, p.ID, p.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to requeue pending transaction",
				"id", p.ID, "error", err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		slog.InfoContext(ctx, "Requeued pending transactions",
			"count", requeued, "at", time.Now().Format(time.RFC3339))
	}
	return requeued, nil
}

// Close closes both storage and AMQP connections
func (s *SyncingStore) Close() error {
	var errs []error

	if s.SQLiteRepository != nil {
		if err := s.SQLiteRepository.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close syncing store: %v", errs)
	}

	return nil
}
