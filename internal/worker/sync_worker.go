// Package worker pushes locally written transactions to the remote store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"deltafin/internal/core"
	"deltafin/internal/events"
	"deltafin/internal/storage"
	"deltafin/internal/store"
)

// SyncWorker pushes transactions from the local SQLite database to the
// remote store.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    store.TransactionStore
	batchSize int
}

func NewSyncWorker(repo *storage.SQLiteRepository, remote store.TransactionStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   repo,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *events.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		if store.IsNotFound(err) {
			// Deleted locally before the worker got here; nothing to push.
			slog.WarnContext(ctx, "Transaction gone before sync, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.pushTransaction(ctx, t.ID, t)
}

// HandleDeleteMessage processes a single transaction delete message from AMQP
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *events.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.remote.DeleteTransaction(ctx, msg.ID); err != nil {
		if store.IsNotFound(err) {
			// Never reached the remote store; nothing to delete.
			slog.WarnContext(ctx, "Transaction not found on remote, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("delete transaction from remote: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted transaction from remote", "id", msg.ID)
	return nil
}

// ProcessPending pushes transactions that haven't been synced yet. This is a
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.pushTransaction(ctx, p.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck pushes any pending transactions at worker startup. This
// recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.pushTransaction(ctx, p.ID, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// pushTransaction upserts one transaction on the remote store and records
// the outcome on the local row.
func (w *SyncWorker) pushTransaction(ctx context.Context, id string, t core.Transaction) error {
	_, err := w.remote.CreateTransaction(ctx, t)
	if err != nil && store.KindOf(err) == store.KindValidation {
		// Row already exists remotely (re-sync after an edit); patch it.
		upd := store.TransactionUpdate{
			Amount:       &t.Amount,
			Description:  &t.Description,
			CategoryName: &t.CategoryName,
			Date:         &t.Date,
			Tags:         &t.Tags,
			Type:         &t.Type,
		}
		_, err = w.remote.UpdateTransaction(ctx, id, upd)
	}
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("push to remote: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", id,
		"description", t.Description,
		"amount_cents", t.Amount.Cents)

	return nil
}
