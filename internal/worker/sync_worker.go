package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"butce/internal/amqp"
	"butce/internal/core"
	"butce/internal/ledger"
	"butce/internal/storage"
)

// SyncWorker replays locally stored records to the remote sheet-backed
// ledger. It reacts to AMQP messages and also scans for pending records
// as a backup when messages are lost.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    ledger.RecordStore
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote ledger.RecordStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	if err := w.syncRecord(ctx, msg.ID); err != nil {
		return fmt.Errorf("sync record %s: %w", msg.ID, err)
	}
	return nil
}

// HandleDeleteMessage removes a record from the remote sheet. A record
// already absent remotely is treated as done, so redeliveries are safe.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.RecordDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	err := w.remote.Delete(ctx, msg.ID)
	if errors.Is(err, core.ErrRecordNotFound) {
		slog.WarnContext(ctx, "Record already absent remotely", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete remote record %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Record deleted from remote", "id", msg.ID)
	return nil
}

// syncRecord reads the record locally and upserts it remotely by ID, so
// replays of the same message stay idempotent.
func (w *SyncWorker) syncRecord(ctx context.Context, id string) error {
	rec, err := w.storage.GetRecord(ctx, id)
	if errors.Is(err, core.ErrRecordNotFound) {
		// Deleted locally before the worker got to it; nothing to replay.
		slog.WarnContext(ctx, "Record vanished before sync", "id", id)
		return w.storage.MarkSynced(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	remote, err := w.remote.Records(ctx)
	if err != nil {
		return fmt.Errorf("read remote records: %w", err)
	}

	exists := false
	for i := range remote {
		if remote[i].ID == rec.ID {
			exists = true
			break
		}
	}

	if exists {
		_, err = w.remote.ReplaceRange(ctx, []string{rec.ID}, []core.Record{rec})
	} else {
		_, err = w.remote.Append(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("write remote record: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, rec.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Record synced to remote", "id", rec.ID)
	return nil
}

// ProcessPendingRecords replays records that never made it through AMQP.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, p := range pending {
		if err := w.syncRecord(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending record",
				"id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker startup,
// recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.syncRecord(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync check completed",
		"synced", successCount,
		"errors", errorCount)
	return nil
}
