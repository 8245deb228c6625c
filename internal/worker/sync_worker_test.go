package worker

import (
	"context"
	"path/filepath"
	"testing"

	"butce/internal/amqp"
	"butce/internal/core"
	"butce/internal/ledger"
	"butce/internal/storage"
	"butce/internal/tabular/memory"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *ledger.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "butce.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	remote := ledger.NewStore(memory.New())
	return NewSyncWorker(repo, remote, 10), repo, remote
}

func appendLocal(t *testing.T, repo *storage.SQLiteRepository) core.Record {
	t.Helper()
	saved, err := repo.Append(context.Background(), core.Record{
		OccurredOn: core.NewDate(2024, 3, 20),
		Category:   "Groceries",
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 4250},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return saved
}

func TestHandleSyncMessageAppendsRemote(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	saved := appendLocal(t, repo)

	msg := amqp.NewRecordSyncMessage(saved.ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != saved.ID {
		t.Fatalf("remote records = %+v, want the synced record", records)
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("PendingSync() len = %d after sync, want 0", len(pending))
	}
}

func TestHandleDeleteMessageRemovesRemote(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	saved := appendLocal(t, repo)
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(saved.ID, 1)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	msg := amqp.NewRecordDeleteMessage(saved.ID)
	if err := w.HandleDeleteMessage(ctx, msg); err != nil {
		t.Fatalf("HandleDeleteMessage() error = %v", err)
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("remote records = %d after delete, want 0", len(records))
	}

	// Redelivery of the same delete is a no-op.
	if err := w.HandleDeleteMessage(ctx, msg); err != nil {
		t.Errorf("HandleDeleteMessage() redelivery error = %v", err)
	}
}

func TestHandleSyncMessageIsIdempotent(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	saved := appendLocal(t, repo)
	msg := amqp.NewRecordSyncMessage(saved.ID, 1)

	for i := 0; i < 3; i++ {
		if err := w.HandleSyncMessage(ctx, msg); err != nil {
			t.Fatalf("HandleSyncMessage() #%d error = %v", i, err)
		}
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("remote records len = %d after replays, want 1", len(records))
	}
}

func TestHandleSyncMessageUpdatesExisting(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	saved := appendLocal(t, repo)
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(saved.ID, 1)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	// Local settle, then replay.
	if err := repo.UpdateSettled(ctx, saved.ID, true); err != nil {
		t.Fatalf("UpdateSettled() error = %v", err)
	}
	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage(saved.ID, 2)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("remote records len = %d, want 1", len(records))
	}
	if !records[0].Settled {
		t.Error("remote record not settled after replay")
	}
}

func TestHandleSyncMessageVanishedRecord(t *testing.T) {
	w, _, remote := newTestWorker(t)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, amqp.NewRecordSyncMessage("gone", 1)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("remote records len = %d, want 0", len(records))
	}
}

func TestStartupSyncCheck(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	first := appendLocal(t, repo)
	second := appendLocal(t, repo)

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	records, err := remote.Records(ctx)
	if err != nil {
		t.Fatalf("remote Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("remote records len = %d, want 2", len(records))
	}
	ids := map[string]bool{records[0].ID: true, records[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Error("remote missing one of the local records")
	}
}

func TestProcessPendingRecordsEmpty(t *testing.T) {
	w, _, _ := newTestWorker(t)

	if err := w.ProcessPendingRecords(context.Background()); err != nil {
		t.Errorf("ProcessPendingRecords() on empty store error = %v", err)
	}
}
