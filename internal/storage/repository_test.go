package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"butce/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "butce.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord() core.Record {
	return core.Record{
		OccurredOn: core.NewDate(2024, 3, 20),
		Category:   "Groceries",
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 4250},
		Note:       "weekly shop #market",
	}
}

func TestAppendAndRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Append() did not assign an ID")
	}

	records, err := repo.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Records() len = %d, want 1", len(records))
	}
	got := records[0]
	if got.ID != saved.ID {
		t.Errorf("ID = %q, want %q", got.ID, saved.ID)
	}
	if got.Amount.Cents != 4250 {
		t.Errorf("Amount.Cents = %d, want 4250", got.Amount.Cents)
	}
	if got.OccurredOn.String() != "2024-03-20" {
		t.Errorf("OccurredOn = %q, want 2024-03-20", got.OccurredOn)
	}
	if !got.DueOn.IsZero() {
		t.Errorf("DueOn = %q, want absent", got.DueOn)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)

	rec := testRecord()
	rec.Category = ""
	if _, err := repo.Append(context.Background(), rec); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("Append() error = %v, want ErrEmptyCategory", err)
	}
}

func TestUpdateSettled(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := repo.UpdateSettled(ctx, saved.ID, true); err != nil {
		t.Fatalf("UpdateSettled() error = %v", err)
	}

	got, err := repo.GetRecord(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if !got.Settled {
		t.Error("Settled = false after UpdateSettled(true)")
	}

	if err := repo.UpdateSettled(ctx, "missing", true); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("UpdateSettled(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := repo.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, saved.ID); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("second Delete() error = %v, want ErrRecordNotFound", err)
	}
}

func TestReplaceRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	replacement := testRecord()
	replacement.Amount = core.Money{Cents: 9900}

	appended, err := repo.ReplaceRange(ctx, []string{old.ID, "unknown-id"}, []core.Record{replacement})
	if err != nil {
		t.Fatalf("ReplaceRange() error = %v", err)
	}
	if len(appended) != 1 {
		t.Fatalf("ReplaceRange() appended %d, want 1", len(appended))
	}

	records, err := repo.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Records() len = %d, want 1", len(records))
	}
	if records[0].ID == old.ID {
		t.Error("replaced record still present")
	}
	if records[0].Amount.Cents != 9900 {
		t.Errorf("Amount.Cents = %d, want 9900", records[0].Amount.Cents)
	}
}

func TestReplaceRangeInvalidLeavesTableUnchanged(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	bad := testRecord()
	bad.Amount = core.Money{Cents: -1}

	if _, err := repo.ReplaceRange(ctx, []string{old.ID}, []core.Record{bad}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("ReplaceRange() error = %v, want ErrInvalidAmount", err)
	}

	records, err := repo.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 || records[0].ID != old.ID {
		t.Error("failed ReplaceRange modified the table")
	}
}

func TestSeededCategories(t *testing.T) {
	repo := newTestRepo(t)

	categories, err := repo.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("Categories() len = %d, want 2", len(categories))
	}
	if categories[0].Name != "Salary" || categories[0].Kind != core.Income {
		t.Errorf("first seeded category = %+v", categories[0])
	}
}

func TestUpsertCategoryLastWins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertCategory(ctx, core.Category{Name: "Rent", Kind: core.Expense, RecurrenceDay: 1}); err != nil {
		t.Fatalf("UpsertCategory() error = %v", err)
	}
	if err := repo.UpsertCategory(ctx, core.Category{Name: "Rent", Kind: core.Expense, RecurrenceDay: 5}); err != nil {
		t.Fatalf("UpsertCategory() error = %v", err)
	}

	got, err := repo.LookupCategory(ctx, "Rent")
	if err != nil {
		t.Fatalf("LookupCategory() error = %v", err)
	}
	if got == nil {
		t.Fatal("LookupCategory() = nil, want category")
	}
	if got.RecurrenceDay != 5 {
		t.Errorf("RecurrenceDay = %d, want 5", got.RecurrenceDay)
	}
}

func TestLookupCategoryAbsent(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.LookupCategory(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LookupCategory() error = %v", err)
	}
	if got != nil {
		t.Errorf("LookupCategory() = %+v, want nil", got)
	}
}

func TestDeleteCategoryGuarded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, testRecord()); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := repo.DeleteCategory(ctx, "Groceries"); !errors.Is(err, core.ErrCategoryReferenced) {
		t.Errorf("DeleteCategory(referenced) error = %v, want ErrCategoryReferenced", err)
	}
	if err := repo.DeleteCategory(ctx, "Salary"); err != nil {
		t.Errorf("DeleteCategory(unreferenced) error = %v", err)
	}
	if err := repo.DeleteCategory(ctx, "Salary"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Errorf("DeleteCategory(absent) error = %v, want ErrCategoryNotFound", err)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID {
		t.Fatalf("PendingSync() = %+v, want the appended record", pending)
	}

	if err := repo.MarkSynced(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	pending, err = repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("PendingSync() after MarkSynced len = %d, want 0", len(pending))
	}

	// Settling re-queues the record for replay.
	if err := repo.UpdateSettled(ctx, saved.ID, true); err != nil {
		t.Fatalf("UpdateSettled() error = %v", err)
	}
	pending, err = repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingSync() after settle len = %d, want 1", len(pending))
	}
	if pending[0].Version != 2 {
		t.Errorf("Version = %d, want 2", pending[0].Version)
	}

	if err := repo.MarkSyncError(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSyncError() error = %v", err)
	}
	pending, err = repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("PendingSync() after MarkSyncError len = %d, want 0", len(pending))
	}
}
