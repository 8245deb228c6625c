package ledger

import (
	"context"
	"errors"
	"testing"

	"butce/internal/core"
	"butce/internal/tabular/memory"
)

func newTestStore() (*Store, *memory.Store) {
	tab := memory.New()
	return NewStore(tab), tab
}

func marketRecord() core.Record {
	return core.Record{
		OccurredOn: core.NewDate(2024, 5, 1),
		Category:   "Market",
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 15000},
		Note:       "#groceries",
	}
}

func TestAppendThenRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	stored, err := store.Append(ctx, marketRecord())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("Append did not assign an ID")
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	want := marketRecord()
	want.ID = stored.ID
	assertRecordEqual(t, got, want)
	if got.Settled {
		t.Error("new record should default to unsettled")
	}
}

func TestRecordsIdempotentWithoutMutation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	if _, err := store.Append(ctx, marketRecord()); err != nil {
		t.Fatalf("Append: %v", err)
	}

	first, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("loads differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		assertRecordEqual(t, second[i], first[i])
	}
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	bad := marketRecord()
	bad.Amount.Cents = -1
	if _, err := store.Append(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Append error = %v, want ErrInvalidAmount", err)
	}
	if got := store.RecordsOrEmpty(ctx); len(got) != 0 {
		t.Errorf("failed append left %d records behind", len(got))
	}
}

func TestRecordsOrEmptyOnReadFailure(t *testing.T) {
	ctx := context.Background()
	store, tab := newTestStore()
	tab.FailReads = true

	if got := store.RecordsOrEmpty(ctx); len(got) != 0 {
		t.Errorf("RecordsOrEmpty on failing reader = %d records, want 0", len(got))
	}
	if _, err := store.Records(ctx); err == nil {
		t.Error("Records on failing reader should surface the error")
	}
}

func TestUpdateSettled(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	stored, err := store.Append(ctx, marketRecord())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := store.UpdateSettled(ctx, stored.ID, true); err != nil {
		t.Fatalf("UpdateSettled: %v", err)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if !records[0].Settled {
		t.Error("settled flag not persisted")
	}
	// Everything else unchanged.
	want := marketRecord()
	want.ID = stored.ID
	want.Settled = true
	assertRecordEqual(t, records[0], want)

	if err := store.UpdateSettled(ctx, "missing", true); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("UpdateSettled unknown id error = %v, want ErrRecordNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	a, _ := store.Append(ctx, marketRecord())
	b, _ := store.Append(ctx, marketRecord())

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	records, _ := store.Records(ctx)
	if len(records) != 1 || records[0].ID != b.ID {
		t.Errorf("after delete: %+v", records)
	}

	if err := store.Delete(ctx, a.ID); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("double delete error = %v, want ErrRecordNotFound", err)
	}
}

func TestReplaceRange(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	a, _ := store.Append(ctx, marketRecord())
	b, _ := store.Append(ctx, marketRecord())

	replacement := marketRecord()
	replacement.Category = "Rent"
	replacement.Amount = core.Money{Cents: 120000}

	appended, err := store.ReplaceRange(ctx, []string{a.ID, "unknown-id"}, []core.Record{replacement})
	if err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if len(appended) != 1 || appended[0].ID == "" {
		t.Fatalf("appended = %+v", appended)
	}

	records, _ := store.Records(ctx)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != b.ID {
		t.Errorf("surviving record = %+v, want %s first", records[0], b.ID)
	}
	if records[1].Category != "Rent" {
		t.Errorf("replacement not appended: %+v", records[1])
	}
}

func TestReplaceRangeValidatesBeforeTouchingTable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	a, _ := store.Append(ctx, marketRecord())

	bad := marketRecord()
	bad.Category = ""
	if _, err := store.ReplaceRange(ctx, []string{a.ID}, []core.Record{bad}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("ReplaceRange error = %v, want ErrEmptyCategory", err)
	}

	records, _ := store.Records(ctx)
	if len(records) != 1 || records[0].ID != a.ID {
		t.Errorf("failed replace mutated the table: %+v", records)
	}
}
