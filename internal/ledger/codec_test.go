package ledger

import (
	"testing"

	"butce/internal/core"
)

func TestDecodeRecords_SchemaTolerance(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want core.Record
	}{
		{
			name: "full row",
			rows: [][]string{
				{"id", "occurred_on", "category", "kind", "amount", "due_on", "note", "settled"},
				{"r1", "2024-05-01", "Market", "expense", "150.00", "2024-05-15", "#groceries", "false"},
			},
			want: core.Record{
				ID:         "r1",
				OccurredOn: core.NewDate(2024, 5, 1),
				Category:   "Market",
				Kind:       core.Expense,
				Amount:     core.Money{Cents: 15000},
				DueOn:      core.NewDate(2024, 5, 15),
				Note:       "#groceries",
			},
		},
		{
			name: "missing trailing columns synthesize defaults",
			rows: [][]string{
				{"id", "occurred_on", "category", "kind", "amount"},
				{"r2", "2024-05-02", "Rent", "expense", "1200"},
			},
			want: core.Record{
				ID:         "r2",
				OccurredOn: core.NewDate(2024, 5, 2),
				Category:   "Rent",
				Kind:       core.Expense,
				Amount:     core.Money{Cents: 120000},
			},
		},
		{
			name: "sheet-style truthy settled and legacy kind label",
			rows: [][]string{
				{"id", "occurred_on", "category", "kind", "amount", "due_on", "note", "settled"},
				{"r3", "2024-05-03", "Maaş", "Gelir", "5000,00", "", "", "1.0"},
			},
			want: core.Record{
				ID:         "r3",
				OccurredOn: core.NewDate(2024, 5, 3),
				Category:   "Maaş",
				Kind:       core.Income,
				Amount:     core.Money{Cents: 500000},
				Settled:    true,
			},
		},
		{
			name: "malformed amount and dates coerce to defaults",
			rows: [][]string{
				{"id", "occurred_on", "category", "kind", "amount", "due_on", "note", "settled"},
				{"r4", "not-a-date", "Misc", "expense", "abc", "NaT", "", "maybe"},
			},
			want: core.Record{
				ID:       "r4",
				Category: "Misc",
				Kind:     core.Expense,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeRecords(tt.rows)
			if len(got) != 1 {
				t.Fatalf("decoded %d records, want 1", len(got))
			}
			assertRecordEqual(t, got[0], tt.want)
		})
	}
}

func TestDecodeRecords_HeaderlessAndEmptyRows(t *testing.T) {
	rows := [][]string{
		{"r1", "2024-05-01", "Market", "expense", "10.00", "", "", "false"},
		{"", "", "", "", "", "", "", ""},
	}
	got := decodeRecords(rows)
	if len(got) != 1 {
		t.Fatalf("decoded %d records, want 1 (headerless row kept, empty row dropped)", len(got))
	}
	if got[0].ID != "r1" || got[0].Amount.Cents != 1000 {
		t.Errorf("unexpected record: %+v", got[0])
	}
}

func TestRecordsEncodeDecodeRoundTrip(t *testing.T) {
	in := []core.Record{
		{
			ID:         "a",
			OccurredOn: core.NewDate(2024, 5, 1),
			Category:   "Market",
			Kind:       core.Expense,
			Amount:     core.Money{Cents: 15000},
			DueOn:      core.NewDate(2024, 5, 20),
			Note:       "weekly #groceries",
			Settled:    true,
		},
		{
			ID:         "b",
			OccurredOn: core.NewDate(2024, 5, 2),
			Category:   "Salary",
			Kind:       core.Income,
			Amount:     core.Money{Cents: 500000},
		},
	}
	got := decodeRecords(encodeRecords(in))
	if len(got) != len(in) {
		t.Fatalf("round trip length %d, want %d", len(got), len(in))
	}
	for i := range in {
		assertRecordEqual(t, got[i], in[i])
	}
}

func TestDecodeCategories(t *testing.T) {
	rows := [][]string{
		{"name", "kind", "recurrence_day"},
		{"Rent", "expense", "1"},
		{"Salary", "income", "0"},
		{"Netflix", "expense", "15.0"}, // sheets float formatting
		{"Broken", "expense", "45"},    // out of range coerces to none
		{"", "expense", "3"},           // nameless rows are dropped
	}
	got := decodeCategories(rows)
	if len(got) != 4 {
		t.Fatalf("decoded %d categories, want 4", len(got))
	}
	want := []core.Category{
		{Name: "Rent", Kind: core.Expense, RecurrenceDay: 1},
		{Name: "Salary", Kind: core.Income},
		{Name: "Netflix", Kind: core.Expense, RecurrenceDay: 15},
		{Name: "Broken", Kind: core.Expense},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func assertRecordEqual(t *testing.T, got, want core.Record) {
	t.Helper()
	if got.ID != want.ID ||
		got.Category != want.Category ||
		got.Kind != want.Kind ||
		got.Amount != want.Amount ||
		got.Note != want.Note ||
		got.Settled != want.Settled ||
		!got.OccurredOn.Equal(want.OccurredOn.Time) ||
		!got.DueOn.Equal(want.DueOn.Time) {
		t.Errorf("record = %+v, want %+v", got, want)
	}
}
