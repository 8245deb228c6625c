// Package ledger implements the record store and category registry over a
// whole-table tabular backend. Every mutation is a full read-modify-write
// of the affected table; records get a stable UUID at append time so
// callers never address rows by position.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"butce/internal/core"
	"butce/internal/tabular"
)

type Store struct {
	tab tabular.Store
}

var _ Backend = (*Store)(nil)

func NewStore(tab tabular.Store) *Store {
	return &Store{tab: tab}
}

// Records loads the full ledger table. Schema drift degrades per field,
// never the whole load; only a failing read surfaces as an error.
func (s *Store) Records(ctx context.Context) ([]core.Record, error) {
	rows, err := s.tab.ReadTable(ctx, tabular.RecordsTable)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return decodeRecords(rows), nil
}

// RecordsOrEmpty is the default-substitution policy at the store boundary:
// a missing or unreadable table reads as "no data yet".
func (s *Store) RecordsOrEmpty(ctx context.Context) []core.Record {
	records, err := s.Records(ctx)
	if err != nil {
		slog.DebugContext(ctx, "Record load failed, treating as empty", "error", err)
		return nil
	}
	return records
}

func (s *Store) Append(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	records := s.RecordsOrEmpty(ctx)
	records = append(records, r)
	if err := s.persistRecords(ctx, records); err != nil {
		return core.Record{}, err
	}

	slog.InfoContext(ctx, "Record appended",
		"id", r.ID,
		"category", r.Category,
		"kind", r.Kind,
		"amount_cents", r.Amount.Cents)
	return r, nil
}

func (s *Store) UpdateSettled(ctx context.Context, id string, settled bool) error {
	records := s.RecordsOrEmpty(ctx)
	found := false
	for i := range records {
		if records[i].ID == id {
			records[i].Settled = settled
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("update settled %s: %w", id, core.ErrRecordNotFound)
	}
	if err := s.persistRecords(ctx, records); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record settled flag updated", "id", id, "settled", settled)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	records := s.RecordsOrEmpty(ctx)
	kept := records[:0]
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("delete record %s: %w", id, core.ErrRecordNotFound)
	}
	if err := s.persistRecords(ctx, kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record deleted", "id", id)
	return nil
}

// ReplaceRange implements the bulk table-editor contract: drop the
// identified subset, append the replacements, persist once. Replacement
// records are validated before anything is touched so a bad row leaves
// the table unchanged.
func (s *Store) ReplaceRange(ctx context.Context, removeIDs []string, replacements []core.Record) ([]core.Record, error) {
	for i := range replacements {
		if err := replacements[i].Validate(); err != nil {
			return nil, fmt.Errorf("replacement %d: %w", i, err)
		}
	}

	remove := make(map[string]struct{}, len(removeIDs))
	for _, id := range removeIDs {
		remove[id] = struct{}{}
	}

	records := s.RecordsOrEmpty(ctx)
	kept := records[:0]
	removed := 0
	for _, r := range records {
		if _, ok := remove[r.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}

	appended := make([]core.Record, 0, len(replacements))
	for _, r := range replacements {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		kept = append(kept, r)
		appended = append(appended, r)
	}

	if err := s.persistRecords(ctx, kept); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Record range replaced",
		"removed", removed,
		"appended", len(appended),
		"total", len(kept))
	return appended, nil
}

func (s *Store) persistRecords(ctx context.Context, records []core.Record) error {
	if err := s.tab.WriteTable(ctx, tabular.RecordsTable, encodeRecords(records)); err != nil {
		return fmt.Errorf("persist records: %w", err)
	}
	return nil
}
