package ledger

import (
	"context"

	"butce/internal/core"
)

// Ports implemented by the tabular-backed stores in this package and by
// the row-level SQLite repository.
type (
	RecordStore interface {
		// Records returns every record in the ledger.
		Records(ctx context.Context) ([]core.Record, error)
		// Append validates the record, assigns an ID when empty, and
		// persists it. The stored record is returned.
		Append(ctx context.Context, r core.Record) (core.Record, error)
		// UpdateSettled flips the settled flag of one record.
		UpdateSettled(ctx context.Context, id string, settled bool) error
		// Delete removes one record by ID.
		Delete(ctx context.Context, id string) error
		// ReplaceRange removes the records in removeIDs and appends the
		// replacement set, as one persisted unit. Unknown IDs in
		// removeIDs are ignored; the appended records are returned.
		ReplaceRange(ctx context.Context, removeIDs []string, replacements []core.Record) ([]core.Record, error)
	}

	CategoryStore interface {
		Categories(ctx context.Context) ([]core.Category, error)
		UpsertCategory(ctx context.Context, c core.Category) error
		// LookupCategory returns nil without error when the name is absent.
		LookupCategory(ctx context.Context, name string) (*core.Category, error)
		// DeleteCategory fails with core.ErrCategoryReferenced while any
		// record still references the name.
		DeleteCategory(ctx context.Context, name string) error
	}

	// Backend is what the HTTP layer and the services work against.
	Backend interface {
		RecordStore
		CategoryStore
	}
)
