// Package tabular defines the whole-table persistence contract shared by
// the CSV, Google Sheets, and in-memory adapters. Every mutation rewrites
// a full table; there is no row-level primitive at this boundary.
package tabular

import "context"

// Canonical table names used by the ledger and the registry.
const (
	RecordsTable    = "records"
	CategoriesTable = "categories"
)

type (
	// Reader returns the full contents of a named table, header row
	// included. A missing or unreadable table is an error; callers that
	// want the empty-table fallback apply it themselves.
	Reader interface {
		ReadTable(ctx context.Context, name string) ([][]string, error)
	}

	// Writer replaces the full contents of a named table.
	Writer interface {
		WriteTable(ctx context.Context, name string, rows [][]string) error
	}

	Store interface {
		Reader
		Writer
	}
)
