// Package csvfile stores each table as a CSV file in a local directory.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Store struct {
	dir string
}

// New creates the data directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *Store) ReadTable(_ context.Context, name string) ([][]string, error) {
	f, err := os.Open(s.path(name))
	if os.IsNotExist(err) {
		// A table that was never written reads as empty.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Older files may carry fewer columns than the current schema.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return rows, nil
}

// WriteTable rewrites the file through a temp-and-rename so a crashed
// write never leaves a half-written table behind.
func (s *Store) WriteTable(ctx context.Context, name string, rows [][]string) error {
	tmp := s.path(name) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write table %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close table %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace table %s: %w", name, err)
	}

	slog.DebugContext(ctx, "Table rewritten", "table", name, "rows", len(rows), "path", s.path(name))
	return nil
}
