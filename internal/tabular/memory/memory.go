// Package memory is the in-process tabular store used by tests and as the
// zero-configuration default backend.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string

	// FailReads makes every ReadTable fail; tests use it to exercise the
	// load-or-empty fallback.
	FailReads bool
}

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

// Seed replaces a table without going through the Writer interface.
func (s *Store) Seed(name string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = cloneRows(rows)
}

func (s *Store) ReadTable(_ context.Context, name string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return nil, fmt.Errorf("read table %s: backing store unavailable", name)
	}
	// A table that was never written reads as empty, matching the file
	// adapter.
	return cloneRows(s.tables[name]), nil
}

func (s *Store) WriteTable(_ context.Context, name string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = cloneRows(rows)
	return nil
}

func cloneRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
