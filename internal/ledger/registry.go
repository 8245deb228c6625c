package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"butce/internal/core"
	"butce/internal/tabular"
)

// Default categories written when the registry table is empty or missing,
// matching what the tracker ships with on first run.
var seedCategories = []core.Category{
	{Name: "Salary", Kind: core.Income},
	{Name: "Groceries", Kind: core.Expense},
}

// Categories loads the registry, seeding and persisting the defaults when
// the table is empty or unreadable.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.tab.ReadTable(ctx, tabular.CategoriesTable)
	if err == nil {
		if cats := decodeCategories(rows); len(cats) > 0 {
			return cats, nil
		}
	} else {
		slog.DebugContext(ctx, "Category load failed, seeding defaults", "error", err)
	}

	cats := append([]core.Category(nil), seedCategories...)
	if err := s.persistCategories(ctx, cats); err != nil {
		// The seed is a convenience; serving the defaults unpersisted
		// still lets the caller proceed.
		slog.WarnContext(ctx, "Failed to persist seed categories", "error", err)
	}
	return cats, nil
}

// CategoriesOrEmpty never fails; Categories already absorbs read errors
// via seeding, so this only hides persist problems during seeding.
func (s *Store) CategoriesOrEmpty(ctx context.Context) []core.Category {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil
	}
	return cats
}

// UpsertCategory overwrites the entry with the same name or appends a new
// one. Last write wins on redefinition.
func (s *Store) UpsertCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(c.Name)

	cats, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range cats {
		if cats[i].Name == c.Name {
			cats[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		cats = append(cats, c)
	}
	if err := s.persistCategories(ctx, cats); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category upserted",
		"name", c.Name,
		"kind", c.Kind,
		"recurrence_day", c.RecurrenceDay,
		"replaced", replaced)
	return nil
}

func (s *Store) LookupCategory(ctx context.Context, name string) (*core.Category, error) {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for i := range cats {
		if cats[i].Name == name {
			c := cats[i]
			return &c, nil
		}
	}
	return nil, nil
}

// DeleteCategory removes a category by name. It refuses while any record
// still references the name, leaving both tables untouched.
func (s *Store) DeleteCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	for _, r := range s.RecordsOrEmpty(ctx) {
		if r.Category == name {
			return fmt.Errorf("delete category %q: %w", name, core.ErrCategoryReferenced)
		}
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	kept := cats[:0]
	found := false
	for _, c := range cats {
		if c.Name == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("delete category %q: %w", name, core.ErrCategoryNotFound)
	}
	if err := s.persistCategories(ctx, kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "name", name)
	return nil
}

func (s *Store) persistCategories(ctx context.Context, cats []core.Category) error {
	if err := s.tab.WriteTable(ctx, tabular.CategoriesTable, encodeCategories(cats)); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}
	return nil
}
