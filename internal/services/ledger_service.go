package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"butce/internal/core"
	"butce/internal/ledger"
)

// SyncPublisher enqueues record changes for replay to the remote sheet.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id string, version int64) error
	PublishRecordDelete(ctx context.Context, id string) error
}

// LedgerService orchestrates ledger writes across the active backend and
// the optional sync queue. Local writes always win; a failed publish only
// logs, the worker's periodic scan picks the record up later.
type LedgerService struct {
	backend   ledger.Backend
	publisher SyncPublisher
	policy    core.SuggestPolicy
	now       func() time.Time
}

func NewLedgerService(backend ledger.Backend, publisher SyncPublisher, policy core.SuggestPolicy) *LedgerService {
	return &LedgerService{
		backend:   backend,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}

// AddRecord fills in a due date suggestion for expenses that lack one,
// persists the record, and enqueues it for sync.
func (s *LedgerService) AddRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	if rec.Kind == core.Expense && rec.DueOn.IsZero() {
		if due, ok, err := s.suggestDueDate(ctx, rec.Category); err == nil && ok {
			rec.DueOn = due
		} else if err != nil {
			slog.WarnContext(ctx, "Due date suggestion failed",
				"category", rec.Category, "error", err)
		}
	}

	saved, err := s.backend.Append(ctx, rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	s.publishSync(ctx, saved.ID, 1)
	return saved, nil
}

// SettleRecord flips the settled flag and enqueues the change.
func (s *LedgerService) SettleRecord(ctx context.Context, id string, settled bool) error {
	if err := s.backend.UpdateSettled(ctx, id, settled); err != nil {
		return err
	}
	s.publishSync(ctx, id, 2)
	return nil
}

// RemoveRecord deletes a record from the active backend and enqueues
// the delete for the remote sheet.
func (s *LedgerService) RemoveRecord(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}
	s.publishDelete(ctx, id)
	return nil
}

// ReplaceRecords swaps one set of records for another as a unit.
func (s *LedgerService) ReplaceRecords(ctx context.Context, removeIDs []string, replacements []core.Record) ([]core.Record, error) {
	appended, err := s.backend.ReplaceRange(ctx, removeIDs, replacements)
	if err != nil {
		return nil, err
	}
	for _, id := range removeIDs {
		s.publishDelete(ctx, id)
	}
	for _, rec := range appended {
		s.publishSync(ctx, rec.ID, 1)
	}
	return appended, nil
}

// Records returns every record in the ledger.
func (s *LedgerService) Records(ctx context.Context) ([]core.Record, error) {
	return s.backend.Records(ctx)
}

// Summary aggregates the ledger for the given period.
func (s *LedgerService) Summary(ctx context.Context, period core.Period) (core.Summary, error) {
	records, err := s.backend.Records(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load records for summary: %w", err)
	}
	return core.Summarize(records, period), nil
}

// Categories returns the category registry.
func (s *LedgerService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.backend.Categories(ctx)
}

// UpsertCategory defines or redefines a category. Last write wins.
func (s *LedgerService) UpsertCategory(ctx context.Context, c core.Category) error {
	return s.backend.UpsertCategory(ctx, c)
}

// DeleteCategory removes an unreferenced category.
func (s *LedgerService) DeleteCategory(ctx context.Context, name string) error {
	return s.backend.DeleteCategory(ctx, name)
}

// NextDueDate computes the next occurrence for a category's recurrence
// day, counted from today. The second return is false when the policy
// yields no suggestion.
func (s *LedgerService) NextDueDate(ctx context.Context, categoryName string) (core.Date, bool, error) {
	return s.nextDueDate(ctx, categoryName, true)
}

func (s *LedgerService) suggestDueDate(ctx context.Context, categoryName string) (core.Date, bool, error) {
	return s.nextDueDate(ctx, categoryName, false)
}

func (s *LedgerService) nextDueDate(ctx context.Context, categoryName string, requireKnown bool) (core.Date, bool, error) {
	cat, err := s.backend.LookupCategory(ctx, categoryName)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("lookup category: %w", err)
	}
	if cat == nil {
		if requireKnown {
			return core.Date{}, false, fmt.Errorf("category %s: %w", categoryName, core.ErrCategoryNotFound)
		}
		return core.Date{}, false, nil
	}

	today := core.Today(s.now())
	due, ok := core.NextOccurrence(today, cat.RecurrenceDay, s.policy)
	return due, ok, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id string, version int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}
}
