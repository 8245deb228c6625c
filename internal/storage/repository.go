package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"butce/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRepository is the row-level local backend. Unlike the tabular
// stores it keeps per-record sync flags so the worker can replay local
// writes to the remote sheet.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const recordColumns = "id, occurred_on, category, kind, amount_cents, due_on, note, settled"

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanRecord(row interface{ Scan(...any) error }) (core.Record, error) {
	var (
		rec        core.Record
		occurredOn string
		kind       string
		dueOn      string
		settled    int
	)
	err := row.Scan(&rec.ID, &occurredOn, &rec.Category, &kind, &rec.Amount.Cents, &dueOn, &rec.Note, &settled)
	if err != nil {
		return core.Record{}, err
	}
	rec.OccurredOn, _ = core.ParseDate(occurredOn)
	rec.DueOn, _ = core.ParseDate(dueOn)
	if k, err := core.ParseKind(kind); err == nil {
		rec.Kind = k
	} else {
		rec.Kind = core.Expense
	}
	rec.Settled = settled != 0
	return rec, nil
}

func (r *SQLiteRepository) Records(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) (core.Record, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, occurred_on, category, kind, amount_cents, due_on, note, settled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OccurredOn.String(), rec.Category, string(rec.Kind),
		rec.Amount.Cents, rec.DueOn.String(), rec.Note, boolToInt(rec.Settled))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"category", rec.Category,
		"kind", rec.Kind,
		"amount_cents", rec.Amount.Cents)

	return rec, nil
}

func (r *SQLiteRepository) UpdateSettled(ctx context.Context, id string, settled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records
		 SET settled = ?, synced = 0, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		boolToInt(settled), id)
	if err != nil {
		return fmt.Errorf("update settled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update settled rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", id, core.ErrRecordNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", id, core.ErrRecordNotFound)
	}
	slog.InfoContext(ctx, "Record deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ReplaceRange(ctx context.Context, removeIDs []string, replacements []core.Record) ([]core.Record, error) {
	for i := range replacements {
		if err := replacements[i].Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	for _, id := range removeIDs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("delete record %s: %w", id, err)
		}
	}

	appended := make([]core.Record, 0, len(replacements))
	for _, rec := range replacements {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, occurred_on, category, kind, amount_cents, due_on, note, settled)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.OccurredOn.String(), rec.Category, string(rec.Kind),
			rec.Amount.Cents, rec.DueOn.String(), rec.Note, boolToInt(rec.Settled))
		if err != nil {
			return nil, fmt.Errorf("insert replacement: %w", err)
		}
		appended = append(appended, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Record range replaced in SQLite",
		"removed", len(removeIDs),
		"appended", len(appended))

	return appended, nil
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, kind, recurrence_day FROM categories ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var (
			c    core.Category
			kind string
		)
		if err := rows.Scan(&c.Name, &kind, &c.RecurrenceDay); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if k, err := core.ParseKind(kind); err == nil {
			c.Kind = k
		} else {
			c.Kind = core.Expense
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, kind, recurrence_day) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, recurrence_day = excluded.recurrence_day`,
		c.Name, string(c.Kind), c.RecurrenceDay)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LookupCategory(ctx context.Context, name string) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT name, kind, recurrence_day FROM categories WHERE name = ?", name)

	var (
		c    core.Category
		kind string
	)
	err := row.Scan(&c.Name, &kind, &c.RecurrenceDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	if k, err := core.ParseKind(kind); err == nil {
		c.Kind = k
	} else {
		c.Kind = core.Expense
	}
	return &c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	var referenced int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE category = ?", name).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if referenced > 0 {
		return fmt.Errorf("category %s: %w", name, core.ErrCategoryReferenced)
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", name, core.ErrCategoryNotFound)
	}
	return nil
}

// PendingSyncRecord carries the minimum needed to enqueue a sync message.
type PendingSyncRecord struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

// PendingSync returns records not yet replayed to the remote sheet.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM records
		 WHERE synced = 0 AND sync_error = 0
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncRecord
	for rows.Next() {
		var p PendingSyncRecord
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending records: %w", err)
	}
	return pending, nil
}

// GetRecord retrieves a single record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("record %s: %w", id, core.ErrRecordNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record by id: %w", err)
	}
	return rec, nil
}

// MarkSynced marks a record as successfully replayed.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE records SET synced = 1, sync_error = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a record so the periodic scan stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE records SET sync_error = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}
