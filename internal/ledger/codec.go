package ledger

import (
	"strconv"
	"strings"

	"butce/internal/core"
)

// Column layouts of the two backing tables. Order is significant on disk;
// decoding goes through the header row so older files with missing or
// reordered columns still load.
var (
	recordHeader   = []string{"id", "occurred_on", "category", "kind", "amount", "due_on", "note", "settled"}
	categoryHeader = []string{"name", "kind", "recurrence_day"}
)

// columnIndex maps header names to positions. Unknown names are kept out;
// lookups for absent columns return -1 so the field gets its default.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// decodeRecords converts raw table rows into records. The first row is
// treated as a header when it looks like one; every malformed field is
// coerced to its default rather than failing the load, and rows without
// any content are dropped.
func decodeRecords(rows [][]string) []core.Record {
	if len(rows) == 0 {
		return nil
	}
	idx, body := splitHeader(rows, recordHeader)

	out := make([]core.Record, 0, len(body))
	for _, row := range body {
		if emptyRow(row) {
			continue
		}
		r := core.Record{
			ID:       cell(row, idx, "id"),
			Category: cell(row, idx, "category"),
			Note:     cell(row, idx, "note"),
			Settled:  parseBool(cell(row, idx, "settled")),
		}
		r.OccurredOn, _ = core.ParseDate(cell(row, idx, "occurred_on"))
		r.DueOn, _ = core.ParseDate(cell(row, idx, "due_on"))
		if kind, err := core.ParseKind(cell(row, idx, "kind")); err == nil {
			r.Kind = kind
		} else {
			r.Kind = core.Expense
		}
		if cents, err := core.ParseDecimalToCents(cell(row, idx, "amount")); err == nil {
			r.Amount = core.Money{Cents: cents}
		}
		out = append(out, r)
	}
	return out
}

func encodeRecords(records []core.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string(nil), recordHeader...))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			r.OccurredOn.String(),
			r.Category,
			string(r.Kind),
			r.Amount.DecimalString(),
			r.DueOn.String(),
			r.Note,
			strconv.FormatBool(r.Settled),
		})
	}
	return rows
}

func decodeCategories(rows [][]string) []core.Category {
	if len(rows) == 0 {
		return nil
	}
	idx, body := splitHeader(rows, categoryHeader)

	out := make([]core.Category, 0, len(body))
	for _, row := range body {
		if emptyRow(row) {
			continue
		}
		c := core.Category{Name: cell(row, idx, "name")}
		if c.Name == "" {
			continue
		}
		if kind, err := core.ParseKind(cell(row, idx, "kind")); err == nil {
			c.Kind = kind
		} else {
			c.Kind = core.Expense
		}
		c.RecurrenceDay = parseRecurrenceDay(cell(row, idx, "recurrence_day"))
		out = append(out, c)
	}
	return out
}

func encodeCategories(cats []core.Category) [][]string {
	rows := make([][]string, 0, len(cats)+1)
	rows = append(rows, append([]string(nil), categoryHeader...))
	for _, c := range cats {
		rows = append(rows, []string{
			c.Name,
			string(c.Kind),
			strconv.Itoa(c.RecurrenceDay),
		})
	}
	return rows
}

// splitHeader decides whether the first row is a header. When it is not
// (legacy files written without one), positions fall back to the default
// column order.
func splitHeader(rows [][]string, defaultHeader []string) (map[string]int, [][]string) {
	if looksLikeHeader(rows[0], defaultHeader) {
		return columnIndex(rows[0]), rows[1:]
	}
	return columnIndex(defaultHeader), rows
}

func looksLikeHeader(row, header []string) bool {
	for _, v := range row {
		v = strings.ToLower(strings.TrimSpace(v))
		for _, h := range header {
			if v == h {
				return true
			}
		}
	}
	return false
}

func emptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseBool reads the settled flag tolerantly: older sheets stored it as
// "True", "TRUE", "1.0", or "1". Anything unrecognized is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0", "yes":
		return true
	default:
		return false
	}
}

// parseRecurrenceDay coerces the stored day to the valid 0..31 range,
// treating malformed or out-of-range values as "no recurrence". Sheets
// sometimes hand back integers formatted as floats.
func parseRecurrenceDay(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	day, err := strconv.Atoi(s)
	if err != nil || day < 0 || day > 31 {
		return 0
	}
	return day
}
