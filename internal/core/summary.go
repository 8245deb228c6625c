package core

import "strings"

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// TagAmount is an amount aggregated under a #tag token found in notes.
type TagAmount struct {
	Tag    string
	Amount Money
}

// Summary holds the headline figures for a slice of the ledger.
type Summary struct {
	Income    Money
	Expense   Money
	Net       Money
	Unsettled Money // expense records not yet marked settled

	ByCategory []CategoryAmount // expense totals, first-seen order
	ByTag      []TagAmount      // expense totals per note tag
}

// Period filters records by calendar period. Zero fields match everything:
// {Year: 2024} is a whole year, {Year: 2024, Month: 3} a single month.
type Period struct {
	Year  int
	Month int // 1-12, requires Year
}

// Matches reports whether the date falls inside the period.
func (p Period) Matches(d Date) bool {
	if p.Year != 0 && d.Year() != p.Year {
		return false
	}
	if p.Month != 0 && d.Month() != p.Month {
		return false
	}
	return true
}

// FilterByPeriod returns the records whose OccurredOn falls inside the
// period, preserving order. A zero period returns the input unchanged.
func FilterByPeriod(records []Record, period Period) []Record {
	if period.Year == 0 && period.Month == 0 {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if period.Matches(r.OccurredOn) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize aggregates the records falling inside the period.
func Summarize(records []Record, period Period) Summary {
	var s Summary
	catIdx := map[string]int{}
	tagIdx := map[string]int{}

	for _, r := range records {
		if !period.Matches(r.OccurredOn) {
			continue
		}
		switch r.Kind {
		case Income:
			s.Income.Cents += r.Amount.Cents
		case Expense:
			s.Expense.Cents += r.Amount.Cents
			if !r.Settled {
				s.Unsettled.Cents += r.Amount.Cents
			}
			name := strings.TrimSpace(r.Category)
			if name == "" {
				name = "(uncategorized)"
			}
			i, ok := catIdx[name]
			if !ok {
				i = len(s.ByCategory)
				catIdx[name] = i
				s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name})
			}
			s.ByCategory[i].Amount.Cents += r.Amount.Cents
			for _, tag := range Tags(r.Note) {
				j, ok := tagIdx[tag]
				if !ok {
					j = len(s.ByTag)
					tagIdx[tag] = j
					s.ByTag = append(s.ByTag, TagAmount{Tag: tag})
				}
				s.ByTag[j].Amount.Cents += r.Amount.Cents
			}
		}
	}
	s.Net.Cents = s.Income.Cents - s.Expense.Cents
	return s
}

// Tags extracts the #tag tokens embedded in a note, lowercased and
// deduplicated in order of first appearance.
func Tags(note string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, field := range strings.Fields(note) {
		if !strings.HasPrefix(field, "#") {
			continue
		}
		tag := strings.ToLower(strings.TrimRight(field[1:], ".,;:!?"))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
