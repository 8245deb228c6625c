package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind classifies a record as money coming in or going out.
	Kind string

	// Date is a calendar date with no time-of-day component.
	// The zero value means "absent" for optional dates.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one income or expense event in the ledger.
	Record struct {
		ID         string // stable identifier, assigned at append time
		OccurredOn Date
		Category   string
		Kind       Kind
		Amount     Money
		DueOn      Date   // expenses only; zero when absent
		Note       string // free text, may embed #tag tokens
		Settled    bool   // ignored for income records
	}

	// Category is a named bucket records point at by name.
	Category struct {
		Name string
		Kind Kind
		// RecurrenceDay is the day-of-month the expense recurs on.
		// Zero means no recurrence.
		RecurrenceDay int
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidKind          = errors.New("invalid kind")
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptyCategory        = errors.New("empty category")
	ErrEmptyCategoryName    = errors.New("empty category name")
	ErrInvalidRecurrenceDay = errors.New("invalid recurrence day")
	ErrRecordNotFound       = errors.New("record not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryReferenced   = errors.New("category still referenced by records")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates t to its calendar date in UTC.
func Today(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the ISO textual form used by the backing stores.
// Empty input yields the zero (absent) date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the ISO form, or "" for the absent date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Day() int   { return d.Time.Day() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Year() int  { return d.Time.Year() }

// Before reports whether d is strictly before other, by calendar date.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseKind reads the textual kind tolerantly. Legacy stores carry the
// original Turkish labels, which still round-trip to the same values.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "gelir":
		return Income, nil
	case "expense", "gider":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if r.OccurredOn.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	return r.Amount.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if c.RecurrenceDay < 0 || c.RecurrenceDay > 31 {
		return ErrInvalidRecurrenceDay
	}
	return nil
}

// Recurs reports whether the category carries a recurrence day.
func (c Category) Recurs() bool {
	return c.RecurrenceDay >= 1 && c.RecurrenceDay <= 31
}
