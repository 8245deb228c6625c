package core

// SuggestPolicy selects how the calculator treats categories without a
// recurrence day. Later entry modes of the tracker differ here: free-form
// entry wants no suggestion at all, period-based entry wants the first of
// the month.
type SuggestPolicy int

const (
	// SuggestSkip yields no suggestion when the recurrence day is unset.
	SuggestSkip SuggestPolicy = iota
	// SuggestFirstOfMonth resolves an unset recurrence day to day 1.
	SuggestFirstOfMonth
)

// NextOccurrence returns the next calendar date on or after today whose
// day-of-month is targetDay. When the candidate month has fewer days than
// targetDay the day is clamped to 28; this reproduces the tracker's
// historical behavior and is intentionally not a true end-of-month.
//
// targetDay outside 1..31 means "no recurrence": under SuggestSkip the
// second return is false, under SuggestFirstOfMonth the day resolves to 1.
// The function never fails; malformed input only degrades the suggestion.
func NextOccurrence(today Date, targetDay int, policy SuggestPolicy) (Date, bool) {
	if targetDay < 1 || targetDay > 31 {
		if policy != SuggestFirstOfMonth {
			return Date{}, false
		}
		targetDay = 1
	}
	if today.IsZero() {
		return Date{}, false
	}

	year, month := today.Year(), today.Month()
	candidate := dayInMonth(year, month, targetDay)
	if !candidate.Before(today) {
		return candidate, true
	}

	month++
	if month > 12 {
		month = 1
		year++
	}
	return dayInMonth(year, month, targetDay), true
}

// dayInMonth builds the date at day in year/month, clamping to 28 when the
// month is too short for day.
func dayInMonth(year, month, day int) Date {
	d := NewDate(year, month, day)
	if d.Month() != month {
		// time.Date normalized an overflowing day into the next month.
		return NewDate(year, month, 28)
	}
	return d
}
