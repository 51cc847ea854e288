package model

import "time"

// Event is a single calendar entry, either read directly from a VEVENT
// record or produced by recurrence expansion. Values are never mutated
// after construction; shifting an event yields a new Event.
type Event struct {
	// Start / End carry date and time to the minute, in UTC.
	// End is not required to be after Start.
	Start time.Time
	End   time.Time

	Location string
	Summary  string

	// Date is the calendar day of Start (midnight UTC) and is the key
	// used for per-day queries.
	Date time.Time
}

// NewEvent builds an Event and derives Date from start.
func NewEvent(start, end time.Time, location, summary string) Event {
	return Event{
		Start:    start,
		End:      end,
		Location: location,
		Summary:  summary,
		Date:     DateOf(start),
	}
}

// ShiftDays returns a copy of e moved by n calendar days on Start, End and
// Date.
func (e Event) ShiftDays(n int) Event {
	return Event{
		Start:    e.Start.AddDate(0, 0, n),
		End:      e.End.AddDate(0, 0, n),
		Location: e.Location,
		Summary:  e.Summary,
		Date:     e.Date.AddDate(0, 0, n),
	}
}

// DaysBetween counts the calendar days from the day of a to the day of b.
// a and b must be less than about 290 years apart.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / (24 * time.Hour))
}

// DateOf truncates t to its calendar day at midnight UTC, keeping t's
// wall-clock year, month and day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormattedEvent is the display form of an Event. All fields are
// human-readable strings.
type FormattedEvent struct {
	Start    string // e.g. " 9:00 AM"
	End      string
	Location string
	Summary  string
	Date     string // e.g. "January 01, 2024 (Mon)"
}
