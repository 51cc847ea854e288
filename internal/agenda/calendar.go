package agenda

import (
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"agenda/internal/ics"
	appLog "agenda/internal/log"
	"agenda/internal/model"
)

// FileError reports that a calendar file could not be opened or read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return "agenda: " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Calendar is the processed content of one calendar file: every event,
// recurring repetitions included, ordered by start. It is read-only once
// constructed.
type Calendar struct {
	events []model.Event
}

// Load reads and parses the calendar file at path.
//
// Open and read failures are returned as *FileError; malformed content as
// *ics.ParseError. The file is closed before Load returns.
func Load(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	cal, err := Parse(f)
	if err != nil {
		var perr *ics.ParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &FileError{Path: path, Err: err}
	}

	appLog.Info("calendar loaded", "path", path, "event_count", len(cal.events))
	return cal, nil
}

// Parse builds a Calendar from calendar text.
func Parse(r io.Reader) (*Calendar, error) {
	events, err := ics.Parse(r)
	if err != nil {
		return nil, err
	}
	SortByStart(events)
	return &Calendar{events: events}, nil
}

// SortByStart orders events by Start, ascending. Events with equal starts
// keep their relative order.
func SortByStart(events []model.Event) {
	slices.SortStableFunc(events, func(a, b model.Event) int {
		return a.Start.Compare(b.Start)
	})
}

// Events returns a copy of all events in start order.
func (c *Calendar) Events() []model.Event {
	return slices.Clone(c.events)
}

// On returns the events whose Date is the calendar day of date, in start
// order, or nil if there are none. Only the year, month and day of date
// are used.
func (c *Calendar) On(date time.Time) []model.Event {
	day := model.DateOf(date)

	var out []model.Event
	for _, ev := range c.events {
		if ev.Date.Equal(day) {
			out = append(out, ev)
		}
	}
	return out
}

// EventsFor renders the agenda of the given day. ok is false when the day
// has no events.
func (c *Calendar) EventsFor(date time.Time) (text string, ok bool) {
	events := c.On(date)
	if len(events) == 0 {
		return "", false
	}
	return RenderDay(events), true
}

// Span renders the agenda of every day in [from, to] that has events, in
// day order, separated by a blank line. The result is empty when no day
// in the range has events.
func (c *Calendar) Span(from, to time.Time) string {
	lo, hi := model.DateOf(from), model.DateOf(to)

	var (
		days  []string
		group []model.Event
	)
	flush := func() {
		if len(group) > 0 {
			days = append(days, RenderDay(group))
			group = nil
		}
	}

	for _, ev := range c.events {
		if ev.Date.Before(lo) || ev.Date.After(hi) {
			continue
		}
		if len(group) > 0 && !group[0].Date.Equal(ev.Date) {
			flush()
		}
		group = append(group, ev)
	}
	flush()

	return strings.Join(days, "\n\n")
}
