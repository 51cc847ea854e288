package ics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "agenda/internal/log"
	"agenda/internal/model"
)

// Longest line accepted by the scanner.
const maxLineSize = 1 << 20

var (
	calendarBegin = "BEGIN:" + string(ical.ComponentVCalendar)
	calendarEnd   = "END:" + string(ical.ComponentVCalendar)
	recordBegin   = "BEGIN:" + string(ical.ComponentVEvent)
	recordEnd     = "END:" + string(ical.ComponentVEvent)

	fieldDtStart  = string(ical.ComponentPropertyDtStart)
	fieldDtEnd    = string(ical.ComponentPropertyDtEnd)
	fieldLocation = string(ical.ComponentPropertyLocation)
	fieldSummary  = string(ical.ComponentPropertySummary)
	fieldRRule    = string(ical.ComponentPropertyRrule)
)

// Parse reads a calendar from r and returns its events in file order, with
// recurring events followed by their repetitions.
//
//   - Marker lines must start at column 0 and are case-sensitive.
//   - Lines that are not a marker or a known field are ignored, as are
//     field lines outside BEGIN:VEVENT / END:VEVENT.
//   - Scanning stops at END:VCALENDAR; input that ends without it fails
//     with ErrUnterminatedCalendar.
//
// Errors from r are returned as is; content problems, including lines
// over maxLineSize, are *ParseError.
func Parse(r io.Reader) ([]model.Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	events := make([]model.Event, 0)
	var rec *record
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := sc.Text()

		switch {
		case strings.HasPrefix(line, calendarBegin):
			events = make([]model.Event, 0)

		case strings.HasPrefix(line, recordBegin):
			rec = &record{}

		case strings.HasPrefix(line, recordEnd):
			if rec == nil {
				return nil, &ParseError{Line: lineNo, Err: ErrUnexpectedEnd}
			}
			evs, err := rec.build(lineNo)
			if err != nil {
				return nil, err
			}
			events = append(events, evs...)
			rec = nil

		case strings.HasPrefix(line, calendarEnd):
			if rec != nil {
				return nil, &ParseError{Line: lineNo, Err: ErrUnterminatedEvent}
			}
			appLog.Debug("ics scan completed", "lines", lineNo, "event_count", len(events))
			return events, nil

		default:
			if rec == nil {
				continue
			}
			if err := rec.set(line, lineNo); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Line: lineNo + 1, Err: fmt.Errorf("line longer than %d bytes: %w", maxLineSize, err)}
		}
		return nil, err
	}

	return nil, &ParseError{Line: lineNo, Err: ErrUnterminatedCalendar}
}

// record accumulates the fields of one VEVENT. Repeated fields overwrite
// earlier ones.
type record struct {
	start, end        string
	startAt, endAt    int // line numbers, for error reporting
	location, summary string
	recur             *Recurrence
}

func (r *record) set(line string, lineNo int) error {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}

	switch name {
	case fieldDtStart:
		r.start, r.startAt = value, lineNo
	case fieldDtEnd:
		r.end, r.endAt = value, lineNo
	case fieldLocation:
		r.location = value
	case fieldSummary:
		r.summary = value
	case fieldRRule:
		rec, err := ParseRRule(value)
		if err != nil {
			return &ParseError{Line: lineNo, Field: fieldRRule, Err: err}
		}
		r.recur = &rec
	}
	return nil
}

// build turns the record into its event plus any repetitions. endLine is
// the END:VEVENT line, used when a required field never appeared.
func (r *record) build(endLine int) ([]model.Event, error) {
	start, err := ParseDateTime(r.start)
	if err != nil {
		return nil, &ParseError{Line: lineOr(r.startAt, endLine), Field: fieldDtStart, Err: err}
	}
	end, err := ParseDateTime(r.end)
	if err != nil {
		return nil, &ParseError{Line: lineOr(r.endAt, endLine), Field: fieldDtEnd, Err: err}
	}

	ev := model.NewEvent(start, end, r.location, r.summary)
	out := []model.Event{ev}

	if r.recur != nil {
		reps, err := r.recur.Expand(ev)
		if err != nil {
			return nil, &ParseError{Line: endLine, Field: fieldRRule, Err: err}
		}
		out = append(out, reps...)
	}
	return out, nil
}

func lineOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
