package ics

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedCalendar is reported when input ends before END:VCALENDAR.
	ErrUnterminatedCalendar = errors.New("unterminated calendar")
	// ErrUnterminatedEvent is reported when END:VCALENDAR arrives inside a VEVENT.
	ErrUnterminatedEvent = errors.New("unterminated event")
	// ErrUnexpectedEnd is reported for END:VEVENT without a matching BEGIN:VEVENT.
	ErrUnexpectedEnd = errors.New("END:VEVENT without BEGIN:VEVENT")
	// ErrMissingUntil is reported for an RRULE without an UNTIL=...; clause.
	ErrMissingUntil = errors.New("RRULE missing UNTIL=...;")
	// ErrBadTimestamp is reported for a date/time value that cannot be read.
	ErrBadTimestamp = errors.New("malformed timestamp")
)

// ParseError describes malformed calendar content. Line is 1-based and is
// zero when no line applies.
type ParseError struct {
	Line int
	// Field names the property involved (e.g. "DTSTART"), if any.
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "ics"
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
