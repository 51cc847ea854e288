package ics

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"time"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestParse_SingleEvent(t *testing.T) {
	src := "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:20240101T090000\n" +
		"DTEND:20240101T100000\n" +
		"LOCATION:Room1\n" +
		"SUMMARY:Standup\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if !ev.Start.Equal(at(2024, 1, 1, 9, 0)) {
		t.Errorf("Start = %v", ev.Start)
	}
	if !ev.End.Equal(at(2024, 1, 1, 10, 0)) {
		t.Errorf("End = %v", ev.End)
	}
	if !ev.Date.Equal(at(2024, 1, 1, 0, 0)) {
		t.Errorf("Date = %v", ev.Date)
	}
	if ev.Location != "Room1" || ev.Summary != "Standup" {
		t.Errorf("unexpected text fields: %+v", ev)
	}
}

func TestParse_CRLFAndNoiseLines(t *testing.T) {
	src := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"SUMMARY:outside any event\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:abc\r\n" +
		"DTSTART:20240301T143000Z\r\n" +
		"DTEND:20240301T153000Z\r\n" +
		"SUMMARY:Review: Q1\r\n" +
		"summary:lower case is ignored\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Summary != "Review: Q1" {
		t.Errorf("Summary = %q, want %q", events[0].Summary, "Review: Q1")
	}
	if events[0].Location != "" {
		t.Errorf("Location = %q, want empty", events[0].Location)
	}
	if !events[0].Start.Equal(at(2024, 3, 1, 14, 30)) {
		t.Errorf("Start = %v", events[0].Start)
	}
}

func TestParse_LastFieldWins(t *testing.T) {
	src := "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:20240101T090000\n" +
		"DTEND:20240101T100000\n" +
		"SUMMARY:first\n" +
		"SUMMARY:second\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if events[0].Summary != "second" {
		t.Errorf("Summary = %q, want %q", events[0].Summary, "second")
	}
}

func TestParse_WithoutCalendarBegin(t *testing.T) {
	src := "BEGIN:VEVENT\n" +
		"DTSTART:20240101T090000\n" +
		"DTEND:20240101T100000\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestParse_StopsAtCalendarEnd(t *testing.T) {
	src := "BEGIN:VCALENDAR\n" +
		"END:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:garbage\n" +
		"END:VEVENT\n"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestParse_WeeklyRecurrence(t *testing.T) {
	src := "BEGIN:VCALENDAR\n" +
		"BEGIN:VEVENT\n" +
		"DTSTART:20240101T090000\n" +
		"DTEND:20240101T100000\n" +
		"RRULE:FREQ=WEEKLY;UNTIL=20240122T000000;BYDAY=MO\n" +
		"SUMMARY:Standup\n" +
		"END:VEVENT\n" +
		"END:VCALENDAR\n"

	events, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected original + 2 repetitions, got %d", len(events))
	}
	want := []time.Time{at(2024, 1, 1, 9, 0), at(2024, 1, 8, 9, 0), at(2024, 1, 15, 9, 0)}
	for i, w := range want {
		if !events[i].Start.Equal(w) {
			t.Errorf("events[%d].Start = %v, want %v", i, events[i].Start, w)
		}
		if events[i].Summary != "Standup" {
			t.Errorf("events[%d].Summary = %q", i, events[i].Summary)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		line    int
	}{
		{
			name:    "missing calendar end",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART:20240101T090000\nDTEND:20240101T100000\nEND:VEVENT\n",
			wantErr: ErrUnterminatedCalendar,
			line:    5,
		},
		{
			name:    "rrule without until",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART:20240101T090000\nDTEND:20240101T100000\nRRULE:FREQ=WEEKLY\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrMissingUntil,
			line:    5,
		},
		{
			name:    "until without terminating semicolon",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART:20240101T090000\nDTEND:20240101T100000\nRRULE:FREQ=WEEKLY;UNTIL=20240122T000000\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrMissingUntil,
			line:    5,
		},
		{
			name:    "missing dtstart",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTEND:20240101T100000\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrBadTimestamp,
			line:    4,
		},
		{
			name:    "short dtend",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART:20240101T090000\nDTEND:20240101\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrBadTimestamp,
			line:    4,
		},
		{
			name:    "year zero with far recurrence",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nDTSTART:00000101T090000\nDTEND:00000101T100000\nRRULE:FREQ=WEEKLY;UNTIL=99991231T000000;\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrBadTimestamp,
			line:    3,
		},
		{
			name:    "over-long line",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:" + strings.Repeat("x", maxLineSize) + "\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: bufio.ErrTooLong,
			line:    3,
		},
		{
			name:    "event end without begin",
			src:     "BEGIN:VCALENDAR\nEND:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrUnexpectedEnd,
			line:    2,
		},
		{
			name:    "calendar end inside event",
			src:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nEND:VCALENDAR\n",
			wantErr: ErrUnterminatedEvent,
			line:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("Line = %d, want %d", perr.Line, tt.line)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_ReaderErrorIsNotParseError(t *testing.T) {
	_, err := Parse(failingReader{})
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Fatalf("expected raw reader error, got %v", err)
	}
}
