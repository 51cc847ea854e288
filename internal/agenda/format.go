package agenda

import (
	"strings"
	"time"
	"unicode/utf8"

	"agenda/internal/model"
)

const (
	clockLayout   = "03:04 PM"
	headingLayout = "January 02, 2006 (Mon)"
)

// FormatTime renders t as "H:MM AM/PM". Single-digit hours are padded
// with a space instead of a zero so columns of times line up.
func FormatTime(t time.Time) string {
	s := t.Format(clockLayout)
	if s[0] == '0' {
		return " " + s[1:]
	}
	return s
}

// FormatDate renders the day heading, e.g. "January 01, 2024 (Mon)".
func FormatDate(t time.Time) string {
	return t.Format(headingLayout)
}

// Format converts ev into its display form.
func Format(ev model.Event) model.FormattedEvent {
	return model.FormattedEvent{
		Start:    FormatTime(ev.Start),
		End:      FormatTime(ev.End),
		Location: ev.Location,
		Summary:  ev.Summary,
		Date:     FormatDate(ev.Start),
	}
}

// InfoLine renders "<start> to <end>: <summary> {{<location>}}".
func InfoLine(f model.FormattedEvent) string {
	return f.Start + " to " + f.End + ": " + f.Summary + " {{" + f.Location + "}}"
}

// Heading renders the date line and its dash underline.
func Heading(f model.FormattedEvent) string {
	return f.Date + "\n" + strings.Repeat("-", utf8.RuneCountInString(f.Date))
}

// RenderDay renders events that share one day: the heading of the first
// event, then each info line, with a blank line between info lines.
func RenderDay(events []model.Event) string {
	if len(events) == 0 {
		return ""
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, InfoLine(Format(ev)))
	}
	return Heading(Format(events[0])) + "\n" + strings.Join(lines, "\n\n")
}
