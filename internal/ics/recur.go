package ics

import (
	"fmt"
	"regexp"
	"time"

	"github.com/teambition/rrule-go"

	appLog "agenda/internal/log"
	"agenda/internal/model"
)

var untilPattern = regexp.MustCompile(`UNTIL=([^;]*);`)

// Recurrence is the repeat policy of an event: a step (Freq x Interval)
// and an exclusive limit. Only weekly rules are produced by the parser.
type Recurrence struct {
	Freq     rrule.Frequency
	Interval int

	// Until excludes itself: a repetition starting exactly at Until is
	// not generated.
	Until time.Time
}

// Weekly returns a policy repeating every 7 days before until.
func Weekly(until time.Time) Recurrence {
	return Recurrence{
		Freq:     rrule.WEEKLY,
		Interval: 1,
		Until:    until,
	}
}

// ParseRRule reads the limit from an RRULE value. The text following
// UNTIL= up to the next ';' is taken as the limit and truncated to its
// date. FREQ and the remaining parts are not interpreted; every rule is
// treated as weekly.
func ParseRRule(value string) (Recurrence, error) {
	m := untilPattern.FindStringSubmatch(value)
	if m == nil {
		return Recurrence{}, ErrMissingUntil
	}
	until, err := ParseDate(m[1])
	if err != nil {
		return Recurrence{}, err
	}
	return Weekly(until), nil
}

// Expand returns the repetitions of base, excluding base itself. Each
// repetition is the previous one moved forward by one step in calendar
// days; generation stops at the first start that is not strictly before
// Until.
func (r Recurrence) Expand(base model.Event) ([]model.Event, error) {
	if base.Start.IsZero() {
		// rrule-go replaces a zero Dtstart with the current time.
		return nil, fmt.Errorf("recurrence: unsupported start %s", base.Start.Format(time.RFC3339))
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     r.Freq,
		Interval: r.Interval,
		Dtstart:  base.Start,
		Until:    r.Until,
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence: %w", err)
	}

	out := make([]model.Event, 0)
	prev := base
	next := rule.Iterator()
	for {
		s, ok := next()
		// The rule's Until is inclusive; the limit itself is not.
		if !ok || !s.Before(r.Until) {
			break
		}
		if !s.After(prev.Start) {
			continue
		}
		prev = prev.ShiftDays(model.DaysBetween(prev.Start, s))
		out = append(out, prev)
	}

	appLog.Debug("recurrence expanded",
		"summary", base.Summary,
		"start", base.Start.Format(time.RFC3339),
		"until", r.Until.Format(time.DateOnly),
		"count", len(out),
	)
	return out, nil
}
