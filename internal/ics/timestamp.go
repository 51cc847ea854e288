package ics

import (
	"fmt"
	"time"
)

// Values look like YYYYMMDDTHHMMSS[Z]. Only the date (offsets 0-8) and the
// hour and minute (offsets 9-13) are read; seconds and any zone suffix are
// ignored, and all results are in UTC.
const (
	dateLen     = 8
	dateTimeLen = 13
)

// ParseDate reads the date part of v and returns midnight of that day.
func ParseDate(v string) (time.Time, error) {
	return parseStamp(v, false)
}

// ParseDateTime reads the date, hour and minute of v.
func ParseDateTime(v string) (time.Time, error) {
	return parseStamp(v, true)
}

func parseStamp(v string, withTime bool) (time.Time, error) {
	need, layout := dateLen, "20060102"
	if withTime {
		need, layout = dateTimeLen, "200601021504"
	}
	if len(v) < need {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %d characters", ErrBadTimestamp, v, need)
	}

	digits := v[:dateLen]
	if withTime {
		digits += v[9:dateTimeLen]
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return time.Time{}, fmt.Errorf("%w: %q has non-digit characters", ErrBadTimestamp, v)
		}
	}

	t, err := time.ParseInLocation(layout, digits, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrBadTimestamp, v, err)
	}
	if t.Year() < 1 {
		return time.Time{}, fmt.Errorf("%w: %q: year out of range", ErrBadTimestamp, v)
	}
	return t, nil
}
