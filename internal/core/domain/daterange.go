package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// OverlapMode selects how touching ranges are treated when checking conflicts.
type OverlapMode string

const (
	// OverlapHalfOpen treats ranges as [start, end): a booking ending on the
	// day another starts does not conflict.
	OverlapHalfOpen OverlapMode = "half_open"
	// OverlapInclusive treats ranges as [start, end]: touching ranges conflict.
	OverlapInclusive OverlapMode = "inclusive"
)

func ParseOverlapMode(s string) (OverlapMode, error) {
	switch OverlapMode(s) {
	case OverlapHalfOpen, OverlapInclusive:
		return OverlapMode(s), nil
	case "":
		return OverlapHalfOpen, nil
	}
	return "", fmt.Errorf("unknown overlap mode %q", s)
}

// RangeBounds returns the postgres daterange bound flags for the mode.
func (m OverlapMode) RangeBounds() string {
	if m == OverlapInclusive {
		return "[]"
	}
	return "[)"
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Overlaps(other DateRange, mode OverlapMode) bool {
	if mode == OverlapInclusive {
		return !r.Start.After(other.End) && !other.Start.After(r.End)
	}
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a calendar date or an RFC3339 timestamp. A timestamp
// keeps the calendar date of its own offset.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
