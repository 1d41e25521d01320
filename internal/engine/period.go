package engine

import (
	"fmt"
	"time"
)

// Granularity is the calendar period of one time bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityMonth:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("invalid granularity %q (must be day or month)", s)
}

// PeriodFor truncates a timestamp to its period boundary and returns the
// bucket key alongside. This is the atomic unit of trend storage.
// Example: PeriodFor(2024-03-17T10:35Z, month) → ("2024-03", 2024-03-01T00:00Z)
func PeriodFor(t time.Time, g Granularity) (string, time.Time) {
	t = t.UTC()
	switch g {
	case GranularityDay:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01-02"), start
	default: // month
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	}
}

// DateRange bounds a snapshot query. Zero Start or End means unbounded on
// that side; bounds are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Overlaps reports whether the half-open interval [start, end) intersects
// the range. Range bounds need not align to period boundaries; a period is
// in scope as soon as any instant of it is.
func (r DateRange) Overlaps(start, end time.Time) bool {
	if !r.Start.IsZero() && !end.After(r.Start) {
		return false
	}
	if !r.End.IsZero() && start.After(r.End) {
		return false
	}
	return true
}

// periodEnd returns the first instant after the period starting at start.
func periodEnd(start time.Time, g Granularity) time.Time {
	if g == GranularityDay {
		return start.AddDate(0, 0, 1)
	}
	return start.AddDate(0, 1, 0)
}
