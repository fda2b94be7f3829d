// Package progress contains the period aggregation engine: calendar-accurate
// reporting windows, hour targets, and human-readable progress rendering.
// This is a pure domain layer with zero external dependencies.
package progress

import (
	"errors"
	"time"
)

// Domain errors for the progress package.
var (
	ErrInvalidPeriod = errors.New("progress: invalid period")
	ErrNegativeTarget = errors.New("progress: target hours cannot be negative")
)

// Period identifies a reporting window kind.
type Period string

const (
	// PeriodDay is local midnight to the next local midnight.
	PeriodDay Period = "day"

	// PeriodWeek starts on the configured week start day.
	PeriodWeek Period = "week"

	// PeriodMonth is the first of the month to the first of the next month.
	PeriodMonth Period = "month"
)

// IsValid checks if the period is one of the known values.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// AllPeriods lists the reporting periods in ascending window size.
func AllPeriods() []Period {
	return []Period{PeriodDay, PeriodWeek, PeriodMonth}
}

// Calendar resolves period windows against a local calendar. The week start
// day is explicit configuration; a server process has no platform locale to
// consult.
type Calendar struct {
	location  *time.Location
	weekStart time.Weekday
}

// NewCalendar creates a calendar for the given location and week start day.
// A nil location falls back to UTC.
func NewCalendar(location *time.Location, weekStart time.Weekday) Calendar {
	if location == nil {
		location = time.UTC
	}
	return Calendar{location: location, weekStart: weekStart}
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	return c.location
}

// Bounds returns the half-open window [start, end) of the period containing at.
func (c Calendar) Bounds(period Period, at time.Time) (time.Time, time.Time, error) {
	local := at.In(c.location)
	switch period {
	case PeriodDay:
		start := c.startOfDay(local)
		return start, start.AddDate(0, 0, 1), nil
	case PeriodWeek:
		start := c.startOfWeek(local)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodMonth:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, c.location)
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
}

// startOfDay returns local midnight of the day containing t.
func (c Calendar) startOfDay(t time.Time) time.Time {
	local := t.In(c.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location)
}

// startOfWeek returns midnight of the most recent configured week start day.
func (c Calendar) startOfWeek(t time.Time) time.Time {
	local := t.In(c.location)
	daysBack := (int(local.Weekday()) - int(c.weekStart) + 7) % 7
	return c.startOfDay(local.AddDate(0, 0, -daysBack))
}
