// Package timeutil provides timezone-aware time helpers for the Office
// Presence Hub. All reporting windows and notification times are rendered in
// the configured office timezone, not the server's.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
	// FormatShortDate is a short format (Jan 2).
	FormatShortDate = "Jan 2"
)

// Clock resolves "now" and formats times in one configured location.
// Using a struct instead of package-level state keeps tests deterministic
// and lets the location come from configuration.
type Clock struct {
	location *time.Location
	now      func() time.Time
}

// NewClock creates a clock for the given location. A nil location falls
// back to UTC.
func NewClock(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return Clock{location: location, now: time.Now}
}

// NewFixedClock creates a clock that always reports the given instant.
// Intended for tests.
func NewFixedClock(location *time.Location, at time.Time) Clock {
	clock := NewClock(location)
	clock.now = func() time.Time { return at }
	return clock
}

// Now returns the current time in the clock's location.
func (c Clock) Now() time.Time {
	return c.now().In(c.location)
}

// Location returns the clock's timezone.
func (c Clock) Location() *time.Location {
	return c.location
}

// In converts a time to the clock's location.
func (c Clock) In(t time.Time) time.Time {
	return t.In(c.location)
}

// IsSameDay checks if two times fall on the same calendar day in the
// clock's location.
func (c Clock) IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := c.In(t1), c.In(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// IsToday checks if the given time is today in the clock's location.
func (c Clock) IsToday(t time.Time) bool {
	return c.IsSameDay(t, c.Now())
}

// Format formats a time in the clock's location with the given layout.
func (c Clock) Format(t time.Time, layout string) string {
	return c.In(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD).
func (c Clock) FormatDateStr(t time.Time) string {
	return c.Format(t, FormatDate)
}

// FormatTimeStr formats a time as a time string (HH:MM).
func (c Clock) FormatTimeStr(t time.Time) string {
	return c.Format(t, FormatTime)
}

// FormatDateTimeStr formats a time as a datetime string.
func (c Clock) FormatDateTimeStr(t time.Time) string {
	return c.Format(t, FormatDateTime)
}

// Parse parses a time string in the clock's location.
func (c Clock) Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, c.location)
}

// FormatMinutes renders whole minutes as "Xh YYm" for human-readable output.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", rest)
	}
	return fmt.Sprintf("%dh %02dm", hours, rest)
}

// FormatElapsed renders a live duration as "Xh YYm" with minute precision.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return FormatMinutes(int(d / time.Minute))
}

// ParseWeekday maps a configured week start name to time.Weekday.
// Unknown values fall back to Monday.
func ParseWeekday(name string) time.Weekday {
	switch name {
	case "sunday", "Sunday":
		return time.Sunday
	case "monday", "Monday":
		return time.Monday
	case "tuesday", "Tuesday":
		return time.Tuesday
	case "wednesday", "Wednesday":
		return time.Wednesday
	case "thursday", "Thursday":
		return time.Thursday
	case "friday", "Friday":
		return time.Friday
	case "saturday", "Saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}
