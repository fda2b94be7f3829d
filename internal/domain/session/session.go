// Package session contains the attendance session entity and the
// reconstruction engine that derives sessions from the presence event log.
// Sessions are never persisted or mutated: every recomputation replaces the
// whole set. This is a pure domain layer with zero external dependencies.
package session

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for the session package.
var (
	ErrEndBeforeStart = errors.New("session: end time cannot be before start time")
)

// AttendanceSession is one closed interval of presence inside the office.
type AttendanceSession struct {
	// ID identifies the session within one derived set. It is stable for a
	// given event log because it is the ID of the closing exit's entry.
	ID string `json:"id"`

	// Start is the matched entry timestamp.
	Start time.Time `json:"start"`

	// End is the matched exit timestamp. Always >= Start.
	End time.Time `json:"end"`

	// Live marks the synthetic open session appended by the live read path.
	Live bool `json:"live,omitempty"`
}

// NewAttendanceSession creates a closed session.
func NewAttendanceSession(id string, start, end time.Time) (AttendanceSession, error) {
	if end.Before(start) {
		return AttendanceSession{}, ErrEndBeforeStart
	}
	return AttendanceSession{ID: id, Start: start, End: end}, nil
}

// Duration returns the raw session duration.
func (s AttendanceSession) Duration() time.Duration {
	d := s.End.Sub(s.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Minutes returns the duration in whole minutes, clamped to >= 0.
func (s AttendanceSession) Minutes() int {
	return int(s.Duration() / time.Minute)
}

// Overlap returns the portion of the session inside the half-open window
// [from, to). A session fully outside the window overlaps zero.
func (s AttendanceSession) Overlap(from, to time.Time) time.Duration {
	start := s.Start
	if start.Before(from) {
		start = from
	}
	end := s.End
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// String returns a short description for logs.
func (s AttendanceSession) String() string {
	return fmt.Sprintf("[%s - %s, %dm]", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339), s.Minutes())
}
