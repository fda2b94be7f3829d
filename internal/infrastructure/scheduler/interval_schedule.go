package scheduler

import (
	"fmt"
	"time"
)

// minInterval guards against busy-looping the run loop. Config validation
// rejects sub-second intervals, but schedules can also be built in code.
const minInterval = time.Second

// IntervalSchedule fires a job at a fixed interval, measured from the end of
// the previous run. Both hub jobs use it: the live-status refresh and the
// snapshot checkpoint.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates an interval schedule. Intervals below one
// second are clamped to minInterval.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the first fire time after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String renders the schedule in "@every" notation for job listings.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
