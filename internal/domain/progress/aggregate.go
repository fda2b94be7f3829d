package progress

import (
	"fmt"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD AGGREGATION ENGINE
// Read-only computation over derived sessions: tracked minutes per calendar
// window, variance against the configured target, and the progress label.
// ══════════════════════════════════════════════════════════════════════════════

// Aggregator computes tracked time and progress for reporting windows.
type Aggregator struct {
	calendar Calendar
}

// NewAggregator creates an aggregator over the given calendar.
func NewAggregator(calendar Calendar) *Aggregator {
	return &Aggregator{calendar: calendar}
}

// TrackedMinutes sums the whole minutes of session time overlapping the
// period window containing at. Each session is clipped to the window first,
// so a session spanning a boundary contributes only its overlapping portion
// to each side.
func (a *Aggregator) TrackedMinutes(sessions []session.AttendanceSession, period Period, at time.Time) (int, error) {
	start, end, err := a.calendar.Bounds(period, at)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, s := range sessions {
		overlap := s.Overlap(start, end)
		if overlap > 0 {
			total += int(overlap / time.Minute)
		}
	}
	return total, nil
}

// Report is one period's progress snapshot.
type Report struct {
	// Period is the reporting window kind.
	Period Period `json:"period"`

	// TrackedMinutes is the clipped session time inside the window.
	TrackedMinutes int `json:"tracked_minutes"`

	// TargetHours is the configured goal (0 = no goal).
	TargetHours int `json:"target_hours"`

	// VarianceMinutes is tracked minus target, in minutes.
	VarianceMinutes int `json:"variance_minutes"`

	// HasTarget reports whether the period counts as an active target.
	HasTarget bool `json:"has_target"`

	// Label is the human-readable progress line.
	Label string `json:"label"`
}

// Progress builds the report for one period at the given instant.
func (a *Aggregator) Progress(sessions []session.AttendanceSession, policy TargetPolicy, period Period, at time.Time) (Report, error) {
	tracked, err := a.TrackedMinutes(sessions, period, at)
	if err != nil {
		return Report{}, err
	}

	target := policy.TargetHours(period)
	variance := tracked - target*60
	return Report{
		Period:          period,
		TrackedMinutes:  tracked,
		TargetHours:     target,
		VarianceMinutes: variance,
		HasTarget:       policy.HasTarget(period),
		Label:           ProgressLabel(tracked, target),
	}, nil
}

// Overview builds reports for all periods at the given instant.
func (a *Aggregator) Overview(sessions []session.AttendanceSession, policy TargetPolicy, at time.Time) ([]Report, error) {
	reports := make([]Report, 0, 3)
	for _, period := range AllPeriods() {
		report, err := a.Progress(sessions, policy, period, at)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ProgressLabel renders "<tracked>h / <target>h (<sign><variance>h)" with
// hours to one decimal place. The variance sign is always explicit; exactly
// zero renders as "+".
func ProgressLabel(trackedMinutes, targetHours int) string {
	trackedH := float64(trackedMinutes) / 60.0
	varianceH := trackedH - float64(targetHours)

	sign := "+"
	if varianceH < 0 {
		sign = "-"
		varianceH = -varianceH
	}
	return fmt.Sprintf("%.1fh / %.1fh (%s%.1fh)", trackedH, float64(targetHours), sign, varianceH)
}
