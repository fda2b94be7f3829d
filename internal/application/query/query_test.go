package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// readyTracker returns a tracker configured so signals pass the readiness
// check, in UTC.
func readyTracker(t *testing.T) *tracker.Tracker {
	t.Helper()

	tr := tracker.New(time.UTC)
	require.NoError(t, tr.SetOffice(shared.OfficeLocation{
		Name:         "HQ",
		Latitude:     52.52,
		Longitude:    13.405,
		RadiusMeters: 150,
	}))
	require.NoError(t, tr.SetLocationPermission(shared.PermissionAlways))
	return tr
}

// signal pushes a raw reading through the tracker and fails the test on error.
func signal(t *testing.T, tr *tracker.Tracker, inside bool, at time.Time) {
	t.Helper()
	_, err := tr.ApplySignal(presence.Signal{Inside: inside, At: at})
	require.NoError(t, err)
}

func utcAggregator() *progress.Aggregator {
	return progress.NewAggregator(progress.NewCalendar(time.UTC, time.Monday))
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetStatus_OutsideAndReady(t *testing.T) {
	tr := readyTracker(t)
	h := NewGetStatusHandler(tr)

	view, err := h.Handle(context.Background(), GetStatusQuery{})

	require.NoError(t, err)
	assert.False(t, view.Inside)
	assert.True(t, view.TrackingReady)
	assert.True(t, view.OfficeConfigured)
	assert.Nil(t, view.LiveSession)
	assert.Equal(t, shared.PermissionAlways, view.LocationPermission)
}

func TestGetStatus_InsideReportsLiveSession(t *testing.T) {
	tr := readyTracker(t)
	entered := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	signal(t, tr, true, entered)

	h := NewGetStatusHandler(tr)
	view, err := h.Handle(context.Background(), GetStatusQuery{At: entered.Add(125 * time.Minute)})

	require.NoError(t, err)
	assert.True(t, view.Inside)
	require.NotNil(t, view.LiveSession)
	assert.Equal(t, 125, view.LiveSession.ElapsedMinutes)
	assert.True(t, view.LiveSession.Since.Equal(entered))
	assert.Equal(t, "2h 05m", view.LiveSession.Elapsed)
}

func TestGetStatus_UnconfiguredTracker(t *testing.T) {
	tr := tracker.New(time.UTC)
	h := NewGetStatusHandler(tr)

	view, err := h.Handle(context.Background(), GetStatusQuery{})

	require.NoError(t, err)
	assert.False(t, view.TrackingReady)
	assert.False(t, view.OfficeConfigured)
	assert.Equal(t, shared.PermissionNotDetermined, view.LocationPermission)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetProgress_SinglePeriod(t *testing.T) {
	tr := readyTracker(t)
	require.NoError(t, tr.SetTargets(progress.TargetPolicy{DailyHours: 8}))

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	signal(t, tr, true, day.Add(9*time.Hour))
	signal(t, tr, false, day.Add(13*time.Hour))

	h := NewGetProgressHandler(tr, utcAggregator())
	view, err := h.Handle(context.Background(), GetProgressQuery{
		Period: progress.PeriodDay,
		At:     day.Add(18 * time.Hour),
	})

	require.NoError(t, err)
	require.Len(t, view.Reports, 1)
	report := view.Reports[0]
	assert.Equal(t, progress.PeriodDay, report.Period)
	assert.Equal(t, 240, report.TrackedMinutes)
	assert.Equal(t, 8, report.TargetHours)
	assert.Equal(t, "4.0h / 8.0h (-4.0h)", report.Label)
}

func TestGetProgress_OverviewCoversAllPeriods(t *testing.T) {
	tr := readyTracker(t)
	h := NewGetProgressHandler(tr, utcAggregator())

	view, err := h.Handle(context.Background(), GetProgressQuery{})

	require.NoError(t, err)
	require.Len(t, view.Reports, 3)
	assert.Equal(t, progress.PeriodDay, view.Reports[0].Period)
	assert.Equal(t, progress.PeriodWeek, view.Reports[1].Period)
	assert.Equal(t, progress.PeriodMonth, view.Reports[2].Period)
}

func TestGetProgress_IncludeLiveCountsOpenSession(t *testing.T) {
	tr := readyTracker(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	signal(t, tr, true, day.Add(9*time.Hour))

	h := NewGetProgressHandler(tr, utcAggregator())

	at := day.Add(10 * time.Hour)
	withLive, err := h.Handle(context.Background(), GetProgressQuery{
		Period:      progress.PeriodDay,
		At:          at,
		IncludeLive: true,
	})
	require.NoError(t, err)
	assert.True(t, withLive.LiveIncluded)
	assert.Equal(t, 60, withLive.Reports[0].TrackedMinutes)

	withoutLive, err := h.Handle(context.Background(), GetProgressQuery{
		Period: progress.PeriodDay,
		At:     at,
	})
	require.NoError(t, err)
	assert.False(t, withoutLive.LiveIncluded)
	assert.Equal(t, 0, withoutLive.Reports[0].TrackedMinutes)
}

func TestGetProgress_RejectsUnknownPeriod(t *testing.T) {
	tr := readyTracker(t)
	h := NewGetProgressHandler(tr, utcAggregator())

	_, err := h.Handle(context.Background(), GetProgressQuery{Period: "quarter"})
	assert.ErrorIs(t, err, progress.ErrInvalidPeriod)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetSessions_FiltersByRange(t *testing.T) {
	tr := readyTracker(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	signal(t, tr, true, day.Add(9*time.Hour))
	signal(t, tr, false, day.Add(12*time.Hour))
	signal(t, tr, true, day.Add(13*time.Hour))
	signal(t, tr, false, day.Add(17*time.Hour))

	h := NewGetSessionsHandler(tr)

	all, err := h.Handle(context.Background(), GetSessionsQuery{})
	require.NoError(t, err)
	require.Len(t, all.Sessions, 2)
	assert.Equal(t, (3+4)*60, all.TotalMinutes)

	afternoon, err := h.Handle(context.Background(), GetSessionsQuery{From: day.Add(13 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, afternoon.Sessions, 1)
	assert.Equal(t, 240, afternoon.TotalMinutes)
}

func TestGetSessions_IncludeLiveAppendsOpenSession(t *testing.T) {
	tr := readyTracker(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	signal(t, tr, true, day.Add(9*time.Hour))

	h := NewGetSessionsHandler(tr)

	view, err := h.Handle(context.Background(), GetSessionsQuery{
		IncludeLive: true,
		At:          day.Add(10 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, view.Sessions, 1)
	assert.True(t, view.Sessions[0].Live)
	assert.Equal(t, 60, view.TotalMinutes)
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENTS & AUDIT
// ══════════════════════════════════════════════════════════════════════════════

func TestGetEvents_ChronologicalWithRange(t *testing.T) {
	tr := readyTracker(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	signal(t, tr, true, day.Add(9*time.Hour))
	signal(t, tr, false, day.Add(12*time.Hour))

	h := NewGetEventsHandler(tr)

	view, err := h.Handle(context.Background(), GetEventsQuery{})
	require.NoError(t, err)
	require.Len(t, view.Events, 2)
	assert.Equal(t, presence.EventEntry, view.Events[0].Type)
	assert.Equal(t, 2, view.Total)

	bounded, err := h.Handle(context.Background(), GetEventsQuery{From: day.Add(10 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, bounded.Events, 1)
	assert.Equal(t, presence.EventExit, bounded.Events[0].Type)
}

func TestGetAuditLog_NewestFirstWithLimitAndFilter(t *testing.T) {
	tr := readyTracker(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	event, _, err := tr.AddEvent(presence.EventEntry, now.Add(-3*time.Hour), "first", now)
	require.NoError(t, err)
	_, _, err = tr.EditEvent(event.ID, presence.EventExit, now.Add(-2*time.Hour), "second", now.Add(time.Minute))
	require.NoError(t, err)
	_, _, err = tr.DeleteEvent(event.ID, "third", now.Add(2*time.Minute))
	require.NoError(t, err)

	h := NewGetAuditLogHandler(tr)

	view, err := h.Handle(context.Background(), GetAuditLogQuery{})
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, audit.ActionDelete, view.Entries[0].Action)
	assert.Equal(t, 3, view.Total)

	limited, err := h.Handle(context.Background(), GetAuditLogQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited.Entries, 1)
	assert.Equal(t, 3, limited.Total)

	edits, err := h.Handle(context.Background(), GetAuditLogQuery{Action: audit.ActionEdit})
	require.NoError(t, err)
	require.Len(t, edits.Entries, 1)
	assert.Equal(t, "second", edits.Entries[0].Reason)
}

func TestGetAuditLog_RejectsUnknownAction(t *testing.T) {
	tr := readyTracker(t)
	h := NewGetAuditLogHandler(tr)

	_, err := h.Handle(context.Background(), GetAuditLogQuery{Action: "rename"})
	assert.ErrorIs(t, err, audit.ErrInvalidAction)
}
