package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

func readyTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker := New(time.UTC)
	require.NoError(t, tracker.SetLocationPermission(shared.PermissionAlways))
	require.NoError(t, tracker.SetOffice(shared.OfficeLocation{
		Name:         "HQ",
		Latitude:     43.238949,
		Longitude:    76.889709,
		RadiusMeters: 150,
	}))
	return tracker
}

func TestTrackingReady(t *testing.T) {
	tracker := New(time.UTC)
	assert.False(t, tracker.TrackingReady())

	require.NoError(t, tracker.SetLocationPermission(shared.PermissionAlways))
	assert.False(t, tracker.TrackingReady(), "office not configured yet")

	require.NoError(t, tracker.SetOffice(shared.OfficeLocation{Name: "HQ", Latitude: 1, Longitude: 2, RadiusMeters: 10}))
	assert.True(t, tracker.TrackingReady())
}

func TestApplySignal_EntryThenDebounce(t *testing.T) {
	tracker := readyTracker(t)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	result, err := tracker.ApplySignal(presence.Signal{Inside: true, At: at})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.True(t, result.Inside)
	assert.True(t, tracker.Inside())
	assert.Len(t, tracker.Events(), 1)

	// A duplicate raw reading never creates a second event.
	result, err = tracker.ApplySignal(presence.Signal{Inside: true, At: at.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Len(t, tracker.Events(), 1)
}

func TestApplySignal_FullRoundTripBuildsSession(t *testing.T) {
	tracker := readyTracker(t)
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := tracker.ApplySignal(presence.Signal{Inside: true, At: at})
	require.NoError(t, err)
	_, err = tracker.ApplySignal(presence.Signal{Inside: false, At: at.Add(45 * time.Minute)})
	require.NoError(t, err)

	sessions := tracker.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, 45, sessions[0].Minutes())
	assert.False(t, tracker.Inside())
}

func TestApplySignal_NotReadyIsNoOp(t *testing.T) {
	tracker := New(time.UTC)

	result, err := tracker.ApplySignal(presence.Signal{Inside: true, At: time.Now()})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, tracker.Events())
}

func TestApplySignal_RecordsNotificationText(t *testing.T) {
	tracker := readyTracker(t)
	tracker.SetNotificationsEnabled(true)
	require.NoError(t, tracker.SetNotificationPermission(shared.PermissionAlways))

	at := time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)
	result, err := tracker.ApplySignal(presence.Signal{Inside: true, At: at})

	require.NoError(t, err)
	assert.Equal(t, "Arrival detected at 09:05", result.NotificationText)
	require.Len(t, tracker.Notifications(), 1)
	assert.Equal(t, "Arrival detected at 09:05", tracker.Notifications()[0])
}

func TestLiveElapsed(t *testing.T) {
	tracker := readyTracker(t)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := tracker.ApplySignal(presence.Signal{Inside: true, At: at})
	require.NoError(t, err)

	elapsed, ok := tracker.LiveElapsed(at.Add(90 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, elapsed)

	live := tracker.SessionsWithLive(at.Add(90 * time.Minute))
	require.Len(t, live, 1)
	assert.True(t, live[0].Live)

	// The stored session list stays free of the synthetic session.
	assert.Empty(t, tracker.Sessions())
}

func TestAddEvent(t *testing.T) {
	tracker := New(time.UTC)
	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)

	event, entry, err := tracker.AddEvent(presence.EventEntry, at, "badge reader was down", now)

	require.NoError(t, err)
	assert.Equal(t, presence.SourceManual, event.Source)
	assert.Equal(t, audit.ActionAdd, entry.Action)
	assert.Equal(t, event.ID.String(), entry.EventID)
	assert.True(t, entry.Timestamp.Equal(now))
	assert.Len(t, tracker.Events(), 1)
	assert.Len(t, tracker.AuditLog(), 1)
}

func TestEditEvent(t *testing.T) {
	tracker := New(time.UTC)
	at := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	now := time.Now()

	event, _, err := tracker.AddEvent(presence.EventEntry, at, "initial", now)
	require.NoError(t, err)

	updated, entry, err := tracker.EditEvent(event.ID, presence.EventExit, at.Add(time.Hour), "wrong direction", now)
	require.NoError(t, err)
	assert.Equal(t, presence.EventExit, updated.Type)
	assert.Equal(t, presence.SourceManual, updated.Source)
	assert.True(t, updated.Timestamp.Equal(at.Add(time.Hour)))
	assert.Equal(t, event.ID, updated.ID, "identity survives the edit")
	assert.Equal(t, audit.ActionEdit, entry.Action)
	assert.Equal(t, event.ID.String(), entry.EventID)
}

func TestEditEvent_NotFoundIsNoOp(t *testing.T) {
	tracker := New(time.UTC)
	now := time.Now()

	_, _, err := tracker.AddEvent(presence.EventEntry, now.Add(-time.Hour), "x", now)
	require.NoError(t, err)
	eventsBefore := tracker.Events()
	auditBefore := tracker.AuditLog()

	_, _, err = tracker.EditEvent(presence.EventID("missing"), presence.EventExit, now, "oops", now)

	assert.ErrorIs(t, err, presence.ErrEventNotFound)
	assert.Equal(t, eventsBefore, tracker.Events())
	assert.Equal(t, auditBefore, tracker.AuditLog(), "no audit entry for a failed edit")
}

func TestDeleteEvent_AlwaysAudits(t *testing.T) {
	tracker := New(time.UTC)
	now := time.Now()

	event, _, err := tracker.AddEvent(presence.EventEntry, now.Add(-time.Hour), "x", now)
	require.NoError(t, err)

	t.Run("existing id with empty reason", func(t *testing.T) {
		entry, removed, err := tracker.DeleteEvent(event.ID, "   ", now)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, audit.PlaceholderReason, entry.Reason)
		assert.Empty(t, tracker.Events())
	})

	t.Run("missing id still audited", func(t *testing.T) {
		before := len(tracker.AuditLog())
		entry, removed, err := tracker.DeleteEvent(presence.EventID("missing"), "cleanup", now)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, audit.ActionDelete, entry.Action)
		assert.Len(t, tracker.AuditLog(), before+1)
	})
}

func TestAuditLogNewestFirst(t *testing.T) {
	tracker := New(time.UTC)
	now := time.Now()

	_, _, err := tracker.AddEvent(presence.EventEntry, now.Add(-2*time.Hour), "first", now)
	require.NoError(t, err)
	_, _, err = tracker.AddEvent(presence.EventExit, now.Add(-time.Hour), "second", now.Add(time.Second))
	require.NoError(t, err)

	log := tracker.AuditLog()
	require.Len(t, log, 2)
	assert.Equal(t, "second", log[0].Reason)
	assert.Equal(t, "first", log[1].Reason)
}

func TestSetTargets_Validation(t *testing.T) {
	tracker := New(time.UTC)

	require.NoError(t, tracker.SetTargets(progress.TargetPolicy{DailyHours: 8, WeeklyHours: 40}))
	assert.Equal(t, 8, tracker.Policy().DailyHours)

	err := tracker.SetTargets(progress.TargetPolicy{DailyHours: -1})
	assert.ErrorIs(t, err, progress.ErrNegativeTarget)
	assert.Equal(t, 8, tracker.Policy().DailyHours, "state untouched after validation failure")
}

func TestSetOffice_Validation(t *testing.T) {
	tracker := New(time.UTC)

	err := tracker.SetOffice(shared.OfficeLocation{Name: "HQ", Latitude: 91, Longitude: 0, RadiusMeters: 10})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
	assert.False(t, tracker.Office().IsConfigured())
}
