package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tracker := New(time.UTC)
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)

	require.NoError(t, tracker.SetLocationPermission(shared.PermissionAlways))
	require.NoError(t, tracker.SetOffice(shared.OfficeLocation{Name: "HQ", Latitude: 43.2, Longitude: 76.9, RadiusMeters: 120}))
	require.NoError(t, tracker.SetTargets(progress.TargetPolicy{DailyHours: 8, WeeklyHours: 40, MonthlyHours: 160}))
	tracker.SetNotificationsEnabled(true)
	tracker.SetOnboardingShown(true)
	tracker.SetPermissionDeferrals(true, false)

	_, _, err := tracker.AddEvent(presence.EventEntry, now.Add(-9*time.Hour), "forgot badge", now)
	require.NoError(t, err)
	_, _, err = tracker.AddEvent(presence.EventExit, now.Add(-time.Hour), "left early", now)
	require.NoError(t, err)

	_, err = tracker.ApplySignal(presence.Signal{Inside: true, At: now})
	require.NoError(t, err)

	data, err := tracker.Snapshot().Encode()
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)

	restored := New(time.UTC)
	restored.Restore(decoded)

	assert.Equal(t, tracker.Events(), restored.Events())
	assert.Equal(t, tracker.Sessions(), restored.Sessions())
	assert.Equal(t, tracker.AuditLog(), restored.AuditLog())
	assert.Equal(t, tracker.Policy(), restored.Policy())
	assert.Equal(t, tracker.Office(), restored.Office())
	assert.True(t, restored.Inside())
	assert.True(t, restored.OnboardingShown())
	assert.True(t, restored.TrackingReady())
}

func TestDecodeSnapshot_MalformedFallsBackToDefaults(t *testing.T) {
	decoded, err := DecodeSnapshot([]byte("{not json"))

	assert.ErrorIs(t, err, shared.ErrSnapshotMalformed)
	assert.Equal(t, DefaultSnapshot(), decoded)
}

func TestDecodeSnapshot_MissingFallsBackToDefaults(t *testing.T) {
	decoded, err := DecodeSnapshot(nil)

	assert.ErrorIs(t, err, shared.ErrSnapshotMissing)
	assert.Equal(t, DefaultSnapshot(), decoded)
}

func TestDecodeSnapshot_UnsupportedFutureVersion(t *testing.T) {
	decoded, err := DecodeSnapshot([]byte(`{"version": 99}`))

	assert.ErrorIs(t, err, shared.ErrSnapshotMalformed)
	assert.Equal(t, DefaultSnapshot(), decoded)
}

func TestDecodeSnapshot_OlderSchemaDefaultsMissingFields(t *testing.T) {
	// A minimal older snapshot: no permissions, no logs, no office.
	decoded, err := DecodeSnapshot([]byte(`{"version": 1, "inside_office": true}`))

	require.NoError(t, err)
	assert.Equal(t, shared.PermissionNotDetermined, decoded.LocationPermission)
	assert.Equal(t, shared.PermissionNotDetermined, decoded.NotificationPermission)
	assert.NotNil(t, decoded.Events)
	assert.NotNil(t, decoded.AuditLog)
	assert.NotNil(t, decoded.NotificationLog)
	assert.True(t, decoded.InsideOffice)
	assert.False(t, decoded.OnboardingShown)
}

func TestRestore_DropsInvalidEmbeddedState(t *testing.T) {
	snapshot := DefaultSnapshot()
	snapshot.Office = &shared.OfficeLocation{Name: "Bad", Latitude: 200, Longitude: 0, RadiusMeters: 5}
	snapshot.Targets = progress.TargetPolicy{DailyHours: -3}
	snapshot.Events = []presence.Event{
		{ID: "ok", Timestamp: time.Now(), Type: presence.EventEntry, Source: presence.SourceGeofence},
		{ID: "", Timestamp: time.Now(), Type: presence.EventEntry, Source: presence.SourceGeofence},
	}

	tracker := New(time.UTC)
	tracker.Restore(snapshot)

	assert.False(t, tracker.Office().IsConfigured())
	assert.Equal(t, progress.TargetPolicy{}, tracker.Policy())
	assert.Len(t, tracker.Events(), 1)
	assert.Contains(t, tracker.RecoveryMessage(), "office location dropped")
	assert.Contains(t, tracker.RecoveryMessage(), "target policy reset")
	assert.Contains(t, tracker.RecoveryMessage(), "1 invalid events dropped")
}
