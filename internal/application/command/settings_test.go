package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

func TestSetTargets_StoresPolicyAndPublishes(t *testing.T) {
	tr := tracker.New(nil)
	repo := &fakeSnapshotRepo{}
	pub := &recordingPublisher{}
	h := NewSetTargetsHandler(tr, repo, pub, nil, true)

	result, err := h.Handle(context.Background(), SetTargetsCommand{
		DailyHours:   8,
		WeeklyHours:  40,
		MonthlyHours: 160,
	})

	require.NoError(t, err)
	assert.Equal(t, 8, result.Policy.DailyHours)
	assert.Equal(t, result.Policy, tr.Policy())
	assert.Equal(t, 1, repo.saveCount())

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventTargetsUpdated, events[0].EventType())
}

func TestSetTargets_RejectsNegative(t *testing.T) {
	tr := tracker.New(nil)
	h := NewSetTargetsHandler(tr, &fakeSnapshotRepo{}, &recordingPublisher{}, nil, false)

	_, err := h.Handle(context.Background(), SetTargetsCommand{DailyHours: -1})
	assert.ErrorIs(t, err, progress.ErrNegativeTarget)
}

func TestSetTargets_ZeroMeansNoGoal(t *testing.T) {
	tr := tracker.New(nil)
	h := NewSetTargetsHandler(tr, &fakeSnapshotRepo{}, &recordingPublisher{}, nil, false)

	result, err := h.Handle(context.Background(), SetTargetsCommand{WeeklyHours: 40})

	require.NoError(t, err)
	assert.False(t, result.Policy.HasTarget(progress.PeriodDay))
	assert.True(t, result.Policy.HasTarget(progress.PeriodWeek))
}

func TestSetOffice_StoresLocationAndReportsReadiness(t *testing.T) {
	tr := tracker.New(nil)
	require.NoError(t, tr.SetLocationPermission(shared.PermissionAlways))

	pub := &recordingPublisher{}
	h := NewSetOfficeHandler(tr, &fakeSnapshotRepo{}, pub, nil, false)

	result, err := h.Handle(context.Background(), SetOfficeCommand{
		Name:         "HQ",
		Latitude:     52.52,
		Longitude:    13.405,
		RadiusMeters: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, "HQ", result.Office.Name)
	assert.True(t, result.TrackingReady)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventOfficeUpdated, events[0].EventType())
}

func TestSetOffice_RejectsInvalidBounds(t *testing.T) {
	tr := tracker.New(nil)
	h := NewSetOfficeHandler(tr, &fakeSnapshotRepo{}, &recordingPublisher{}, nil, false)

	_, err := h.Handle(context.Background(), SetOfficeCommand{
		Name:         "Nowhere",
		Latitude:     120,
		Longitude:    0,
		RadiusMeters: 50,
	})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = h.Handle(context.Background(), SetOfficeCommand{
		Latitude:     10,
		Longitude:    10,
		RadiusMeters: 50,
	})
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestUpdateSettings_AppliesSubset(t *testing.T) {
	tr := tracker.New(nil)
	repo := &fakeSnapshotRepo{}
	h := NewUpdateSettingsHandler(tr, repo, nil, true)

	always := shared.PermissionAlways
	enabled := true
	shown := true
	result, err := h.Handle(context.Background(), UpdateSettingsCommand{
		LocationPermission:   &always,
		NotificationsEnabled: &enabled,
		OnboardingShown:      &shown,
	})

	require.NoError(t, err)
	assert.True(t, result.OnboardingShown)
	assert.False(t, result.TrackingReady) // no office yet
	assert.Equal(t, 1, repo.saveCount())

	snapshot := tr.Snapshot()
	assert.Equal(t, shared.PermissionAlways, snapshot.LocationPermission)
	assert.True(t, snapshot.NotificationsEnabled)
}

func TestUpdateSettings_PreservesOmittedDeferral(t *testing.T) {
	tr := tracker.New(nil)
	tr.SetPermissionDeferrals(true, true)

	h := NewUpdateSettingsHandler(tr, &fakeSnapshotRepo{}, nil, false)

	deferLocation := false
	_, err := h.Handle(context.Background(), UpdateSettingsCommand{
		DeferLocationPrompt: &deferLocation,
	})

	require.NoError(t, err)
	snapshot := tr.Snapshot()
	assert.False(t, snapshot.LocationDeferred)
	assert.True(t, snapshot.NotificationDeferred)
}

func TestUpdateSettings_RejectsEmptyAndInvalid(t *testing.T) {
	tr := tracker.New(nil)
	h := NewUpdateSettingsHandler(tr, &fakeSnapshotRepo{}, nil, false)

	_, err := h.Handle(context.Background(), UpdateSettingsCommand{})
	assert.ErrorIs(t, err, ErrNoSettingsProvided)

	bogus := shared.PermissionState("sometimes")
	_, err = h.Handle(context.Background(), UpdateSettingsCommand{LocationPermission: &bogus})
	assert.ErrorIs(t, err, ErrInvalidPermissionState)
}
