package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

func TestRecordTransition_EntryProducesEventAndPublishes(t *testing.T) {
	tr := readyTracker(t)
	repo := &fakeSnapshotRepo{}
	pub := &recordingPublisher{}
	h := NewRecordTransitionHandler(tr, repo, pub, nil, true)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	result, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: at})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.True(t, result.Inside)
	assert.NotEmpty(t, result.EventID)

	assert.Equal(t, 1, repo.saveCount())

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventOfficeEntered, events[0].EventType())
}

func TestRecordTransition_DuplicateSignalIsDebounced(t *testing.T) {
	tr := readyTracker(t)
	repo := &fakeSnapshotRepo{}
	pub := &recordingPublisher{}
	h := NewRecordTransitionHandler(tr, repo, pub, nil, true)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: at})
	require.NoError(t, err)

	// Same reading again: no state change, no event, no publish.
	result, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: at.Add(time.Minute)})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Empty(t, result.EventID)

	assert.Equal(t, 1, repo.saveCount())
	assert.Len(t, pub.published(), 1)
}

func TestRecordTransition_NotReadyTrackerIgnoresSignals(t *testing.T) {
	tr := readyTracker(t)
	require.NoError(t, tr.SetLocationPermission(shared.PermissionWhenInUse))

	h := NewRecordTransitionHandler(tr, &fakeSnapshotRepo{}, &recordingPublisher{}, nil, true)

	result, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: time.Now()})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.False(t, result.Inside)
}

func TestRecordTransition_SaveFailureDoesNotFailCommand(t *testing.T) {
	tr := readyTracker(t)
	repo := &fakeSnapshotRepo{saveErr: assert.AnError}
	h := NewRecordTransitionHandler(tr, repo, &recordingPublisher{}, nil, true)

	result, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: time.Now()})

	require.NoError(t, err)
	assert.True(t, result.Changed)
}

func TestRecordTransition_CheckpointDisabledSkipsSave(t *testing.T) {
	tr := readyTracker(t)
	repo := &fakeSnapshotRepo{}
	h := NewRecordTransitionHandler(tr, repo, &recordingPublisher{}, nil, false)

	_, err := h.Handle(context.Background(), RecordTransitionCommand{Inside: true, At: time.Now()})

	require.NoError(t, err)
	assert.Equal(t, 0, repo.saveCount())
}

func TestRecordTransition_DefaultsTimestamp(t *testing.T) {
	cmd := RecordTransitionCommand{Inside: true}
	require.NoError(t, cmd.Validate())
	assert.False(t, cmd.At.IsZero())
}
