package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeofenceEvent(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	event, err := NewGeofenceEvent(EventEntry, at)

	require.NoError(t, err)
	assert.True(t, event.ID.IsValid())
	assert.Equal(t, EventEntry, event.Type)
	assert.Equal(t, SourceGeofence, event.Source)
	assert.Empty(t, event.ManualReason)
	assert.NoError(t, event.Validate())
}

func TestNewGeofenceEvent_RejectsInvalidInput(t *testing.T) {
	_, err := NewGeofenceEvent(EventType("bogus"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidEventType)

	_, err = NewGeofenceEvent(EventEntry, time.Time{})
	assert.ErrorIs(t, err, ErrZeroTimestamp)
}

func TestNewManualEvent_TrimsReason(t *testing.T) {
	event, err := NewManualEvent(EventExit, time.Now(), "  forgot my badge  ")

	require.NoError(t, err)
	assert.Equal(t, SourceManual, event.Source)
	assert.Equal(t, "forgot my badge", event.ManualReason)
}

func TestSortEvents_OrdersByTimestampThenID(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	a := Event{ID: "aaa", Timestamp: at, Type: EventEntry, Source: SourceGeofence}
	b := Event{ID: "bbb", Timestamp: at, Type: EventExit, Source: SourceGeofence}
	c := Event{ID: "ccc", Timestamp: at.Add(-time.Hour), Type: EventEntry, Source: SourceGeofence}

	sorted := SortEvents([]Event{b, a, c})

	require.Len(t, sorted, 3)
	assert.Equal(t, EventID("ccc"), sorted[0].ID)
	assert.Equal(t, EventID("aaa"), sorted[1].ID)
	assert.Equal(t, EventID("bbb"), sorted[2].ID)
}

func TestSortEvents_DoesNotMutateInput(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "bbb", Timestamp: at.Add(time.Hour), Type: EventExit, Source: SourceGeofence},
		{ID: "aaa", Timestamp: at, Type: EventEntry, Source: SourceGeofence},
	}

	_ = SortEvents(events)

	assert.Equal(t, EventID("bbb"), events[0].ID)
}

func TestEventTypeLabel(t *testing.T) {
	assert.Equal(t, "Arrival", EventEntry.Label())
	assert.Equal(t, "Departure", EventExit.Label())
}
