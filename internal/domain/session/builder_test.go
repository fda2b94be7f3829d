package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
)

func event(id string, t time.Time, eventType presence.EventType) presence.Event {
	return presence.Event{
		ID:        presence.EventID(id),
		Timestamp: t,
		Type:      eventType,
		Source:    presence.SourceGeofence,
	}
}

func TestBuild_SimplePair(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []presence.Event{
		event("e1", day.Add(10*time.Hour), presence.EventEntry),
		event("e2", day.Add(10*time.Hour+45*time.Minute), presence.EventExit),
	}

	sessions := Build(events)

	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Start.Equal(day.Add(10*time.Hour)))
	assert.True(t, sessions[0].End.Equal(day.Add(10*time.Hour+45*time.Minute)))
	assert.Equal(t, 45, sessions[0].Minutes())
}

func TestBuild_StaleOpenEntryIsDiscarded(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []presence.Event{
		event("e1", day.Add(9*time.Hour), presence.EventEntry),
		event("e2", day.Add(9*time.Hour+30*time.Minute), presence.EventEntry),
		event("e3", day.Add(10*time.Hour), presence.EventExit),
	}

	sessions := Build(events)

	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Start.Equal(day.Add(9*time.Hour+30*time.Minute)))
	assert.Equal(t, 30, sessions[0].Minutes())
	assert.Equal(t, 30, TotalMinutes(sessions))
}

func TestBuild_IgnoresStrayExits(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("exit without entry", func(t *testing.T) {
		sessions := Build([]presence.Event{
			event("e1", day.Add(8*time.Hour), presence.EventExit),
		})
		assert.Empty(t, sessions)
	})

	t.Run("exit before the open entry", func(t *testing.T) {
		sessions := Build([]presence.Event{
			event("e2", day.Add(10*time.Hour), presence.EventEntry),
			event("e1", day.Add(9*time.Hour), presence.EventExit),
			event("e3", day.Add(11*time.Hour), presence.EventExit),
		})
		// The 9:00 exit is ignored and does not clear the open entry.
		require.Len(t, sessions, 1)
		assert.True(t, sessions[0].Start.Equal(day.Add(10*time.Hour)))
		assert.True(t, sessions[0].End.Equal(day.Add(11*time.Hour)))
	})
}

func TestBuild_ZeroLengthSession(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	sessions := Build([]presence.Event{
		event("e1", at, presence.EventEntry),
		event("e2", at, presence.EventExit),
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, 0, sessions[0].Minutes())
	assert.GreaterOrEqual(t, sessions[0].Minutes(), 0)
}

func TestBuild_EqualTimestampsBrokenByID(t *testing.T) {
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	// Exit id sorts before entry id: with the id tiebreak the exit is
	// processed first and ignored, leaving the entry open.
	sessions := Build([]presence.Event{
		event("b-entry", at, presence.EventEntry),
		event("a-exit", at, presence.EventExit),
	})

	assert.Empty(t, sessions)
}

func TestBuild_PermutationInvariantAndIdempotent(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []presence.Event{
		event("e1", day.Add(9*time.Hour), presence.EventEntry),
		event("e2", day.Add(10*time.Hour), presence.EventExit),
		event("e3", day.Add(13*time.Hour), presence.EventEntry),
		event("e4", day.Add(17*time.Hour), presence.EventExit),
		event("e5", day.Add(18*time.Hour), presence.EventEntry),
	}

	reference := Build(events)
	require.Len(t, reference, 2)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]presence.Event, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, reference, Build(shuffled))
	}

	// Idempotence: same input, same output.
	assert.Equal(t, reference, Build(events))
}

func TestOpenEntry(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("open entry after closed session", func(t *testing.T) {
		open, ok := OpenEntry([]presence.Event{
			event("e1", day.Add(9*time.Hour), presence.EventEntry),
			event("e2", day.Add(10*time.Hour), presence.EventExit),
			event("e3", day.Add(11*time.Hour), presence.EventEntry),
		})
		require.True(t, ok)
		assert.Equal(t, presence.EventID("e3"), open.ID)
	})

	t.Run("no open entry", func(t *testing.T) {
		_, ok := OpenEntry([]presence.Event{
			event("e1", day.Add(9*time.Hour), presence.EventEntry),
			event("e2", day.Add(10*time.Hour), presence.EventExit),
		})
		assert.False(t, ok)
	})
}

func TestWithLive(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []presence.Event{
		event("e1", day.Add(9*time.Hour), presence.EventEntry),
	}
	closed := Build(events)
	require.Empty(t, closed)

	t.Run("appends live session when inside", func(t *testing.T) {
		now := day.Add(9*time.Hour + 30*time.Minute)
		sessions := WithLive(closed, events, true, now)

		require.Len(t, sessions, 1)
		assert.True(t, sessions[0].Live)
		assert.Equal(t, 30, sessions[0].Minutes())
	})

	t.Run("no live session when outside", func(t *testing.T) {
		sessions := WithLive(closed, events, false, day.Add(10*time.Hour))
		assert.Empty(t, sessions)
	})

	t.Run("no live session when now is not after the entry", func(t *testing.T) {
		sessions := WithLive(closed, events, true, day.Add(9*time.Hour))
		assert.Empty(t, sessions)
	})

	t.Run("does not mutate the stored list", func(t *testing.T) {
		_ = WithLive(closed, events, true, day.Add(10*time.Hour))
		assert.Empty(t, closed)
	})
}
