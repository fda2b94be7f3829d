package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// fakeSnapshotRepo records saves in memory.
type fakeSnapshotRepo struct {
	mu      sync.Mutex
	saves   []tracker.Snapshot
	saveErr error
}

func (r *fakeSnapshotRepo) Save(_ context.Context, snapshot tracker.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves = append(r.saves, snapshot)
	return nil
}

func (r *fakeSnapshotRepo) Load(_ context.Context) (tracker.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return tracker.DefaultSnapshot(), shared.ErrSnapshotMissing
	}
	return r.saves[len(r.saves)-1], nil
}

func (r *fakeSnapshotRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.Event, len(p.events))
	copy(out, p.events)
	return out
}

// readyTracker returns a tracker with an office and elevated location
// permission, so signals pass the readiness check.
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
