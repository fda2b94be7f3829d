package presence

import (
	"fmt"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION GATE
// Decides whether a raw inside/outside signal from the platform geofence
// produces a logged event, and what notification text (if any) it implies.
// The gate never appends to the log or sends anything itself - it returns a
// decision for the orchestrator to apply.
// ══════════════════════════════════════════════════════════════════════════════

// State is the explicit two-state presence machine.
type State string

const (
	// StateOutside means the user is believed to be outside the office.
	StateOutside State = "outside"

	// StateInside means the user is believed to be inside the office.
	StateInside State = "inside"
)

// StateFromInside converts the legacy inside-office boolean to a State.
func StateFromInside(inside bool) State {
	if inside {
		return StateInside
	}
	return StateOutside
}

// Inside reports whether the state is inside.
func (s State) Inside() bool {
	return s == StateInside
}

// Signal is a raw reading delivered by the platform geofence collaborator.
// Readings arrive at arbitrary times and may repeat or replay out of order.
type Signal struct {
	// Inside is the raw boolean "currently inside" reading.
	Inside bool

	// At is when the reading was taken.
	At time.Time
}

// Decision is the gate's output for one raw signal.
type Decision struct {
	// Changed reports whether the signal represents an actual transition.
	// When false, every other field is zero and nothing must be applied.
	Changed bool

	// NextState is the state after applying the signal.
	NextState State

	// Event is the presence event to append to the log.
	Event Event

	// NotificationText is advisory text for the notification collaborator.
	// Empty when notifications are disabled or the permission is not elevated.
	NotificationText string
}

// Gate evaluates raw signals against the current tracker state.
type Gate struct {
	// location renders the event time inside notification text.
	location *time.Location
}

// NewGate creates a transition gate that formats notification times in the
// given location. A nil location falls back to the local timezone.
func NewGate(location *time.Location) *Gate {
	if location == nil {
		location = time.Local
	}
	return &Gate{location: location}
}

// Evaluate applies one raw signal to the current state.
//
// The decision is a no-op (Changed == false) when tracking is not ready or
// when the signal matches the current state - repeated identical readings
// never create duplicate events. Otherwise the decision carries exactly one
// new geofence event and the next state.
func (g *Gate) Evaluate(
	signal Signal,
	current State,
	trackingReady bool,
	notificationsEnabled bool,
	notificationPermission shared.PermissionState,
) (Decision, error) {
	if !trackingReady {
		return Decision{}, nil
	}
	if StateFromInside(signal.Inside) == current {
		// Debounce: the signal does not represent a change.
		return Decision{}, nil
	}

	eventType := EventExit
	if signal.Inside {
		eventType = EventEntry
	}
	event, err := NewGeofenceEvent(eventType, signal.At)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{
		Changed:   true,
		NextState: StateFromInside(signal.Inside),
		Event:     event,
	}
	if notificationsEnabled && notificationPermission.IsElevated() {
		decision.NotificationText = g.notificationText(eventType, signal.At)
	}
	return decision, nil
}

// notificationText renders "<Label> detected at <HH:MM>" in the gate's timezone.
func (g *Gate) notificationText(eventType EventType, at time.Time) string {
	return fmt.Sprintf("%s detected at %s", eventType.Label(), at.In(g.location).Format("15:04"))
}
