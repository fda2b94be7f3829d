// Package presence contains the domain entities and business logic for raw
// office presence: boundary-crossing events and the transition gate that
// turns raw geofence signals into logged events.
// This is a pure domain layer with zero external dependencies beyond uuid.
package presence

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain errors for the presence package.
var (
	ErrInvalidEventID    = errors.New("presence: invalid event ID")
	ErrInvalidEventType  = errors.New("presence: invalid event type")
	ErrInvalidSource     = errors.New("presence: invalid event source")
	ErrZeroTimestamp     = errors.New("presence: timestamp is required")
	ErrEventNotFound     = errors.New("presence: event not found")
	ErrDuplicateEventID  = errors.New("presence: duplicate event ID")
	ErrTrackingNotReady  = errors.New("presence: tracking not ready")
	ErrEvaluationInFlight = errors.New("presence: a transition is already being applied")
)

// EventID represents a unique identifier for a presence event.
type EventID string

// IsValid checks if the event ID is non-empty.
func (id EventID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// String returns the string representation of the EventID.
func (id EventID) String() string {
	return string(id)
}

// NewEventID generates a new random event ID.
func NewEventID() EventID {
	return EventID(uuid.NewString())
}

// EventType distinguishes an office entry from an office exit.
type EventType string

const (
	// EventEntry records the user crossing into the office geofence.
	EventEntry EventType = "entry"

	// EventExit records the user crossing out of the office geofence.
	EventExit EventType = "exit"
)

// IsValid checks if the event type is one of the known values.
func (t EventType) IsValid() bool {
	return t == EventEntry || t == EventExit
}

// Label returns the human-readable label used in notification text.
func (t EventType) Label() string {
	switch t {
	case EventEntry:
		return "Arrival"
	case EventExit:
		return "Departure"
	default:
		return "Unknown"
	}
}

// EventSource records how an event came to exist.
type EventSource string

const (
	// SourceGeofence marks events produced automatically by the gate.
	SourceGeofence EventSource = "geofence"

	// SourceManual marks events added or edited by the user.
	SourceManual EventSource = "manual"
)

// IsValid checks if the source is one of the known values.
func (s EventSource) IsValid() bool {
	return s == SourceGeofence || s == SourceManual
}

// Event represents a single boundary-crossing fact. Events are the single
// source of truth for the whole tracker: sessions, progress and audit views
// are all derived from the sorted event log.
type Event struct {
	// ID is the opaque unique identity. It never changes after creation.
	ID EventID `json:"id"`

	// Timestamp is when the crossing happened (or is claimed to have
	// happened, for manual corrections).
	Timestamp time.Time `json:"timestamp"`

	// Type is entry or exit.
	Type EventType `json:"type"`

	// Source is geofence or manual.
	Source EventSource `json:"source"`

	// ManualReason holds the user's reason when Source is manual.
	ManualReason string `json:"manual_reason,omitempty"`
}

// NewGeofenceEvent creates an automatic event produced by the transition gate.
func NewGeofenceEvent(eventType EventType, at time.Time) (Event, error) {
	if !eventType.IsValid() {
		return Event{}, ErrInvalidEventType
	}
	if at.IsZero() {
		return Event{}, ErrZeroTimestamp
	}
	return Event{
		ID:        NewEventID(),
		Timestamp: at,
		Type:      eventType,
		Source:    SourceGeofence,
	}, nil
}

// NewManualEvent creates a user-supplied correction event.
func NewManualEvent(eventType EventType, at time.Time, reason string) (Event, error) {
	if !eventType.IsValid() {
		return Event{}, ErrInvalidEventType
	}
	if at.IsZero() {
		return Event{}, ErrZeroTimestamp
	}
	return Event{
		ID:           NewEventID(),
		Timestamp:    at,
		Type:         eventType,
		Source:       SourceManual,
		ManualReason: strings.TrimSpace(reason),
	}, nil
}

// Validate checks the event invariants.
func (e Event) Validate() error {
	if !e.ID.IsValid() {
		return ErrInvalidEventID
	}
	if !e.Type.IsValid() {
		return ErrInvalidEventType
	}
	if !e.Source.IsValid() {
		return ErrInvalidSource
	}
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

// IsEntry reports whether the event is an entry.
func (e Event) IsEntry() bool {
	return e.Type == EventEntry
}

// Less orders events by (timestamp, id). The id tiebreak keeps the order
// deterministic when two events share a timestamp.
func (e Event) Less(other Event) bool {
	if e.Timestamp.Equal(other.Timestamp) {
		return e.ID < other.ID
	}
	return e.Timestamp.Before(other.Timestamp)
}

// SortEvents sorts a copy of the given events by (timestamp, id) ascending
// and returns it. The input slice is not modified.
func SortEvents(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	return sorted
}
