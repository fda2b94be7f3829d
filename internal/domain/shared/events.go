// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Presence events
	EventOfficeEntered   EventType = "presence.entered"
	EventOfficeExited    EventType = "presence.exited"
	EventSignalDebounced EventType = "presence.signal_debounced"

	// Correction events
	EventCorrectionAdded   EventType = "correction.added"
	EventCorrectionEdited  EventType = "correction.edited"
	EventCorrectionDeleted EventType = "correction.deleted"

	// Configuration events
	EventTargetsUpdated EventType = "config.targets_updated"
	EventOfficeUpdated  EventType = "config.office_updated"

	// Notification events
	EventNotificationProduced EventType = "notification.produced"
	EventNotificationFailed   EventType = "notification.failed"

	// System events
	EventSnapshotSaved    EventType = "system.snapshot_saved"
	EventSnapshotRestored EventType = "system.snapshot_restored"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventPublisher publishes domain events to interested subscribers.
// Implemented by the messaging event bus; kept here so the application layer
// depends only on the domain contract.
type EventPublisher interface {
	Publish(event Event) error
}

// EventHandler processes domain events delivered by the event bus.
type EventHandler interface {
	// Handle processes a single event. Returning an error marks the
	// delivery as failed; the bus logs it but does not retry.
	Handle(event Event) error

	// HandlerName identifies the handler in logs and metrics.
	HandlerName() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface with the base fields only.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":         string(e.Type),
		"timestamp":    e.Timestamp,
		"aggregate_id": e.AggregateId,
	}
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Presence Events
// ═══════════════════════════════════════════════════════════════════════════

// PresenceChangedEvent is emitted when the gate records a boundary crossing.
type PresenceChangedEvent struct {
	BaseEvent
	PresenceEventID  string    `json:"presence_event_id"`
	Inside           bool      `json:"inside"`
	At               time.Time `json:"at"`
	NotificationText string    `json:"notification_text,omitempty"`
}

// Payload implements Event interface.
func (e PresenceChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"presence_event_id": e.PresenceEventID,
		"inside":            e.Inside,
		"at":                e.At,
		"notification_text": e.NotificationText,
	}
}

// NewPresenceChangedEvent builds the event for an entry or exit.
func NewPresenceChangedEvent(presenceEventID string, inside bool, at time.Time, notificationText string) PresenceChangedEvent {
	eventType := EventOfficeExited
	if inside {
		eventType = EventOfficeEntered
	}
	return PresenceChangedEvent{
		BaseEvent:        NewBaseEvent(eventType, presenceEventID),
		PresenceEventID:  presenceEventID,
		Inside:           inside,
		At:               at,
		NotificationText: notificationText,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Correction Events
// ═══════════════════════════════════════════════════════════════════════════

// CorrectionAppliedEvent is emitted when a manual correction mutates the log.
type CorrectionAppliedEvent struct {
	BaseEvent
	Action          string `json:"action"` // add, edit, delete
	PresenceEventID string `json:"presence_event_id"`
	Reason          string `json:"reason"`
}

// Payload implements Event interface.
func (e CorrectionAppliedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"action":            e.Action,
		"presence_event_id": e.PresenceEventID,
		"reason":            e.Reason,
	}
}

// NewCorrectionAppliedEvent builds a correction event.
func NewCorrectionAppliedEvent(eventType EventType, action, presenceEventID, reason string) CorrectionAppliedEvent {
	return CorrectionAppliedEvent{
		BaseEvent:       NewBaseEvent(eventType, presenceEventID),
		Action:          action,
		PresenceEventID: presenceEventID,
		Reason:          reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Configuration Events
// ═══════════════════════════════════════════════════════════════════════════

// TargetsUpdatedEvent is emitted when the hour targets change.
type TargetsUpdatedEvent struct {
	BaseEvent
	DailyHours   int `json:"daily_hours"`
	WeeklyHours  int `json:"weekly_hours"`
	MonthlyHours int `json:"monthly_hours"`
}

// Payload implements Event interface.
func (e TargetsUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"daily_hours":   e.DailyHours,
		"weekly_hours":  e.WeeklyHours,
		"monthly_hours": e.MonthlyHours,
	}
}

// OfficeUpdatedEvent is emitted when the office location changes.
type OfficeUpdatedEvent struct {
	BaseEvent
	Office OfficeLocation `json:"office"`
}

// Payload implements Event interface.
func (e OfficeUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"office": e.Office,
	}
}
