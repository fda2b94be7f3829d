// Package tracker contains the state orchestrator: the single owner of the
// canonical presence event log and every piece of state derived from it.
// All mutations are serialized through this aggregate so a session rebuild
// always observes a fully-updated log, never a partial one.
package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/session"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

// MaxNotificationLog bounds the kept notification-text history.
const MaxNotificationLog = 200

// Tracker owns the authoritative event log, the current inside-office state,
// the target policy, the office location, and the audit and notification
// logs. Derived sessions are rebuilt from the log after every mutation.
type Tracker struct {
	mu sync.RWMutex

	// Authoritative state
	events               []presence.Event
	state                presence.State
	policy               progress.TargetPolicy
	office               shared.OfficeLocation
	auditLog             []audit.Entry
	notificationLog      []string
	locationPermission   shared.PermissionState
	notificationPerm     shared.PermissionState
	locationDeferred     bool
	notificationDeferred bool
	notificationsEnabled bool
	onboardingShown      bool
	recoveryMessage      string

	// Derived state, replaced wholesale on every log mutation.
	sessions []session.AttendanceSession

	// Collaborators
	gate *presence.Gate

	// applying is the best-effort re-entrancy guard: a geofence evaluation
	// cannot start while a prior transition is still being applied.
	applying atomic.Bool
}

// New creates an empty tracker. Notification times are rendered in the given
// location.
func New(location *time.Location) *Tracker {
	return &Tracker{
		state:              presence.StateOutside,
		locationPermission: shared.PermissionNotDetermined,
		notificationPerm:   shared.PermissionNotDetermined,
		gate:               presence.NewGate(location),
		sessions:           []session.AttendanceSession{},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDICATES AND READS
// ══════════════════════════════════════════════════════════════════════════════

// TrackingReady reports whether geofence transitions can be evaluated:
// background location permission granted and an office configured.
func (t *Tracker) TrackingReady() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trackingReadyLocked()
}

func (t *Tracker) trackingReadyLocked() bool {
	return t.locationPermission.IsElevated() && t.office.IsConfigured()
}

// Inside reports whether the tracker currently believes it is in the office.
func (t *Tracker) Inside() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Inside()
}

// Events returns a copy of the event log, sorted by (timestamp, id).
func (t *Tracker) Events() []presence.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	events := make([]presence.Event, len(t.events))
	copy(events, t.events)
	return events
}

// Sessions returns a copy of the derived closed sessions.
func (t *Tracker) Sessions() []session.AttendanceSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sessions := make([]session.AttendanceSession, len(t.sessions))
	copy(sessions, t.sessions)
	return sessions
}

// SessionsWithLive returns the derived sessions plus the synthetic live
// session when currently inside and now is after the open entry.
func (t *Tracker) SessionsWithLive(now time.Time) []session.AttendanceSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return session.WithLive(t.sessions, t.events, t.state.Inside(), now)
}

// LiveElapsed returns the elapsed duration of the open session, if one exists.
func (t *Tracker) LiveElapsed(now time.Time) (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.state.Inside() {
		return 0, false
	}
	open, ok := session.OpenEntry(t.events)
	if !ok || !now.After(open.Timestamp) {
		return 0, false
	}
	return now.Sub(open.Timestamp), true
}

// AuditLog returns a copy of the audit trail, newest first.
func (t *Tracker) AuditLog() []audit.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries := make([]audit.Entry, len(t.auditLog))
	copy(entries, t.auditLog)
	return entries
}

// Notifications returns a copy of the produced notification texts, newest first.
func (t *Tracker) Notifications() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	texts := make([]string, len(t.notificationLog))
	copy(texts, t.notificationLog)
	return texts
}

// Policy returns the current target policy.
func (t *Tracker) Policy() progress.TargetPolicy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy
}

// Office returns the configured office location, if any.
func (t *Tracker) Office() shared.OfficeLocation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.office
}

// OnboardingShown reports whether the onboarding flow was completed.
func (t *Tracker) OnboardingShown() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onboardingShown
}

// RecoveryMessage returns the free-text validation message from the last
// snapshot restore.
func (t *Tracker) RecoveryMessage() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recoveryMessage
}

// ══════════════════════════════════════════════════════════════════════════════
// GEOFENCE TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// SignalResult reports what applying a raw signal did.
type SignalResult struct {
	// Changed is false when the signal was debounced or tracking not ready.
	Changed bool

	// Event is the appended presence event when Changed.
	Event presence.Event

	// Inside is the state after the signal.
	Inside bool

	// NotificationText is the advisory text, empty unless produced.
	NotificationText string
}

// ApplySignal evaluates a raw inside/outside signal through the transition
// gate and, when it represents an actual change, appends the event, flips the
// state, records any notification text and rebuilds sessions.
//
// A concurrent evaluation still being applied makes this call return
// presence.ErrEvaluationInFlight; rapid duplicate raw signals therefore
// cannot produce duplicate events.
func (t *Tracker) ApplySignal(signal presence.Signal) (SignalResult, error) {
	if !t.applying.CompareAndSwap(false, true) {
		return SignalResult{}, presence.ErrEvaluationInFlight
	}
	defer t.applying.Store(false)

	t.mu.Lock()
	defer t.mu.Unlock()

	decision, err := t.gate.Evaluate(
		signal,
		t.state,
		t.trackingReadyLocked(),
		t.notificationsEnabled,
		t.notificationPerm,
	)
	if err != nil {
		return SignalResult{}, err
	}
	if !decision.Changed {
		return SignalResult{Inside: t.state.Inside()}, nil
	}

	t.events = append(t.events, decision.Event)
	t.state = decision.NextState
	if decision.NotificationText != "" {
		t.notificationLog = prependBounded(t.notificationLog, decision.NotificationText, MaxNotificationLog)
	}
	t.rebuildLocked()

	return SignalResult{
		Changed:          true,
		Event:            decision.Event,
		Inside:           decision.NextState.Inside(),
		NotificationText: decision.NotificationText,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CORRECTIONS
// ══════════════════════════════════════════════════════════════════════════════

// AddEvent appends a manual event and audits the addition. Always succeeds
// for valid input.
func (t *Tracker) AddEvent(eventType presence.EventType, at time.Time, reason string, now time.Time) (presence.Event, audit.Entry, error) {
	event, err := presence.NewManualEvent(eventType, at, reason)
	if err != nil {
		return presence.Event{}, audit.Entry{}, err
	}
	entry, err := audit.NewEntry(audit.ActionAdd, event.ID.String(), reason, now)
	if err != nil {
		return presence.Event{}, audit.Entry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	t.auditLog = audit.Prepend(t.auditLog, entry)
	t.rebuildLocked()
	return event, entry, nil
}

// EditEvent replaces an existing event's type and timestamp, forcing the
// source to manual, and audits the edit against the original id. A missing
// id is a no-op: the log stays untouched and no audit entry is emitted.
func (t *Tracker) EditEvent(id presence.EventID, newType presence.EventType, newTimestamp time.Time, reason string, now time.Time) (presence.Event, audit.Entry, error) {
	if !newType.IsValid() {
		return presence.Event{}, audit.Entry{}, presence.ErrInvalidEventType
	}
	if newTimestamp.IsZero() {
		return presence.Event{}, audit.Entry{}, presence.ErrZeroTimestamp
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	index := t.indexOfLocked(id)
	if index < 0 {
		return presence.Event{}, audit.Entry{}, presence.ErrEventNotFound
	}
	entry, err := audit.NewEntry(audit.ActionEdit, id.String(), reason, now)
	if err != nil {
		return presence.Event{}, audit.Entry{}, err
	}

	updated := t.events[index]
	updated.Type = newType
	updated.Timestamp = newTimestamp
	updated.Source = presence.SourceManual
	updated.ManualReason = audit.NormalizeReason(reason)
	t.events[index] = updated
	t.auditLog = audit.Prepend(t.auditLog, entry)
	t.rebuildLocked()
	return updated, entry, nil
}

// DeleteEvent removes the event with the given id, if present, and ALWAYS
// audits the deletion - even when the id did not exist.
func (t *Tracker) DeleteEvent(id presence.EventID, reason string, now time.Time) (audit.Entry, bool, error) {
	entry, err := audit.NewEntry(audit.ActionDelete, id.String(), reason, now)
	if err != nil {
		return audit.Entry{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := false
	if index := t.indexOfLocked(id); index >= 0 {
		t.events = append(t.events[:index], t.events[index+1:]...)
		removed = true
	}
	t.auditLog = audit.Prepend(t.auditLog, entry)
	if removed {
		t.rebuildLocked()
	}
	return entry, removed, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// SetTargets replaces the target policy after validation.
func (t *Tracker) SetTargets(policy progress.TargetPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.policy = policy
	return nil
}

// SetOffice replaces the office location after bounds validation.
func (t *Tracker) SetOffice(office shared.OfficeLocation) error {
	if err := office.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.office = office
	return nil
}

// SetLocationPermission records the platform location permission state.
func (t *Tracker) SetLocationPermission(state shared.PermissionState) error {
	if !state.IsValid() {
		return shared.NewDomainError("tracker", "SetLocationPermission", shared.ErrInvalidInput, string(state))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locationPermission = state
	return nil
}

// SetNotificationPermission records the platform notification permission state.
func (t *Tracker) SetNotificationPermission(state shared.PermissionState) error {
	if !state.IsValid() {
		return shared.NewDomainError("tracker", "SetNotificationPermission", shared.ErrInvalidInput, string(state))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationPerm = state
	return nil
}

// SetNotificationsEnabled toggles notification text production.
func (t *Tracker) SetNotificationsEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationsEnabled = enabled
}

// SetPermissionDeferrals records that the user postponed permission prompts.
func (t *Tracker) SetPermissionDeferrals(location, notification bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locationDeferred = location
	t.notificationDeferred = notification
}

// SetOnboardingShown marks the onboarding flow as completed.
func (t *Tracker) SetOnboardingShown(shown bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onboardingShown = shown
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNALS
// ══════════════════════════════════════════════════════════════════════════════

// rebuildLocked re-sorts the log and replaces the derived session set.
// Callers must hold the write lock.
func (t *Tracker) rebuildLocked() {
	t.events = presence.SortEvents(t.events)
	t.sessions = session.Build(t.events)
}

// indexOfLocked finds an event by id. Callers must hold the lock.
func (t *Tracker) indexOfLocked(id presence.EventID) int {
	for i, event := range t.events {
		if event.ID == id {
			return i
		}
	}
	return -1
}

// prependBounded puts value at the front and trims the slice to max entries.
func prependBounded(log []string, value string, max int) []string {
	updated := make([]string, 0, len(log)+1)
	updated = append(updated, value)
	updated = append(updated, log...)
	if len(updated) > max {
		updated = updated[:max]
	}
	return updated
}
