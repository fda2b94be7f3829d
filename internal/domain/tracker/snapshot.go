package tracker

import (
	"encoding/json"
	"fmt"

	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

// SnapshotVersion is the current snapshot schema version. Older snapshots
// decode with missing fields defaulting to their zero values; newer versions
// are refused.
const SnapshotVersion = 1

// Snapshot is the single versioned record that captures the full persisted
// state of the tracker. Sessions are deliberately absent: they are derived
// and rebuilt on restore.
type Snapshot struct {
	Version int `json:"version"`

	LocationPermission     shared.PermissionState `json:"location_permission"`
	NotificationPermission shared.PermissionState `json:"notification_permission"`
	LocationDeferred       bool                   `json:"location_deferred"`
	NotificationDeferred   bool                   `json:"notification_deferred"`
	NotificationsEnabled   bool                   `json:"notifications_enabled"`

	Office  *shared.OfficeLocation `json:"office,omitempty"`
	Targets progress.TargetPolicy  `json:"targets"`

	Events          []presence.Event `json:"events"`
	AuditLog        []audit.Entry    `json:"audit_log"`
	NotificationLog []string         `json:"notification_log"`

	RecoveryMessage string `json:"recovery_message,omitempty"`
	OnboardingShown bool   `json:"onboarding_shown"`
	InsideOffice    bool   `json:"inside_office"`
}

// DefaultSnapshot returns the state a fresh install starts from and the
// fallback for absent or malformed persisted snapshots.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Version:                SnapshotVersion,
		LocationPermission:     shared.PermissionNotDetermined,
		NotificationPermission: shared.PermissionNotDetermined,
		Events:                 []presence.Event{},
		AuditLog:               []audit.Entry{},
		NotificationLog:        []string{},
	}
}

// Encode serializes the snapshot to JSON.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a persisted snapshot. A parse failure or an unknown
// future version returns the default snapshot together with a wrapped
// shared.ErrSnapshotMalformed - callers fall back, they never crash.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return DefaultSnapshot(), shared.ErrSnapshotMissing
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return DefaultSnapshot(), fmt.Errorf("%w: %v", shared.ErrSnapshotMalformed, err)
	}
	if snapshot.Version > SnapshotVersion {
		return DefaultSnapshot(), fmt.Errorf("%w: unsupported version %d", shared.ErrSnapshotMalformed, snapshot.Version)
	}

	// Forward-compatible defaults for fields missing from older snapshots.
	if snapshot.LocationPermission == "" {
		snapshot.LocationPermission = shared.PermissionNotDetermined
	}
	if snapshot.NotificationPermission == "" {
		snapshot.NotificationPermission = shared.PermissionNotDetermined
	}
	if snapshot.Events == nil {
		snapshot.Events = []presence.Event{}
	}
	if snapshot.AuditLog == nil {
		snapshot.AuditLog = []audit.Entry{}
	}
	if snapshot.NotificationLog == nil {
		snapshot.NotificationLog = []string{}
	}
	return snapshot, nil
}

// Snapshot captures the current tracker state as one consistent record.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	events := make([]presence.Event, len(t.events))
	copy(events, t.events)
	auditLog := make([]audit.Entry, len(t.auditLog))
	copy(auditLog, t.auditLog)
	notifications := make([]string, len(t.notificationLog))
	copy(notifications, t.notificationLog)

	snapshot := Snapshot{
		Version:                SnapshotVersion,
		LocationPermission:     t.locationPermission,
		NotificationPermission: t.notificationPerm,
		LocationDeferred:       t.locationDeferred,
		NotificationDeferred:   t.notificationDeferred,
		NotificationsEnabled:   t.notificationsEnabled,
		Targets:                t.policy,
		Events:                 events,
		AuditLog:               auditLog,
		NotificationLog:        notifications,
		RecoveryMessage:        t.recoveryMessage,
		OnboardingShown:        t.onboardingShown,
		InsideOffice:           t.state.Inside(),
	}
	if t.office.IsConfigured() {
		office := t.office
		snapshot.Office = &office
	}
	return snapshot
}

// Restore replaces the tracker state from a snapshot and rebuilds the
// derived sessions. Invalid embedded values are dropped to their defaults
// and noted in the recovery message rather than failing the restore.
func (t *Tracker) Restore(snapshot Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recovery := snapshot.RecoveryMessage

	t.locationPermission = snapshot.LocationPermission
	if !t.locationPermission.IsValid() {
		t.locationPermission = shared.PermissionNotDetermined
		recovery = appendRecovery(recovery, "location permission reset")
	}
	t.notificationPerm = snapshot.NotificationPermission
	if !t.notificationPerm.IsValid() {
		t.notificationPerm = shared.PermissionNotDetermined
		recovery = appendRecovery(recovery, "notification permission reset")
	}

	t.locationDeferred = snapshot.LocationDeferred
	t.notificationDeferred = snapshot.NotificationDeferred
	t.notificationsEnabled = snapshot.NotificationsEnabled
	t.onboardingShown = snapshot.OnboardingShown

	t.office = shared.OfficeLocation{}
	if snapshot.Office != nil {
		if err := snapshot.Office.Validate(); err == nil {
			t.office = *snapshot.Office
		} else {
			recovery = appendRecovery(recovery, "office location dropped")
		}
	}

	t.policy = snapshot.Targets
	if err := t.policy.Validate(); err != nil {
		t.policy = progress.TargetPolicy{}
		recovery = appendRecovery(recovery, "target policy reset")
	}

	events := make([]presence.Event, 0, len(snapshot.Events))
	dropped := 0
	for _, event := range snapshot.Events {
		if err := event.Validate(); err != nil {
			dropped++
			continue
		}
		events = append(events, event)
	}
	if dropped > 0 {
		recovery = appendRecovery(recovery, fmt.Sprintf("%d invalid events dropped", dropped))
	}
	t.events = events

	t.auditLog = make([]audit.Entry, len(snapshot.AuditLog))
	copy(t.auditLog, snapshot.AuditLog)
	t.notificationLog = make([]string, len(snapshot.NotificationLog))
	copy(t.notificationLog, snapshot.NotificationLog)

	t.state = presence.StateFromInside(snapshot.InsideOffice)
	t.recoveryMessage = recovery
	t.rebuildLocked()
}

// appendRecovery joins recovery notes into one free-text message.
func appendRecovery(message, note string) string {
	if message == "" {
		return note
	}
	return message + "; " + note
}
