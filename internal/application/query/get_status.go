// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/session"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
	"github.com/presence-hub/office-presence-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATUS QUERY
// The single "where am I and is tracking working" read. Everything a status
// surface needs comes from here: presence, readiness, the live session, and
// any pending recovery notice from startup.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatusQuery contains the status read parameters.
type GetStatusQuery struct {
	// At is the reference instant for the live session (defaults to now).
	At time.Time
}

// Validate validates the query and defaults the instant.
func (q *GetStatusQuery) Validate() error {
	if q.At.IsZero() {
		q.At = time.Now()
	}
	return nil
}

// StatusView is the status read model.
type StatusView struct {
	// Inside reports current presence.
	Inside bool `json:"inside"`

	// TrackingReady reports whether office + permissions are configured.
	TrackingReady bool `json:"tracking_ready"`

	// LiveSession describes the open session, nil when outside.
	LiveSession *LiveSessionView `json:"live_session,omitempty"`

	// Office is the configured geofence (zero value when unset).
	Office shared.OfficeLocation `json:"office"`

	// OfficeConfigured reports whether an office has been set.
	OfficeConfigured bool `json:"office_configured"`

	// LocationPermission is the stored platform location permission.
	LocationPermission shared.PermissionState `json:"location_permission"`

	// NotificationPermission is the stored notification permission.
	NotificationPermission shared.PermissionState `json:"notification_permission"`

	// NotificationsEnabled is the advisory notification toggle.
	NotificationsEnabled bool `json:"notifications_enabled"`

	// OnboardingShown marks whether onboarding has been completed.
	OnboardingShown bool `json:"onboarding_shown"`

	// RecoveryMessage is the startup restore notice, empty when clean.
	RecoveryMessage string `json:"recovery_message,omitempty"`
}

// LiveSessionView describes the currently open session.
type LiveSessionView struct {
	// Since is the opening entry timestamp.
	Since time.Time `json:"since"`

	// ElapsedMinutes is the whole minutes since the opening entry.
	ElapsedMinutes int `json:"elapsed_minutes"`

	// Elapsed is the human-readable elapsed string, e.g. "2h 05m".
	Elapsed string `json:"elapsed"`
}

// GetStatusHandler handles the GetStatusQuery.
type GetStatusHandler struct {
	tracker *tracker.Tracker
}

// NewGetStatusHandler creates the handler.
func NewGetStatusHandler(t *tracker.Tracker) *GetStatusHandler {
	return &GetStatusHandler{tracker: t}
}

// Handle builds the status view.
func (h *GetStatusHandler) Handle(ctx context.Context, q GetStatusQuery) (*StatusView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	snapshot := h.tracker.Snapshot()
	office := h.tracker.Office()

	view := &StatusView{
		Inside:                 h.tracker.Inside(),
		TrackingReady:          h.tracker.TrackingReady(),
		Office:                 office,
		OfficeConfigured:       office.IsConfigured(),
		LocationPermission:     snapshot.LocationPermission,
		NotificationPermission: snapshot.NotificationPermission,
		NotificationsEnabled:   snapshot.NotificationsEnabled,
		OnboardingShown:        h.tracker.OnboardingShown(),
		RecoveryMessage:        h.tracker.RecoveryMessage(),
	}

	if elapsed, ok := h.tracker.LiveElapsed(q.At); ok {
		live := &LiveSessionView{
			ElapsedMinutes: int(elapsed / time.Minute),
			Elapsed:        timeutil.FormatElapsed(elapsed),
		}
		if open, found := session.OpenEntry(h.tracker.Events()); found {
			live.Since = open.Timestamp
		}
		view.LiveSession = live
	}

	return view, nil
}
