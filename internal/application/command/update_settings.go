package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// Settings validation errors.
var (
	// ErrNoSettingsProvided means the command carried nothing to change.
	ErrNoSettingsProvided = errors.New("command: no settings provided")

	// ErrInvalidPermissionState means an unknown permission level was given.
	ErrInvalidPermissionState = errors.New("command: invalid permission state")
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SETTINGS COMMAND
// Applies any subset of the user-facing settings: platform permission states,
// the notification toggle, permission-prompt deferrals and the onboarding
// marker. Nil fields are left untouched.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSettingsCommand carries optional settings updates.
type UpdateSettingsCommand struct {
	// LocationPermission is the platform location permission state.
	LocationPermission *shared.PermissionState

	// NotificationPermission is the platform notification permission state.
	NotificationPermission *shared.PermissionState

	// NotificationsEnabled toggles advisory notifications.
	NotificationsEnabled *bool

	// DeferLocationPrompt marks the location permission prompt as deferred.
	DeferLocationPrompt *bool

	// DeferNotificationPrompt marks the notification prompt as deferred.
	DeferNotificationPrompt *bool

	// OnboardingShown marks the onboarding flow as seen.
	OnboardingShown *bool
}

// Validate validates the command.
func (c *UpdateSettingsCommand) Validate() error {
	if c.LocationPermission == nil && c.NotificationPermission == nil &&
		c.NotificationsEnabled == nil && c.DeferLocationPrompt == nil &&
		c.DeferNotificationPrompt == nil && c.OnboardingShown == nil {
		return ErrNoSettingsProvided
	}
	if c.LocationPermission != nil && !c.LocationPermission.IsValid() {
		return ErrInvalidPermissionState
	}
	if c.NotificationPermission != nil && !c.NotificationPermission.IsValid() {
		return ErrInvalidPermissionState
	}
	return nil
}

// UpdateSettingsResult reflects the state after the update.
type UpdateSettingsResult struct {
	// TrackingReady reports whether tracking is fully configured.
	TrackingReady bool

	// OnboardingShown is the stored onboarding marker.
	OnboardingShown bool
}

// UpdateSettingsHandler handles the UpdateSettingsCommand.
type UpdateSettingsHandler struct {
	tracker      *tracker.Tracker
	snapshotRepo tracker.SnapshotRepository
	logger       *slog.Logger
	checkpoint   bool
}

// NewUpdateSettingsHandler creates the handler.
func NewUpdateSettingsHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	logger *slog.Logger,
	checkpoint bool,
) *UpdateSettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateSettingsHandler{
		tracker:      t,
		snapshotRepo: snapshotRepo,
		logger:       logger,
		checkpoint:   checkpoint,
	}
}

// Handle applies the provided settings.
func (h *UpdateSettingsHandler) Handle(ctx context.Context, cmd UpdateSettingsCommand) (*UpdateSettingsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.LocationPermission != nil {
		if err := h.tracker.SetLocationPermission(*cmd.LocationPermission); err != nil {
			return nil, err
		}
	}
	if cmd.NotificationPermission != nil {
		if err := h.tracker.SetNotificationPermission(*cmd.NotificationPermission); err != nil {
			return nil, err
		}
	}
	if cmd.NotificationsEnabled != nil {
		h.tracker.SetNotificationsEnabled(*cmd.NotificationsEnabled)
	}
	if cmd.DeferLocationPrompt != nil || cmd.DeferNotificationPrompt != nil {
		// Deferrals are stored as a pair; preserve whichever half was omitted.
		current := h.tracker.Snapshot()
		location := current.LocationDeferred
		notification := current.NotificationDeferred
		if cmd.DeferLocationPrompt != nil {
			location = *cmd.DeferLocationPrompt
		}
		if cmd.DeferNotificationPrompt != nil {
			notification = *cmd.DeferNotificationPrompt
		}
		h.tracker.SetPermissionDeferrals(location, notification)
	}
	if cmd.OnboardingShown != nil {
		h.tracker.SetOnboardingShown(*cmd.OnboardingShown)
	}

	if h.checkpoint && h.snapshotRepo != nil {
		if err := h.snapshotRepo.Save(ctx, h.tracker.Snapshot()); err != nil {
			h.logger.Error("snapshot save failed after settings update", "error", err)
		}
	}

	return &UpdateSettingsResult{
		TrackingReady:   h.tracker.TrackingReady(),
		OnboardingShown: h.tracker.OnboardingShown(),
	}, nil
}
