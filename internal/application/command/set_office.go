package command

import (
	"context"
	"log/slog"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET OFFICE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SetOfficeCommand configures the geofenced office location.
type SetOfficeCommand struct {
	// Name is the human-readable office name.
	Name string

	// Latitude of the geofence center, in degrees.
	Latitude float64

	// Longitude of the geofence center, in degrees.
	Longitude float64

	// RadiusMeters is the geofence radius.
	RadiusMeters float64
}

// Validate validates the command via the domain value object.
func (c *SetOfficeCommand) Validate() error {
	return c.office().Validate()
}

func (c *SetOfficeCommand) office() shared.OfficeLocation {
	return shared.OfficeLocation{
		Name:         c.Name,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		RadiusMeters: c.RadiusMeters,
	}
}

// SetOfficeResult contains the stored office and readiness after the change.
type SetOfficeResult struct {
	Office shared.OfficeLocation

	// TrackingReady reports whether tracking is now fully configured.
	TrackingReady bool
}

// SetOfficeHandler handles the SetOfficeCommand.
type SetOfficeHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	checkpoint     bool
}

// NewSetOfficeHandler creates the handler.
func NewSetOfficeHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *SetOfficeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetOfficeHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle stores the new office location.
func (h *SetOfficeHandler) Handle(ctx context.Context, cmd SetOfficeCommand) (*SetOfficeResult, error) {
	office := cmd.office()
	if err := h.tracker.SetOffice(office); err != nil {
		return nil, err
	}

	checkpointAndPublish(ctx, h.tracker, h.snapshotRepo, h.checkpoint, h.logger,
		h.eventPublisher,
		shared.OfficeUpdatedEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventOfficeUpdated, "office"),
			Office:    office,
		},
	)

	return &SetOfficeResult{
		Office:        h.tracker.Office(),
		TrackingReady: h.tracker.TrackingReady(),
	}, nil
}
