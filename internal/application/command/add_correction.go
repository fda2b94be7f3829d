package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// Command validation errors.
var (
	ErrInvalidEventType = errors.New("command: event type must be entry or exit")
	ErrMissingTimestamp = errors.New("command: timestamp is required")
	ErrMissingEventID   = errors.New("command: event id is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD CORRECTION COMMAND
// Manually inserts a presence event into the log. Corrections always produce
// an audit entry; a blank reason is recorded with a placeholder rather than
// being rejected.
// ══════════════════════════════════════════════════════════════════════════════

// AddCorrectionCommand inserts one manual presence event.
type AddCorrectionCommand struct {
	// Type is "entry" or "exit".
	Type presence.EventType

	// At is the event's own timestamp (when the crossing happened).
	At time.Time

	// Reason is the user's justification. Blank is allowed.
	Reason string
}

// Validate validates the command.
func (c *AddCorrectionCommand) Validate() error {
	if !c.Type.IsValid() {
		return ErrInvalidEventType
	}
	if c.At.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// AddCorrectionResult contains the created event and its audit record.
type AddCorrectionResult struct {
	// EventID is the new presence event's id.
	EventID string

	// AuditEntryID identifies the audit entry recorded for this correction.
	AuditEntryID string

	// Reason is the normalized reason as stored.
	Reason string

	// Inside is the presence state after the log rebuild.
	Inside bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddCorrectionHandler handles the AddCorrectionCommand.
type AddCorrectionHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	checkpoint     bool
}

// NewAddCorrectionHandler creates the handler.
func NewAddCorrectionHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *AddCorrectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddCorrectionHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle applies the correction.
func (h *AddCorrectionHandler) Handle(ctx context.Context, cmd AddCorrectionCommand) (*AddCorrectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	event, entry, err := h.tracker.AddEvent(cmd.Type, cmd.At, cmd.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	checkpointAndPublish(ctx, h.tracker, h.snapshotRepo, h.checkpoint, h.logger,
		h.eventPublisher,
		shared.NewCorrectionAppliedEvent(shared.EventCorrectionAdded, "add", event.ID.String(), entry.Reason),
	)

	return &AddCorrectionResult{
		EventID:      event.ID.String(),
		AuditEntryID: entry.ID,
		Reason:       entry.Reason,
		Inside:       h.tracker.Inside(),
	}, nil
}

// checkpointAndPublish is the shared tail of every correction handler:
// persist a snapshot (best effort) and publish the domain event.
func checkpointAndPublish(
	ctx context.Context,
	t *tracker.Tracker,
	repo tracker.SnapshotRepository,
	checkpoint bool,
	logger *slog.Logger,
	publisher shared.EventPublisher,
	event shared.Event,
) {
	if checkpoint && repo != nil {
		if err := repo.Save(ctx, t.Snapshot()); err != nil {
			logger.Error("snapshot save failed after correction", "error", err)
		}
	}
	if publisher != nil {
		_ = publisher.Publish(event)
	}
}
