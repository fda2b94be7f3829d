package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE CORRECTION COMMAND
// Removes a presence event from the log. Unlike edit, deleting a missing
// event is not an error: the intent "this event should not exist" is already
// satisfied, and the attempt is still audited.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteCorrectionCommand removes one presence event.
type DeleteCorrectionCommand struct {
	// EventID identifies the event to delete.
	EventID string

	// Reason is the user's justification. Blank is allowed.
	Reason string
}

// Validate validates the command.
func (c *DeleteCorrectionCommand) Validate() error {
	if c.EventID == "" {
		return ErrMissingEventID
	}
	return nil
}

// DeleteCorrectionResult contains the outcome of the deletion.
type DeleteCorrectionResult struct {
	// Removed is false when the target event did not exist.
	Removed bool

	// AuditEntryID identifies the audit entry recorded for this attempt.
	AuditEntryID string

	// Reason is the normalized reason as stored.
	Reason string

	// Inside is the presence state after the log rebuild.
	Inside bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// DeleteCorrectionHandler handles the DeleteCorrectionCommand.
type DeleteCorrectionHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	checkpoint     bool
}

// NewDeleteCorrectionHandler creates the handler.
func NewDeleteCorrectionHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *DeleteCorrectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteCorrectionHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle applies the deletion.
func (h *DeleteCorrectionHandler) Handle(ctx context.Context, cmd DeleteCorrectionCommand) (*DeleteCorrectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	entry, removed, err := h.tracker.DeleteEvent(presence.EventID(cmd.EventID), cmd.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	checkpointAndPublish(ctx, h.tracker, h.snapshotRepo, h.checkpoint, h.logger,
		h.eventPublisher,
		shared.NewCorrectionAppliedEvent(shared.EventCorrectionDeleted, "delete", cmd.EventID, entry.Reason),
	)

	return &DeleteCorrectionResult{
		Removed:      removed,
		AuditEntryID: entry.ID,
		Reason:       entry.Reason,
		Inside:       h.tracker.Inside(),
	}, nil
}
