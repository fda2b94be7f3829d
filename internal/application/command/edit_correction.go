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
// EDIT CORRECTION COMMAND
// Rewrites the type and timestamp of an existing presence event. Editing a
// missing event is an error and leaves no audit trace; nothing changed.
// ══════════════════════════════════════════════════════════════════════════════

// EditCorrectionCommand rewrites one presence event.
type EditCorrectionCommand struct {
	// EventID identifies the event to edit.
	EventID string

	// Type is the new event type, "entry" or "exit".
	Type presence.EventType

	// At is the new event timestamp.
	At time.Time

	// Reason is the user's justification. Blank is allowed.
	Reason string
}

// Validate validates the command.
func (c *EditCorrectionCommand) Validate() error {
	if c.EventID == "" {
		return ErrMissingEventID
	}
	if !c.Type.IsValid() {
		return ErrInvalidEventType
	}
	if c.At.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// EditCorrectionResult contains the edited event and its audit record.
type EditCorrectionResult struct {
	// EventID is the edited presence event's id (unchanged by the edit).
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

// EditCorrectionHandler handles the EditCorrectionCommand.
type EditCorrectionHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	checkpoint     bool
}

// NewEditCorrectionHandler creates the handler.
func NewEditCorrectionHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *EditCorrectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditCorrectionHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle applies the edit.
// Returns presence.ErrEventNotFound when the target event does not exist.
func (h *EditCorrectionHandler) Handle(ctx context.Context, cmd EditCorrectionCommand) (*EditCorrectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	event, entry, err := h.tracker.EditEvent(presence.EventID(cmd.EventID), cmd.Type, cmd.At, cmd.Reason, time.Now())
	if err != nil {
		return nil, err
	}

	checkpointAndPublish(ctx, h.tracker, h.snapshotRepo, h.checkpoint, h.logger,
		h.eventPublisher,
		shared.NewCorrectionAppliedEvent(shared.EventCorrectionEdited, "edit", event.ID.String(), entry.Reason),
	)

	return &EditCorrectionResult{
		EventID:      event.ID.String(),
		AuditEntryID: entry.ID,
		Reason:       entry.Reason,
		Inside:       h.tracker.Inside(),
	}, nil
}
