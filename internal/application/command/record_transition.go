// Package command contains write operations (CQRS - Commands).
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
// RECORD TRANSITION COMMAND
// Feeds a raw inside/outside signal through the transition gate. This is the
// single entry point for geofence readings; everything downstream (sessions,
// progress, notifications) reacts to what the gate decides here.
// ══════════════════════════════════════════════════════════════════════════════

// RecordTransitionCommand contains one raw boundary signal.
type RecordTransitionCommand struct {
	// Inside is the raw reading: inside the office region or not.
	Inside bool

	// At is when the reading was taken (defaults to now if zero).
	At time.Time
}

// Validate validates the command and defaults the timestamp.
func (c *RecordTransitionCommand) Validate() error {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	return nil
}

// RecordTransitionResult contains the outcome of processing the signal.
type RecordTransitionResult struct {
	// Changed is false when the signal was debounced or tracking is not ready.
	Changed bool

	// EventID is the appended presence event id when Changed.
	EventID string

	// Inside is the presence state after the signal.
	Inside bool

	// NotificationText is the produced advisory text, empty unless produced.
	NotificationText string

	// RecordedAt is when the signal was processed.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordTransitionHandler handles the RecordTransitionCommand.
type RecordTransitionHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// checkpoint persists a snapshot after every applied signal.
	checkpoint bool
}

// NewRecordTransitionHandler creates the handler.
func NewRecordTransitionHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *RecordTransitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordTransitionHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle processes the signal.
// A concurrent evaluation still in flight surfaces presence.ErrEvaluationInFlight;
// callers should treat it as "try again", not as a failure.
func (h *RecordTransitionHandler) Handle(ctx context.Context, cmd RecordTransitionCommand) (*RecordTransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result, err := h.tracker.ApplySignal(presence.Signal{Inside: cmd.Inside, At: cmd.At})
	if err != nil {
		return nil, err
	}

	out := &RecordTransitionResult{
		Changed:          result.Changed,
		Inside:           result.Inside,
		NotificationText: result.NotificationText,
		RecordedAt:       time.Now(),
	}

	if !result.Changed {
		return out, nil
	}

	out.EventID = result.Event.ID.String()

	if h.checkpoint && h.snapshotRepo != nil {
		if saveErr := h.snapshotRepo.Save(ctx, h.tracker.Snapshot()); saveErr != nil {
			// In-memory state is already correct; the periodic checkpoint job
			// will converge the persisted copy.
			h.logger.Error("snapshot save failed after transition", "error", saveErr)
		}
	}

	if h.eventPublisher != nil {
		event := shared.NewPresenceChangedEvent(
			out.EventID,
			result.Inside,
			result.Event.Timestamp,
			result.NotificationText,
		)
		_ = h.eventPublisher.Publish(event)
	}

	return out, nil
}
