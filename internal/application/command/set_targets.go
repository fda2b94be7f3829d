package command

import (
	"context"
	"log/slog"

	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET TARGETS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SetTargetsCommand replaces the configured hour targets.
type SetTargetsCommand struct {
	// DailyHours target; zero disables the daily goal.
	DailyHours int

	// WeeklyHours target; zero disables the weekly goal.
	WeeklyHours int

	// MonthlyHours target; zero disables the monthly goal.
	MonthlyHours int
}

// Validate validates the command. Range checks live on the domain policy.
func (c *SetTargetsCommand) Validate() error {
	return c.policy().Validate()
}

func (c *SetTargetsCommand) policy() progress.TargetPolicy {
	return progress.TargetPolicy{
		DailyHours:   c.DailyHours,
		WeeklyHours:  c.WeeklyHours,
		MonthlyHours: c.MonthlyHours,
	}
}

// SetTargetsResult contains the stored policy.
type SetTargetsResult struct {
	Policy progress.TargetPolicy
}

// SetTargetsHandler handles the SetTargetsCommand.
type SetTargetsHandler struct {
	tracker        *tracker.Tracker
	snapshotRepo   tracker.SnapshotRepository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
	checkpoint     bool
}

// NewSetTargetsHandler creates the handler.
func NewSetTargetsHandler(
	t *tracker.Tracker,
	snapshotRepo tracker.SnapshotRepository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	checkpoint bool,
) *SetTargetsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SetTargetsHandler{
		tracker:        t,
		snapshotRepo:   snapshotRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		checkpoint:     checkpoint,
	}
}

// Handle stores the new policy.
func (h *SetTargetsHandler) Handle(ctx context.Context, cmd SetTargetsCommand) (*SetTargetsResult, error) {
	policy := cmd.policy()
	if err := h.tracker.SetTargets(policy); err != nil {
		return nil, err
	}

	checkpointAndPublish(ctx, h.tracker, h.snapshotRepo, h.checkpoint, h.logger,
		h.eventPublisher,
		shared.TargetsUpdatedEvent{
			BaseEvent:    shared.NewBaseEvent(shared.EventTargetsUpdated, "targets"),
			DailyHours:   policy.DailyHours,
			WeeklyHours:  policy.WeeklyHours,
			MonthlyHours: policy.MonthlyHours,
		},
	)

	return &SetTargetsResult{Policy: policy}, nil
}
