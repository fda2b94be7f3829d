package jobs

import (
	"context"
	"log/slog"

	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
	"github.com/presence-hub/office-presence-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT CHECKPOINT JOB
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotCheckpointJob periodically persists the current state snapshot.
// Mutations already checkpoint on write; this job caps the data loss window
// if one of those writes failed silently or the feature flag disabled them.
type SnapshotCheckpointJob struct {
	tracker *tracker.Tracker
	repo    tracker.SnapshotRepository
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewSnapshotCheckpointJob creates the job.
func NewSnapshotCheckpointJob(t *tracker.Tracker, repo tracker.SnapshotRepository, logger *slog.Logger) *SnapshotCheckpointJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotCheckpointJob{
		tracker: t,
		repo:    repo,
		retrier: retry.SnapshotRetrier(),
		logger:  logger,
	}
}

// Name implements scheduler.Job.
func (j *SnapshotCheckpointJob) Name() string {
	return "snapshot_checkpoint"
}

// Description implements scheduler.Job.
func (j *SnapshotCheckpointJob) Description() string {
	return "Persists the current presence state snapshot"
}

// Run implements scheduler.Job.
func (j *SnapshotCheckpointJob) Run(ctx context.Context) error {
	snapshot := j.tracker.Snapshot()

	err := j.retrier.Do(ctx, func(ctx context.Context) error {
		if saveErr := j.repo.Save(ctx, snapshot); saveErr != nil {
			return retry.Retryable(saveErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	j.logger.Debug("snapshot checkpoint saved",
		"events", len(snapshot.Events),
		"audit_entries", len(snapshot.AuditLog),
	)
	return nil
}
