package tracker

import "context"

// SnapshotRepository defines the persistence contract for the tracker
// snapshot. Implemented by the infrastructure layer; the domain has no
// knowledge of the storage mechanism.
type SnapshotRepository interface {
	// Save atomically persists the snapshot. A subsequent Load must never
	// observe a partial or corrupt record.
	Save(ctx context.Context, snapshot Snapshot) error

	// Load returns the last saved snapshot. An absent snapshot returns
	// shared.ErrSnapshotMissing; a malformed one returns the default
	// snapshot plus shared.ErrSnapshotMalformed. Neither is fatal.
	Load(ctx context.Context) (Snapshot, error)
}
