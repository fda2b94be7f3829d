package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// SnapshotRepository implements tracker.SnapshotRepository for PostgreSQL.
// The whole presence state is one JSON document in a singleton row, written
// atomically so a crash mid-save never leaves a torn snapshot behind.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// Save persists the snapshot, replacing any previous one.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot tracker.Snapshot) error {
	data, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO presence_snapshots (id, version, data, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version,
		    data = EXCLUDED.data,
		    updated_at = EXCLUDED.updated_at
	`

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, snapshot.Version, data, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to upsert snapshot: %w", err)
		}
		return nil
	})
}

// Load reads the persisted snapshot.
// A missing row yields defaults with shared.ErrSnapshotMissing; malformed
// payloads yield defaults with shared.ErrSnapshotMalformed. Neither is fatal:
// callers start from the returned defaults either way.
func (r *SnapshotRepository) Load(ctx context.Context) (tracker.Snapshot, error) {
	var data []byte
	err := r.conn.QueryRow(ctx, `SELECT data FROM presence_snapshots WHERE id = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tracker.DefaultSnapshot(), shared.ErrSnapshotMissing
		}
		return tracker.DefaultSnapshot(), fmt.Errorf("failed to load snapshot: %w", err)
	}

	return tracker.DecodeSnapshot(data)
}
