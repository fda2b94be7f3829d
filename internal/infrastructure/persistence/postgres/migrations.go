// Package postgres implements the PostgreSQL persistence layer for the Office
// Presence Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PRESENCE SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create presence snapshots table
-- Version: 001

-- The authoritative presence state is one versioned JSON document per owner.
-- The singleton constraint keeps writers honest: there is exactly one state.
CREATE TABLE IF NOT EXISTS presence_snapshots (
    id SMALLINT PRIMARY KEY DEFAULT 1,
    version INTEGER NOT NULL,
    data JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT singleton CHECK (id = 1),
    CONSTRAINT valid_version CHECK (version >= 1)
);
`

const migration001Down = `
DROP TABLE IF EXISTS presence_snapshots;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE NOTIFICATION LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create notification delivery log
-- Version: 002

-- Durable record of produced notifications, independent of the snapshot's
-- in-memory ring. Useful for delivery audits and tuning the transition gate.
CREATE TABLE IF NOT EXISTS notification_log (
    id SERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    event_type VARCHAR(20) NOT NULL,
    delivered BOOLEAN NOT NULL DEFAULT FALSE,
    delivery_error TEXT,
    produced_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_event_type CHECK (event_type IN ('entry', 'exit'))
);

CREATE INDEX IF NOT EXISTS idx_notification_log_produced ON notification_log(produced_at DESC);
CREATE INDEX IF NOT EXISTS idx_notification_log_failed ON notification_log(created_at DESC) WHERE delivered = FALSE;
`

const migration002Down = `
DROP TABLE IF EXISTS notification_log;
`
