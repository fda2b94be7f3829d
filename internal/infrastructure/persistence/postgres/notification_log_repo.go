package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
)

// NotificationRecord is one row of the durable notification log.
type NotificationRecord struct {
	ID            int64
	Text          string
	EventType     presence.EventType
	Delivered     bool
	DeliveryError string
	ProducedAt    time.Time
}

// NotificationLogRepository persists produced notifications outside the
// snapshot, so delivery history survives snapshot log truncation.
type NotificationLogRepository struct {
	conn *Connection
}

// NewNotificationLogRepository creates a new NotificationLogRepository.
func NewNotificationLogRepository(conn *Connection) *NotificationLogRepository {
	return &NotificationLogRepository{conn: conn}
}

// Record inserts a notification outcome.
func (r *NotificationLogRepository) Record(ctx context.Context, record NotificationRecord) error {
	query := `
		INSERT INTO notification_log (text, event_type, delivered, delivery_error, produced_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`

	_, err := r.conn.Exec(ctx, query,
		record.Text,
		string(record.EventType),
		record.Delivered,
		record.DeliveryError,
		record.ProducedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// Recent returns the newest notifications, most recent first.
func (r *NotificationLogRepository) Recent(ctx context.Context, limit int) ([]NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, text, event_type, delivered, COALESCE(delivery_error, ''), produced_at
		FROM notification_log
		ORDER BY produced_at DESC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var records []NotificationRecord
	for rows.Next() {
		var rec NotificationRecord
		var eventType string

		if err := rows.Scan(&rec.ID, &rec.Text, &eventType, &rec.Delivered, &rec.DeliveryError, &rec.ProducedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		rec.EventType = presence.EventType(eventType)
		records = append(records, rec)
	}

	return records, rows.Err()
}
