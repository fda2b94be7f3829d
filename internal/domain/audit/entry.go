// Package audit contains the immutable correction audit trail. Every manual
// change to the presence event log produces exactly one entry here; entries
// are never edited or removed by the tracker itself.
package audit

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain errors for the audit package.
var (
	ErrInvalidAction = errors.New("audit: invalid action")
	ErrZeroTimestamp = errors.New("audit: timestamp is required")
)

// PlaceholderReason replaces blank or whitespace-only correction reasons.
const PlaceholderReason = "No reason provided"

// Action identifies the kind of manual correction.
type Action string

const (
	// ActionAdd records a manually added event.
	ActionAdd Action = "add"

	// ActionEdit records an edit of an existing event.
	ActionEdit Action = "edit"

	// ActionDelete records a deletion. Deletions are audited even when the
	// target event did not exist.
	ActionDelete Action = "delete"
)

// IsValid checks if the action is one of the known values.
func (a Action) IsValid() bool {
	switch a {
	case ActionAdd, ActionEdit, ActionDelete:
		return true
	default:
		return false
	}
}

// Entry is one immutable audit record.
type Entry struct {
	// ID is the unique identity of the audit entry.
	ID string `json:"id"`

	// Timestamp is the wall clock at the moment of the correction. It is
	// independent of the corrected event's own timestamp.
	Timestamp time.Time `json:"timestamp"`

	// Action is add, edit or delete.
	Action Action `json:"action"`

	// EventID is the affected presence event's id.
	EventID string `json:"event_id"`

	// Reason is the user's reason. Never empty: blank input is normalized
	// to PlaceholderReason.
	Reason string `json:"reason"`
}

// NewEntry creates an audit entry with a normalized reason.
func NewEntry(action Action, eventID, reason string, at time.Time) (Entry, error) {
	if !action.IsValid() {
		return Entry{}, ErrInvalidAction
	}
	if at.IsZero() {
		return Entry{}, ErrZeroTimestamp
	}
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: at,
		Action:    action,
		EventID:   eventID,
		Reason:    NormalizeReason(reason),
	}, nil
}

// NormalizeReason strips surrounding whitespace and substitutes the
// placeholder when nothing remains. Applied identically by add, edit and
// delete corrections.
func NormalizeReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return PlaceholderReason
	}
	return trimmed
}

// Prepend returns a new log with the entry at the front. The audit log is
// ordered newest-first.
func Prepend(log []Entry, entry Entry) []Entry {
	updated := make([]Entry, 0, len(log)+1)
	updated = append(updated, entry)
	updated = append(updated, log...)
	return updated
}
