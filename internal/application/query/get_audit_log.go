package query

import (
	"context"

	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AUDIT LOG QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetAuditLogQuery contains the audit listing parameters.
type GetAuditLogQuery struct {
	// Limit caps the number of entries returned (0 = all).
	Limit int

	// Action filters by correction kind (empty = all).
	Action audit.Action
}

// Validate validates the query.
func (q *GetAuditLogQuery) Validate() error {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Action != "" && !q.Action.IsValid() {
		return audit.ErrInvalidAction
	}
	return nil
}

// AuditLogView is the audit read model. Entries are newest-first.
type AuditLogView struct {
	Entries []audit.Entry `json:"entries"`

	// Total is the full audit log size before limiting.
	Total int `json:"total"`
}

// GetAuditLogHandler handles the GetAuditLogQuery.
type GetAuditLogHandler struct {
	tracker *tracker.Tracker
}

// NewGetAuditLogHandler creates the handler.
func NewGetAuditLogHandler(t *tracker.Tracker) *GetAuditLogHandler {
	return &GetAuditLogHandler{tracker: t}
}

// Handle builds the audit listing.
func (h *GetAuditLogHandler) Handle(ctx context.Context, q GetAuditLogQuery) (*AuditLogView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	all := h.tracker.AuditLog()

	entries := make([]audit.Entry, 0, len(all))
	for _, entry := range all {
		if q.Action != "" && entry.Action != q.Action {
			continue
		}
		entries = append(entries, entry)
		if q.Limit > 0 && len(entries) == q.Limit {
			break
		}
	}

	return &AuditLogView{
		Entries: entries,
		Total:   len(all),
	}, nil
}
