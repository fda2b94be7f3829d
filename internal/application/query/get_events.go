package query

import (
	"context"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET EVENTS QUERY
// Raw presence event log, chronological. This is what correction surfaces
// list before the user picks an event to edit or delete.
// ══════════════════════════════════════════════════════════════════════════════

// GetEventsQuery contains the event listing parameters.
type GetEventsQuery struct {
	// From filters out events before this instant (zero = no bound).
	From time.Time

	// To filters out events after this instant (zero = no bound).
	To time.Time
}

// Validate validates the query.
func (q *GetEventsQuery) Validate() error {
	return nil
}

// EventsView is the event listing read model.
type EventsView struct {
	Events []presence.Event `json:"events"`

	// Total is the full event log size before filtering.
	Total int `json:"total"`
}

// GetEventsHandler handles the GetEventsQuery.
type GetEventsHandler struct {
	tracker *tracker.Tracker
}

// NewGetEventsHandler creates the handler.
func NewGetEventsHandler(t *tracker.Tracker) *GetEventsHandler {
	return &GetEventsHandler{tracker: t}
}

// Handle builds the event listing.
func (h *GetEventsHandler) Handle(ctx context.Context, q GetEventsQuery) (*EventsView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	all := h.tracker.Events()

	events := make([]presence.Event, 0, len(all))
	for _, event := range all {
		if !q.From.IsZero() && event.Timestamp.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && event.Timestamp.After(q.To) {
			continue
		}
		events = append(events, event)
	}

	return &EventsView{
		Events: events,
		Total:  len(all),
	}, nil
}
