package query

import (
	"context"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/session"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SESSIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionsQuery contains the session listing parameters.
type GetSessionsQuery struct {
	// From filters out sessions ending before this instant (zero = no bound).
	From time.Time

	// To filters out sessions starting after this instant (zero = no bound).
	To time.Time

	// IncludeLive appends the synthetic open session if one exists.
	IncludeLive bool

	// At is the closing instant for the live session (defaults to now).
	At time.Time
}

// Validate validates the query.
func (q *GetSessionsQuery) Validate() error {
	if q.At.IsZero() {
		q.At = time.Now()
	}
	return nil
}

// SessionsView is the session listing read model.
type SessionsView struct {
	// Sessions are ordered chronologically, live session last.
	Sessions []session.AttendanceSession `json:"sessions"`

	// TotalMinutes is the summed duration of the listed sessions.
	TotalMinutes int `json:"total_minutes"`
}

// GetSessionsHandler handles the GetSessionsQuery.
type GetSessionsHandler struct {
	tracker *tracker.Tracker
}

// NewGetSessionsHandler creates the handler.
func NewGetSessionsHandler(t *tracker.Tracker) *GetSessionsHandler {
	return &GetSessionsHandler{tracker: t}
}

// Handle builds the session listing.
func (h *GetSessionsHandler) Handle(ctx context.Context, q GetSessionsQuery) (*SessionsView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var all []session.AttendanceSession
	if q.IncludeLive {
		all = h.tracker.SessionsWithLive(q.At)
	} else {
		all = h.tracker.Sessions()
	}

	filtered := make([]session.AttendanceSession, 0, len(all))
	total := 0
	for _, s := range all {
		if !q.From.IsZero() && s.End.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && s.Start.After(q.To) {
			continue
		}
		filtered = append(filtered, s)
		total += int(s.End.Sub(s.Start) / time.Minute)
	}

	return &SessionsView{
		Sessions:     filtered,
		TotalMinutes: total,
	}, nil
}
