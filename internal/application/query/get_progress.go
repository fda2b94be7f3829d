package query

import (
	"context"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/session"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Aggregates tracked time against the configured hour targets. Sessions that
// straddle a period boundary contribute only their overlap with the window,
// so the day, week and month figures always reconcile.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contains the progress read parameters.
type GetProgressQuery struct {
	// Period selects a single reporting window; empty means all three.
	Period progress.Period

	// At is the reference instant the windows are anchored to (defaults
	// to now).
	At time.Time

	// IncludeLive counts the open session up to At.
	IncludeLive bool
}

// Validate validates the query.
func (q *GetProgressQuery) Validate() error {
	if q.Period != "" && !q.Period.IsValid() {
		return progress.ErrInvalidPeriod
	}
	if q.At.IsZero() {
		q.At = time.Now()
	}
	return nil
}

// ProgressView is the progress read model.
type ProgressView struct {
	// Reports holds one entry per requested period.
	Reports []progress.Report `json:"reports"`

	// At is the instant the reports were computed for.
	At time.Time `json:"at"`

	// LiveIncluded reports whether an open session contributed.
	LiveIncluded bool `json:"live_included"`
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	tracker    *tracker.Tracker
	aggregator *progress.Aggregator
}

// NewGetProgressHandler creates the handler.
func NewGetProgressHandler(t *tracker.Tracker, aggregator *progress.Aggregator) *GetProgressHandler {
	return &GetProgressHandler{tracker: t, aggregator: aggregator}
}

// Handle builds the progress view.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var sessions []session.AttendanceSession
	liveIncluded := false
	if q.IncludeLive {
		sessions = h.tracker.SessionsWithLive(q.At)
		liveIncluded = len(sessions) > len(h.tracker.Sessions())
	} else {
		sessions = h.tracker.Sessions()
	}

	policy := h.tracker.Policy()

	var reports []progress.Report
	if q.Period != "" {
		report, err := h.aggregator.Progress(sessions, policy, q.Period, q.At)
		if err != nil {
			return nil, err
		}
		reports = []progress.Report{report}
	} else {
		var err error
		reports, err = h.aggregator.Overview(sessions, policy, q.At)
		if err != nil {
			return nil, err
		}
	}

	return &ProgressView{
		Reports:      reports,
		At:           q.At,
		LiveIncluded: liveIncluded,
	}, nil
}
