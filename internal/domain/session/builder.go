package session

import (
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION RECONSTRUCTION ENGINE
// Rebuilds the full ordered session list from the event log on every
// mutation. Deriving from scratch instead of patching an incremental cache
// keeps the result a pure function of the log: same events in, same sessions
// out, regardless of input ordering.
// ══════════════════════════════════════════════════════════════════════════════

// Build derives the ordered, non-overlapping attendance sessions from an
// unordered set of presence events.
//
// Events are first sorted by (timestamp, id); the id tiebreak makes the scan
// deterministic for equal timestamps. The scan keeps the most recent
// unmatched entry:
//   - an entry always replaces any previously open entry (only one open
//     session can exist; the orphaned entry is dropped without a session);
//   - an exit closes the open entry when its timestamp is not earlier,
//     emitting [entry, exit];
//   - an exit with no open entry, or earlier than the open entry, is ignored.
//
// Malformed or out-of-order correction input therefore degrades to fewer
// sessions, never to an error.
func Build(events []presence.Event) []AttendanceSession {
	sorted := presence.SortEvents(events)

	sessions := make([]AttendanceSession, 0, len(sorted)/2)
	var open *presence.Event
	for i := range sorted {
		event := sorted[i]
		switch event.Type {
		case presence.EventEntry:
			open = &sorted[i]
		case presence.EventExit:
			if open == nil {
				continue
			}
			if event.Timestamp.Before(open.Timestamp) {
				continue
			}
			sessions = append(sessions, AttendanceSession{
				ID:    open.ID.String(),
				Start: open.Timestamp,
				End:   event.Timestamp,
			})
			open = nil
		}
	}
	return sessions
}

// OpenEntry returns the most recent unmatched entry of the event log, if the
// log ends with one. It mirrors the scan in Build so that the live session
// read path agrees with the reconstruction.
func OpenEntry(events []presence.Event) (presence.Event, bool) {
	sorted := presence.SortEvents(events)

	var open *presence.Event
	for i := range sorted {
		switch sorted[i].Type {
		case presence.EventEntry:
			open = &sorted[i]
		case presence.EventExit:
			if open != nil && !sorted[i].Timestamp.Before(open.Timestamp) {
				open = nil
			}
		}
	}
	if open == nil {
		return presence.Event{}, false
	}
	return *open, true
}

// WithLive appends a synthetic open session [openEntry, now) to a copy of the
// given sessions when the tracker currently believes it is inside and now is
// strictly after the open entry. Used only for reporting; the stored session
// list never contains it.
func WithLive(sessions []AttendanceSession, events []presence.Event, inside bool, now time.Time) []AttendanceSession {
	result := make([]AttendanceSession, len(sessions))
	copy(result, sessions)

	if !inside {
		return result
	}
	open, ok := OpenEntry(events)
	if !ok || !now.After(open.Timestamp) {
		return result
	}
	return append(result, AttendanceSession{
		ID:    open.ID.String(),
		Start: open.Timestamp,
		End:   now,
		Live:  true,
	})
}

// TotalMinutes sums whole-minute durations over a session set.
func TotalMinutes(sessions []AttendanceSession) int {
	total := 0
	for _, s := range sessions {
		total += s.Minutes()
	}
	return total
}
