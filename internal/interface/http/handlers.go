package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/application/command"
	"github.com/presence-hub/office-presence-hub/internal/application/query"
	"github.com/presence-hub/office-presence-hub/internal/domain/audit"
	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & ROOT
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"service": "office-presence-hub",
		"status":  "running",
		"uptime":  s.Uptime().String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.deps.HealthProbes))
	healthy := true
	for name, probe := range s.deps.HealthProbes {
		if err := probe(ctx); err != nil {
			components[name] = err.Error()
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, r, status, map[string]interface{}{
		"status":     overall,
		"components": components,
		"uptime":     s.Uptime().String(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNAL INGESTION
// ══════════════════════════════════════════════════════════════════════════════

type recordSignalRequest struct {
	Inside bool      `json:"inside"`
	At     time.Time `json:"at,omitempty"`
}

func (s *Server) handleRecordSignal(w http.ResponseWriter, r *http.Request) {
	var req recordSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	result, err := s.deps.RecordTransition.Handle(r.Context(), command.RecordTransitionCommand{
		Inside: req.Inside,
		At:     req.At,
	})
	if err != nil {
		if errors.Is(err, presence.ErrEvaluationInFlight) {
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusConflict, "evaluation_in_flight", "A signal is already being evaluated, retry shortly")
			return
		}
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// READ SIDE
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.GetStatus.Handle(r.Context(), query.GetStatusQuery{})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	q := query.GetProgressQuery{
		Period:      progress.Period(getQueryParam(r, "period", "")),
		IncludeLive: getQueryParamBool(r, "live"),
	}

	view, err := s.deps.GetProgress.Handle(r.Context(), q)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidPeriod) {
			writeJSONError(w, http.StatusBadRequest, "invalid_period", "Period must be day, week or month")
			return
		}
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	from, ok := getQueryParamTime(r, "from")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_time", "from must be RFC3339")
		return
	}
	to, ok := getQueryParamTime(r, "to")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_time", "to must be RFC3339")
		return
	}

	view, err := s.deps.GetSessions.Handle(r.Context(), query.GetSessionsQuery{
		From:        from,
		To:          to,
		IncludeLive: getQueryParamBool(r, "live"),
	})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	from, ok := getQueryParamTime(r, "from")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_time", "from must be RFC3339")
		return
	}
	to, ok := getQueryParamTime(r, "to")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_time", "to must be RFC3339")
		return
	}

	view, err := s.deps.GetEvents.Handle(r.Context(), query.GetEventsQuery{From: from, To: to})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetAuditLog(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.GetAuditLog.Handle(r.Context(), query.GetAuditLogQuery{
		Limit:  getQueryParamInt(r, "limit", 0),
		Action: audit.Action(getQueryParam(r, "action", "")),
	})
	if err != nil {
		if errors.Is(err, audit.ErrInvalidAction) {
			writeJSONError(w, http.StatusBadRequest, "invalid_action", "Action must be add, edit or delete")
			return
		}
		s.writeCommandError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// ══════════════════════════════════════════════════════════════════════════════
// CORRECTIONS
// ══════════════════════════════════════════════════════════════════════════════

type addCorrectionRequest struct {
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
}

func (s *Server) handleAddCorrection(w http.ResponseWriter, r *http.Request) {
	var req addCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	result, err := s.deps.AddCorrection.Handle(r.Context(), command.AddCorrectionCommand{
		Type:   presence.EventType(req.Type),
		At:     req.At,
		Reason: req.Reason,
	})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, result)
}

type editCorrectionRequest struct {
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
}

func (s *Server) handleEditCorrection(w http.ResponseWriter, r *http.Request) {
	var req editCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	result, err := s.deps.EditCorrection.Handle(r.Context(), command.EditCorrectionCommand{
		EventID: r.PathValue("id"),
		Type:    presence.EventType(req.Type),
		At:      req.At,
		Reason:  req.Reason,
	})
	if err != nil {
		if errors.Is(err, presence.ErrEventNotFound) {
			writeJSONError(w, http.StatusNotFound, "event_not_found", "No presence event with that id")
			return
		}
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

type deleteCorrectionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleDeleteCorrection(w http.ResponseWriter, r *http.Request) {
	var req deleteCorrectionRequest
	if r.Body != nil {
		// A body is optional on delete; decode errors fall back to an
		// empty reason, which the audit trail records with a placeholder.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.deps.DeleteCorrection.Handle(r.Context(), command.DeleteCorrectionCommand{
		EventID: r.PathValue("id"),
		Reason:  req.Reason,
	})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

type setTargetsRequest struct {
	DailyHours   int `json:"daily_hours"`
	WeeklyHours  int `json:"weekly_hours"`
	MonthlyHours int `json:"monthly_hours"`
}

func (s *Server) handleSetTargets(w http.ResponseWriter, r *http.Request) {
	var req setTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	result, err := s.deps.SetTargets.Handle(r.Context(), command.SetTargetsCommand{
		DailyHours:   req.DailyHours,
		WeeklyHours:  req.WeeklyHours,
		MonthlyHours: req.MonthlyHours,
	})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

type setOfficeRequest struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

func (s *Server) handleSetOffice(w http.ResponseWriter, r *http.Request) {
	var req setOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	result, err := s.deps.SetOffice.Handle(r.Context(), command.SetOfficeCommand{
		Name:         req.Name,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

type updateSettingsRequest struct {
	LocationPermission      *string `json:"location_permission,omitempty"`
	NotificationPermission  *string `json:"notification_permission,omitempty"`
	NotificationsEnabled    *bool   `json:"notifications_enabled,omitempty"`
	DeferLocationPrompt     *bool   `json:"defer_location_prompt,omitempty"`
	DeferNotificationPrompt *bool   `json:"defer_notification_prompt,omitempty"`
	OnboardingShown         *bool   `json:"onboarding_shown,omitempty"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return
	}

	cmd := command.UpdateSettingsCommand{
		NotificationsEnabled:    req.NotificationsEnabled,
		DeferLocationPrompt:     req.DeferLocationPrompt,
		DeferNotificationPrompt: req.DeferNotificationPrompt,
		OnboardingShown:         req.OnboardingShown,
	}
	if req.LocationPermission != nil {
		state := shared.PermissionState(*req.LocationPermission)
		cmd.LocationPermission = &state
	}
	if req.NotificationPermission != nil {
		state := shared.PermissionState(*req.NotificationPermission)
		cmd.NotificationPermission = &state
	}

	result, err := s.deps.UpdateSettings.Handle(r.Context(), cmd)
	if err != nil {
		s.writeCommandError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeCommandError maps application errors to HTTP status codes.
// Validation-style errors become 400s; anything unrecognized is a 500.
func (s *Server) writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, command.ErrInvalidEventType),
		errors.Is(err, command.ErrMissingTimestamp),
		errors.Is(err, command.ErrMissingEventID),
		errors.Is(err, command.ErrNoSettingsProvided),
		errors.Is(err, command.ErrInvalidPermissionState),
		errors.Is(err, progress.ErrNegativeTarget),
		errors.Is(err, shared.ErrEmptyValue),
		errors.Is(err, shared.ErrValueOutOfRange):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, presence.ErrEventNotFound):
		writeJSONError(w, http.StatusNotFound, "event_not_found", err.Error())
	default:
		s.logger.Error("request failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Request could not be processed")
	}
}
