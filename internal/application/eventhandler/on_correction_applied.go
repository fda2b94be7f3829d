package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON CORRECTION APPLIED HANDLER
// Corrections rewrite history, which changes the derived sessions and the
// live elapsed time the mirror reports. The mirror must follow immediately,
// not at the next scheduler tick.
// ══════════════════════════════════════════════════════════════════════════════

// OnCorrectionAppliedHandler handles correction.added/edited/deleted.
type OnCorrectionAppliedHandler struct {
	refresher LiveStatusRefresher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewOnCorrectionAppliedHandler creates the handler.
func NewOnCorrectionAppliedHandler(refresher LiveStatusRefresher, logger *slog.Logger) *OnCorrectionAppliedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnCorrectionAppliedHandler{
		refresher: refresher,
		timeout:   10 * time.Second,
		logger:    logger,
	}
}

// HandlerName implements shared.EventHandler.
func (h *OnCorrectionAppliedHandler) HandlerName() string {
	return "on_correction_applied"
}

// Handle implements shared.EventHandler.
func (h *OnCorrectionAppliedHandler) Handle(event shared.Event) error {
	if h.refresher == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.refresher.Run(ctx); err != nil {
		h.logger.Warn("live status refresh after correction failed",
			"event_type", string(event.EventType()),
			"error", err,
		)
	}
	return nil
}
