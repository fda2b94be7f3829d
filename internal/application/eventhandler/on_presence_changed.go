// Package eventhandler contains domain event handlers. They are the reactive
// part of the system: side effects such as notification delivery and cache
// refreshes happen here, off the hot path of the presence pipeline.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON PRESENCE CHANGED HANDLER
// Fires when the transition gate records a boundary crossing: dispatches the
// produced notification and refreshes the live status mirror so external
// readers see the change immediately instead of at the next scheduled tick.
// ══════════════════════════════════════════════════════════════════════════════

// NotificationSender delivers a produced notification text.
// Implemented by the infrastructure notification service.
type NotificationSender interface {
	Send(ctx context.Context, text string, eventType presence.EventType, producedAt time.Time) error
}

// LiveStatusRefresher re-mirrors the current presence state.
// Implemented by the refresh job; invoking it here keeps the mirror hot
// between scheduler ticks.
type LiveStatusRefresher interface {
	Run(ctx context.Context) error
}

// PresenceChangedConfig contains the handler configuration.
type PresenceChangedConfig struct {
	// NotifyArrival enables dispatching entry notifications.
	NotifyArrival bool

	// NotifyDeparture enables dispatching exit notifications.
	NotifyDeparture bool

	// HandleTimeout bounds the side effects of one event.
	HandleTimeout time.Duration
}

// DefaultPresenceChangedConfig returns the default configuration.
func DefaultPresenceChangedConfig() PresenceChangedConfig {
	return PresenceChangedConfig{
		NotifyArrival:   true,
		NotifyDeparture: true,
		HandleTimeout:   10 * time.Second,
	}
}

// OnPresenceChangedHandler handles presence.entered and presence.exited.
type OnPresenceChangedHandler struct {
	sender    NotificationSender
	refresher LiveStatusRefresher
	config    PresenceChangedConfig
	logger    *slog.Logger
}

// NewOnPresenceChangedHandler creates the handler.
// sender and refresher may each be nil; the corresponding side effect is
// then skipped.
func NewOnPresenceChangedHandler(
	sender NotificationSender,
	refresher LiveStatusRefresher,
	config PresenceChangedConfig,
	logger *slog.Logger,
) *OnPresenceChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnPresenceChangedHandler{
		sender:    sender,
		refresher: refresher,
		config:    config,
		logger:    logger,
	}
}

// HandlerName implements shared.EventHandler.
func (h *OnPresenceChangedHandler) HandlerName() string {
	return "on_presence_changed"
}

// Handle implements shared.EventHandler.
func (h *OnPresenceChangedHandler) Handle(event shared.Event) error {
	changed, ok := event.(shared.PresenceChangedEvent)
	if !ok {
		return fmt.Errorf("on_presence_changed: unexpected event %T", event)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.HandleTimeout)
	defer cancel()

	if h.refresher != nil {
		if err := h.refresher.Run(ctx); err != nil {
			h.logger.Warn("live status refresh failed", "error", err)
		}
	}

	if changed.NotificationText == "" || h.sender == nil {
		return nil
	}

	eventType := presence.EventExit
	if changed.Inside {
		eventType = presence.EventEntry
	}
	if changed.Inside && !h.config.NotifyArrival {
		return nil
	}
	if !changed.Inside && !h.config.NotifyDeparture {
		return nil
	}

	if err := h.sender.Send(ctx, changed.NotificationText, eventType, changed.At); err != nil {
		// The sender already recorded the failure; the bus should not
		// count a lost notification as a handler error.
		h.logger.Warn("notification dispatch failed", "error", err)
	}
	return nil
}
