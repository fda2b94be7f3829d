// Package service contains infrastructure-side service adapters for the
// Office Presence Hub.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/presence-hub/office-presence-hub/internal/domain/presence"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/persistence/postgres"
	"github.com/presence-hub/office-presence-hub/pkg/circuitbreaker"
	"github.com/presence-hub/office-presence-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// NotificationGateway delivers a rendered notification to the outside world
// (push service, chat webhook). The hub only produces text; delivery transport
// is swappable.
type NotificationGateway interface {
	Deliver(ctx context.Context, text string) error
}

// LogGateway is a gateway that only logs. Used in development and as the
// fallback when no real transport is configured.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a LogGateway.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{logger: logger}
}

// Deliver implements NotificationGateway.
func (g *LogGateway) Deliver(ctx context.Context, text string) error {
	g.logger.Info("notification", "text", text)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationServiceConfig holds delivery tuning.
type NotificationServiceConfig struct {
	// MaxRetries per notification before recording a failure.
	MaxRetries int

	// RetryBaseDelay is the initial backoff delay.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration

	// BreakerThreshold is the consecutive failures before the circuit opens.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration

	// BreakerHalfOpenMax is max probe requests while half-open.
	BreakerHalfOpenMax int

	// DeliveryTimeout bounds a single delivery attempt chain.
	DeliveryTimeout time.Duration
}

// DefaultNotificationServiceConfig returns sensible defaults.
func DefaultNotificationServiceConfig() NotificationServiceConfig {
	return NotificationServiceConfig{
		MaxRetries:         3,
		RetryBaseDelay:     200 * time.Millisecond,
		RetryMaxDelay:      2 * time.Second,
		BreakerThreshold:   5,
		BreakerTimeout:     60 * time.Second,
		BreakerHalfOpenMax: 2,
		DeliveryTimeout:    5 * time.Second,
	}
}

// NotificationService delivers presence notifications through a gateway,
// wrapping delivery in retries and a circuit breaker, and records every
// outcome in the durable notification log.
type NotificationService struct {
	gateway NotificationGateway
	logRepo *postgres.NotificationLogRepository
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	config  NotificationServiceConfig
	logger  *slog.Logger
}

// NewNotificationService creates a NotificationService.
// logRepo may be nil; outcomes are then only logged.
func NewNotificationService(gateway NotificationGateway, logRepo *postgres.NotificationLogRepository, config NotificationServiceConfig, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}

	retrier := retry.New(
		retry.WithMaxAttempts(config.MaxRetries),
		retry.WithInitialDelay(config.RetryBaseDelay),
		retry.WithMaxDelay(config.RetryMaxDelay),
		retry.WithJitter(0.2),
	)

	breaker := circuitbreaker.New("notification-gateway",
		circuitbreaker.WithFailureThreshold(config.BreakerThreshold),
		circuitbreaker.WithTimeout(config.BreakerTimeout),
		circuitbreaker.WithMaxHalfOpenRequests(config.BreakerHalfOpenMax),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
	)

	return &NotificationService{
		gateway: gateway,
		logRepo: logRepo,
		retrier: retrier,
		breaker: breaker,
		config:  config,
		logger:  logger,
	}
}

// Send delivers a notification produced by a presence transition.
// Failures are recorded, never propagated as fatal: a lost notification must
// not disturb the presence pipeline itself.
func (s *NotificationService) Send(ctx context.Context, text string, eventType presence.EventType, producedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DeliveryTimeout)
	defer cancel()

	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.retrier.Do(ctx, func(ctx context.Context) error {
			if deliverErr := s.gateway.Deliver(ctx, text); deliverErr != nil {
				return retry.Retryable(deliverErr)
			}
			return nil
		})
	})

	record := postgres.NotificationRecord{
		Text:       text,
		EventType:  eventType,
		Delivered:  err == nil,
		ProducedAt: producedAt,
	}
	if err != nil {
		record.DeliveryError = err.Error()
		s.logger.Error("notification delivery failed", "text", text, "error", err)
	}

	if s.logRepo != nil {
		if logErr := s.logRepo.Record(ctx, record); logErr != nil {
			s.logger.Error("failed to record notification outcome", "error", logErr)
		}
	}

	return err
}

// BreakerState exposes the delivery circuit state for diagnostics.
func (s *NotificationService) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}
