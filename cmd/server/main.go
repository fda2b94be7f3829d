// Package main is the entry point for the Office Presence Hub server.
//
// The hub ingests raw geofence signals, debounces them into presence
// transitions, derives attendance sessions and progress against hour
// targets, and keeps everything recoverable through versioned snapshots.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: the presence state machine, sessions, progress, audit
//   - Application: use case orchestration (Commands/Queries/Event handlers)
//   - Infrastructure: Postgres snapshots, Redis live mirror, scheduler
//   - Interface: the REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Application layer
	"github.com/presence-hub/office-presence-hub/internal/application/command"
	"github.com/presence-hub/office-presence-hub/internal/application/eventhandler"
	"github.com/presence-hub/office-presence-hub/internal/application/query"

	// Domain layer
	"github.com/presence-hub/office-presence-hub/internal/domain/progress"
	"github.com/presence-hub/office-presence-hub/internal/domain/shared"
	"github.com/presence-hub/office-presence-hub/internal/domain/tracker"

	// Infrastructure layer
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/messaging"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/persistence/postgres"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/persistence/redis"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/scheduler"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/scheduler/jobs"
	"github.com/presence-hub/office-presence-hub/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/presence-hub/office-presence-hub/internal/interface/http"

	// Packages
	"github.com/presence-hub/office-presence-hub/config"
	"github.com/presence-hub/office-presence-hub/pkg/logger"
	"github.com/presence-hub/office-presence-hub/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupSlog(cfg)
	httpLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	log.Info("starting Office Presence Hub",
		"env", string(cfg.App.Environment),
		"timezone", cfg.App.Timezone,
		"week_start", cfg.App.WeekStart,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	snapshotRepo := postgres.NewSnapshotRepository(dbConn)
	notificationLog := postgres.NewNotificationLogRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional live status mirror)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var presenceCache *redis.PresenceCache
	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureLiveStatusCache) {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, live status mirror disabled", "error", err)
		} else {
			defer redisCache.Close()
			presenceCache = redis.NewPresenceCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. STATE RESTORE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("restoring presence state...")
	presenceTracker := tracker.New(cfg.App.Location)

	snapshot, loadErr := snapshotRepo.Load(ctx)
	switch {
	case loadErr == nil:
		log.Info("snapshot loaded",
			"events", len(snapshot.Events),
			"audit_entries", len(snapshot.AuditLog),
		)
	case errors.Is(loadErr, shared.ErrSnapshotMissing):
		log.Info("no snapshot found, starting fresh")
	case errors.Is(loadErr, shared.ErrSnapshotMalformed):
		log.Warn("snapshot malformed, starting from defaults", "error", loadErr)
		snapshot.RecoveryMessage = "Stored state could not be read; tracking restarted from defaults."
	default:
		return fmt.Errorf("failed to load snapshot: %w", loadErr)
	}
	presenceTracker.Restore(snapshot)
	if msg := presenceTracker.RecoveryMessage(); msg != "" {
		log.Warn("state restored with recovery notes", "recovery", msg)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. NOTIFICATION SERVICE
	// ─────────────────────────────────────────────────────────────────────────
	notifyConfig := service.NotificationServiceConfig{
		MaxRetries:         cfg.Notifications.MaxRetries,
		RetryBaseDelay:     cfg.Notifications.RetryBaseDelay,
		RetryMaxDelay:      cfg.Notifications.RetryMaxDelay,
		BreakerThreshold:   cfg.Notifications.CircuitBreakerThreshold,
		BreakerTimeout:     cfg.Notifications.CircuitBreakerTimeout,
		BreakerHalfOpenMax: cfg.Notifications.CircuitBreakerHalfOpenMax,
		DeliveryTimeout:    cfg.Notifications.DeliveryTimeout,
	}
	notificationService := service.NewNotificationService(
		service.NewLogGateway(log),
		notificationLog,
		notifyConfig,
		log,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. BACKGROUND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	var refreshJob *jobs.RefreshLiveStatusJob
	if presenceCache != nil {
		refreshJob = jobs.NewRefreshLiveStatusJob(presenceTracker, presenceCache, log)
	}
	checkpointJob := jobs.NewSnapshotCheckpointJob(presenceTracker, snapshotRepo, log)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("starting scheduler...")
		schedConfig := scheduler.DefaultSchedulerConfig()
		schedConfig.Logger = log
		schedConfig.Timezone = cfg.App.Location
		sched = scheduler.NewScheduler(schedConfig)

		if err := sched.Register(checkpointJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SnapshotInterval)); err != nil {
			return fmt.Errorf("failed to register checkpoint job: %w", err)
		}
		if refreshJob != nil {
			if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.LiveRefreshInterval)); err != nil {
				return fmt.Errorf("failed to register refresh job: %w", err)
			}
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	checkpointEveryMutation := cfg.Features.IsEnabled(config.FeatureSnapshotEveryMutation)

	calendar := progress.NewCalendar(cfg.App.Location, timeutil.ParseWeekday(cfg.App.WeekStart))
	aggregator := progress.NewAggregator(calendar)

	recordTransition := command.NewRecordTransitionHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	addCorrection := command.NewAddCorrectionHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	editCorrection := command.NewEditCorrectionHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	deleteCorrection := command.NewDeleteCorrectionHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	setTargets := command.NewSetTargetsHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	setOffice := command.NewSetOfficeHandler(presenceTracker, snapshotRepo, eventBus, log, checkpointEveryMutation)
	updateSettings := command.NewUpdateSettingsHandler(presenceTracker, snapshotRepo, log, checkpointEveryMutation)

	getStatus := query.NewGetStatusHandler(presenceTracker)
	getProgress := query.NewGetProgressHandler(presenceTracker, aggregator)
	getSessions := query.NewGetSessionsHandler(presenceTracker)
	getEvents := query.NewGetEventsHandler(presenceTracker)
	getAuditLog := query.NewGetAuditLogHandler(presenceTracker)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	var refresher eventhandler.LiveStatusRefresher
	if refreshJob != nil {
		refresher = refreshJob
	}

	presenceChangedConfig := eventhandler.DefaultPresenceChangedConfig()
	presenceChangedConfig.NotifyArrival = cfg.Features.IsEnabled(config.FeatureNotifyArrival)
	presenceChangedConfig.NotifyDeparture = cfg.Features.IsEnabled(config.FeatureNotifyDeparture)

	onPresenceChanged := eventhandler.NewOnPresenceChangedHandler(notificationService, refresher, presenceChangedConfig, log)
	onCorrectionApplied := eventhandler.NewOnCorrectionAppliedHandler(refresher, log)

	for _, eventType := range []shared.EventType{shared.EventOfficeEntered, shared.EventOfficeExited} {
		if err := eventBus.Subscribe(eventType, onPresenceChanged); err != nil {
			return fmt.Errorf("failed to subscribe presence handler: %w", err)
		}
	}
	for _, eventType := range []shared.EventType{shared.EventCorrectionAdded, shared.EventCorrectionEdited, shared.EventCorrectionDeleted} {
		if err := eventBus.Subscribe(eventType, onCorrectionApplied); err != nil {
			return fmt.Errorf("failed to subscribe correction handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	healthProbes := map[string]func(context.Context) error{
		"postgres": dbConn.Ping,
	}
	if redisCache != nil {
		healthProbes["redis"] = redisCache.Ping
	}

	serverConfig := httpserver.DefaultConfig()
	serverConfig.Addr = cfg.HTTP.Addr
	serverConfig.APITokenHash = cfg.HTTP.APITokenHash
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		RecordTransition: recordTransition,
		AddCorrection:    addCorrection,
		EditCorrection:   editCorrection,
		DeleteCorrection: deleteCorrection,
		SetTargets:       setTargets,
		SetOffice:        setOffice,
		UpdateSettings:   updateSettings,
		GetStatus:        getStatus,
		GetProgress:      getProgress,
		GetSessions:      getSessions,
		GetEvents:        getEvents,
		GetAuditLog:      getAuditLog,
		HealthProbes:     healthProbes,
		Logger:           httpLog,
	})

	serverErrCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server failed", "error", err)
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}

	// One final checkpoint so a clean shutdown never loses state.
	log.Info("saving final snapshot...")
	if err := snapshotRepo.Save(shutdownCtx, presenceTracker.Snapshot()); err != nil {
		log.Error("final snapshot save failed", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// setupSlog builds the structured logger from the observability settings.
func setupSlog(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
