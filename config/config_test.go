package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "office-presence-hub", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, "monday", cfg.App.WeekStart)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Scheduler.SnapshotInterval)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")
	t.Setenv("APP_WEEK_START", "SUNDAY")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("SCHEDULER_SNAPSHOT_INTERVAL", "5m")
	t.Setenv("REDIS_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.App.Timezone)
	require.NotNil(t, cfg.App.Location)
	assert.Equal(t, "Europe/Berlin", cfg.App.Location.String())
	assert.Equal(t, "sunday", cfg.App.WeekStart)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.SnapshotInterval)
	assert.True(t, cfg.Redis.Disabled)
}

func TestLoad_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.App.Location)
}

func TestValidate_ProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required in production")
	assert.Contains(t, err.Error(), "HTTP_API_TOKEN_HASH is required in production")
}

func TestValidate_RejectsBadWeekStart(t *testing.T) {
	t.Setenv("APP_WEEK_START", "friday")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_WEEK_START must be monday or sunday")
}

func TestValidate_RejectsSubSecondSnapshotInterval(t *testing.T) {
	t.Setenv("SCHEDULER_SNAPSHOT_INTERVAL", "100ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_SNAPSHOT_INTERVAL must be at least 1s")
}

func TestFeatureFlags_DefaultsEnabled(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureLiveStatusCache))
	assert.True(t, ff.IsEnabled(FeatureLiveSession))
	assert.True(t, ff.IsEnabled(FeatureNotifyArrival))
	assert.True(t, ff.IsEnabled(FeatureNotifyDeparture))
	assert.True(t, ff.IsEnabled(FeatureSnapshotEveryMutation))
	assert.False(t, ff.IsEnabled("unknown.feature"))
}

func TestFeatureFlags_EnvironmentOverride(t *testing.T) {
	t.Setenv("FEATURE_NOTIFY_ARRIVAL", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureNotifyArrival))
	assert.True(t, ff.IsEnabled(FeatureNotifyDeparture))
}

func TestFeatureFlags_RuntimeToggle(t *testing.T) {
	ff := LoadFeatureFlags()

	require.NoError(t, ff.DisableFeature(FeatureLiveSession))
	assert.False(t, ff.IsEnabled(FeatureLiveSession))

	require.NoError(t, ff.EnableFeature(FeatureLiveSession))
	assert.True(t, ff.IsEnabled(FeatureLiveSession))

	assert.Error(t, ff.EnableFeature("unknown.feature"))
}
