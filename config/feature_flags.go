package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles for the presence pipeline.
// Flags gate behavior that is still being tuned (live status caching,
// notification variants) without a redeploy.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// === Presence Features ===
	FeatureLiveStatusCache = "presence.live_status_cache" // mirror live status into Redis
	FeatureLiveSession     = "presence.live_session"      // include the synthetic live session in reports

	// === Notification Features ===
	FeatureNotifyArrival   = "notify.arrival"   // "Arrival detected" notifications
	FeatureNotifyDeparture = "notify.departure" // "Departure detected" notifications

	// === Snapshot Features ===
	FeatureSnapshotEveryMutation = "snapshot.every_mutation" // checkpoint after each state change
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureLiveStatusCache] = &Feature{
		Name:        FeatureLiveStatusCache,
		Description: "Mirror live presence status into Redis",
		Enabled:     true,
	}

	ff.features[FeatureLiveSession] = &Feature{
		Name:        FeatureLiveSession,
		Description: "Include the open session in progress reports",
		Enabled:     true,
	}

	ff.features[FeatureNotifyArrival] = &Feature{
		Name:        FeatureNotifyArrival,
		Description: "Produce arrival notifications",
		Enabled:     true,
	}

	ff.features[FeatureNotifyDeparture] = &Feature{
		Name:        FeatureNotifyDeparture,
		Description: "Produce departure notifications",
		Enabled:     true,
	}

	ff.features[FeatureSnapshotEveryMutation] = &Feature{
		Name:        FeatureSnapshotEveryMutation,
		Description: "Persist a snapshot after every state mutation",
		Enabled:     true,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false
// Example: FEATURE_NOTIFY_ARRIVAL=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts "notify.arrival" to "FEATURE_NOTIFY_ARRIVAL".
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks whether a feature is enabled.
// Unknown features are disabled.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}
	return feature.Enabled
}

// EnableFeature enables a feature at runtime.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.setEnabled(featureName, true)
}

// DisableFeature disables a feature at runtime.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.setEnabled(featureName, false)
}

func (ff *FeatureFlags) setEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return fmt.Errorf("unknown feature: %s", featureName)
	}
	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of all features for diagnostics.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]Feature, len(ff.features))
	for name, feature := range ff.features {
		result[name] = *feature
	}
	return result
}
