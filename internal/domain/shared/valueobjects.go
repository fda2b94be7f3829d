// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Office Location Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Coordinate boundaries and radius limits for an office geofence.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// MaxOfficeNameLength bounds the office display name.
	MaxOfficeNameLength = 100
)

// OfficeLocation describes the geofenced office: a named circle on the map.
// The platform location layer owns the actual geofence; this value object
// only carries the configuration and validates its bounds.
type OfficeLocation struct {
	// Name is the human-readable office name.
	Name string `json:"name"`

	// Latitude of the geofence center, in degrees.
	Latitude float64 `json:"latitude"`

	// Longitude of the geofence center, in degrees.
	Longitude float64 `json:"longitude"`

	// RadiusMeters is the geofence radius. Must be positive.
	RadiusMeters float64 `json:"radius_meters"`
}

// Validate checks the office location bounds.
func (o OfficeLocation) Validate() error {
	name := strings.TrimSpace(o.Name)
	if name == "" {
		return NewDomainError("shared", "OfficeLocation.Validate", ErrEmptyValue, "office name is required")
	}
	if len(name) > MaxOfficeNameLength {
		return NewDomainError("shared", "OfficeLocation.Validate", ErrValueOutOfRange,
			fmt.Sprintf("office name exceeds %d characters", MaxOfficeNameLength))
	}
	if o.Latitude < MinLatitude || o.Latitude > MaxLatitude {
		return NewDomainError("shared", "OfficeLocation.Validate", ErrValueOutOfRange,
			fmt.Sprintf("latitude %.6f out of range [-90, 90]", o.Latitude))
	}
	if o.Longitude < MinLongitude || o.Longitude > MaxLongitude {
		return NewDomainError("shared", "OfficeLocation.Validate", ErrValueOutOfRange,
			fmt.Sprintf("longitude %.6f out of range [-180, 180]", o.Longitude))
	}
	if o.RadiusMeters <= 0 {
		return NewDomainError("shared", "OfficeLocation.Validate", ErrValueOutOfRange, "radius must be positive")
	}
	return nil
}

// IsConfigured reports whether an office has been set at all.
// A zero-value OfficeLocation means "no office configured yet".
func (o OfficeLocation) IsConfigured() bool {
	return strings.TrimSpace(o.Name) != ""
}

// String returns a short description for logs.
func (o OfficeLocation) String() string {
	return fmt.Sprintf("%s (%.5f, %.5f, r=%.0fm)", o.Name, o.Latitude, o.Longitude, o.RadiusMeters)
}

// ═══════════════════════════════════════════════════════════════════════════
// Permission Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// PermissionState mirrors the platform permission levels reported by the
// location and notification collaborators.
type PermissionState string

const (
	// PermissionNotDetermined means the user has not been asked yet.
	PermissionNotDetermined PermissionState = "not_determined"

	// PermissionDenied means the user refused the permission.
	PermissionDenied PermissionState = "denied"

	// PermissionWhenInUse grants access only while the app is foregrounded.
	PermissionWhenInUse PermissionState = "when_in_use"

	// PermissionAlways grants background access; required for geofencing.
	PermissionAlways PermissionState = "always"
)

// IsValid checks if the permission state is one of the known values.
func (p PermissionState) IsValid() bool {
	switch p {
	case PermissionNotDetermined, PermissionDenied, PermissionWhenInUse, PermissionAlways:
		return true
	default:
		return false
	}
}

// IsElevated reports whether the state allows background monitoring.
func (p PermissionState) IsElevated() bool {
	return p == PermissionAlways
}
