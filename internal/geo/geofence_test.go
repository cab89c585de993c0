package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/geocapsule/internal/capsule"
)

// TestDistance_ZeroForSamePoint tests the degenerate case.
func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Point{Latitude: 37.7749, Longitude: -122.4194}
	assert.Equal(t, 0.0, Distance(p, p))
}

// TestDistance_KnownValue tests against a hand-checked great-circle distance.
func TestDistance_KnownValue(t *testing.T) {
	// One degree of latitude on the sphere used here is ~111,195 m.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 1, Longitude: 0}
	assert.InDelta(t, 111195, Distance(a, b), 10)
}

// TestDistance_Antimeridian tests that the formula wraps across ±180°.
func TestDistance_Antimeridian(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 179.9999}
	b := Point{Latitude: 0, Longitude: -179.9999}

	// ~22 m apart; naive planar subtraction would see nearly 360 degrees.
	assert.Less(t, Distance(a, b), 100.0)
}

// TestDistance_Poles tests that all longitudes converge at the pole.
func TestDistance_Poles(t *testing.T) {
	a := Point{Latitude: 90, Longitude: 0}
	b := Point{Latitude: 90, Longitude: 123.4}
	assert.InDelta(t, 0, Distance(a, b), 0.001)
}

// TestWithinGeofence_BoundaryInclusive tests that distance == radius is in.
func TestWithinGeofence_BoundaryInclusive(t *testing.T) {
	loc := capsule.Location{Latitude: 37.7749, Longitude: -122.4194, Radius: 0}
	viewer := &Point{Latitude: 37.7749 + 0.00045, Longitude: -122.4194}

	// Set the radius to the exact distance: the boundary itself is in.
	d := Distance(*viewer, Point{Latitude: loc.Latitude, Longitude: loc.Longitude})
	loc.Radius = d
	assert.True(t, WithinGeofence(viewer, loc))

	// Any shortfall puts the viewer out.
	loc.Radius = d * 0.999999
	assert.False(t, WithinGeofence(viewer, loc))
}

// TestWithinGeofence_InsideAndOutside tests the plain cases.
func TestWithinGeofence_InsideAndOutside(t *testing.T) {
	loc := capsule.Location{Latitude: 37.7749, Longitude: -122.4194, Radius: 50}

	assert.True(t, WithinGeofence(&Point{Latitude: 37.7749, Longitude: -122.4194}, loc))

	// ~200 m north.
	assert.False(t, WithinGeofence(&Point{Latitude: 37.7767, Longitude: -122.4194}, loc))
}

// TestWithinGeofence_NilViewerFailsClosed tests the missing-position rule.
func TestWithinGeofence_NilViewerFailsClosed(t *testing.T) {
	loc := capsule.Location{Latitude: 0, Longitude: 0, Radius: 1e9}
	assert.False(t, WithinGeofence(nil, loc))
}
