package geo

import (
	"math"

	"github.com/roach88/geocapsule/internal/capsule"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371000.0

// Point is a viewer position. A nil *Point means "position unknown".
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle surface distance in meters between two
// points, via the haversine formula. Correct across the antimeridian and at
// the poles; no planar shortcuts.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Guard against floating-point drift pushing h past 1.
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinGeofence reports whether the viewer is inside the location's fence.
// The boundary is inclusive: distance exactly equal to the radius is in.
// A nil viewer fails closed.
func WithinGeofence(viewer *Point, loc capsule.Location) bool {
	if viewer == nil {
		return false
	}
	d := Distance(*viewer, Point{Latitude: loc.Latitude, Longitude: loc.Longitude})
	return d <= loc.Radius
}
