package geoloc

import (
	"context"
	"fmt"

	"github.com/roach88/geocapsule/internal/geo"
)

// Geocoder resolves a point to a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p geo.Point) (string, error)
}

// CoordinateLabel formats a point as a plain coordinate pair, the fallback
// label used when reverse geocoding fails or no geocoder is configured.
func CoordinateLabel(p geo.Point) string {
	return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
}

// StaticGeocoder resolves every point to a fixed address, or fails with
// the configured error. It backs tests and offline use.
type StaticGeocoder struct {
	Address string
	Err     error
}

// ReverseGeocode returns the configured address.
func (g StaticGeocoder) ReverseGeocode(ctx context.Context, p geo.Point) (string, error) {
	if g.Err != nil {
		return "", g.Err
	}
	return g.Address, nil
}

// Resolve reverse-geocodes p via g, falling back to a coordinate label when
// g is nil or errors. It never fails: every point has at least a coordinate
// name.
func Resolve(ctx context.Context, g Geocoder, p geo.Point) string {
	if g == nil {
		return CoordinateLabel(p)
	}
	addr, err := g.ReverseGeocode(ctx, p)
	if err != nil || addr == "" {
		return CoordinateLabel(p)
	}
	return addr
}
