// Package geoloc abstracts where the viewer is and what a coordinate is
// called.
//
// Position acquisition is inherently unreliable: permission may be denied,
// the fix may be unavailable, or the request may time out. Callers are
// expected to treat any Provider failure as "position unknown" and fail
// closed rather than guess.
package geoloc

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/geocapsule/internal/geo"
)

// Provider reports the viewer's current position.
type Provider interface {
	// Current returns the viewer's position, or a PositionError when no
	// fix can be obtained.
	Current(ctx context.Context) (geo.Point, error)
}

// Position failure codes, mirroring the classes of failure a location
// source can report.
const (
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodePositionUnavailable = "POSITION_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
)

// PositionError describes why a position could not be obtained.
type PositionError struct {
	Code string
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("position %s", e.Code)
}

func (e *PositionError) Unwrap() error { return e.Err }

// IsPositionError reports whether err is a PositionError and, if so,
// returns it.
func IsPositionError(err error) (*PositionError, bool) {
	var pe *PositionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Static is a Provider pinned to a fixed point. A nil point means no fix
// is available.
type Static struct {
	Point *geo.Point
}

// Current returns the pinned point, or POSITION_UNAVAILABLE when none is
// set.
func (s Static) Current(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, &PositionError{Code: CodeTimeout, Err: err}
	}
	if s.Point == nil {
		return geo.Point{}, &PositionError{Code: CodePositionUnavailable}
	}
	return *s.Point, nil
}

// Denied is a Provider that always reports PERMISSION_DENIED. It stands in
// for a viewer who declined location access.
type Denied struct{}

// Current always fails with PERMISSION_DENIED.
func (Denied) Current(ctx context.Context) (geo.Point, error) {
	return geo.Point{}, &PositionError{Code: CodePermissionDenied}
}
