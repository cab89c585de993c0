package engine

import (
	"errors"
	"fmt"
)

// Reason identifies why an unlock attempt was denied.
// Reasons are expected user states, surfaced for direct feedback. They are
// carried on the Decision, never raised as errors.
type Reason string

const (
	// ReasonNone means the attempt was not denied.
	ReasonNone Reason = ""

	// ReasonOutOfRange indicates the viewer is outside the geofence, or the
	// viewer position is unknown (fail-closed).
	ReasonOutOfRange Reason = "OUT_OF_RANGE"

	// ReasonTooEarly indicates the current time precedes the unlock date.
	ReasonTooEarly Reason = "TOO_EARLY"

	// ReasonBadKey indicates an access-key mismatch on a private, keyed
	// capsule.
	ReasonBadKey Reason = "BAD_KEY"
)

// Advisory identifies a non-fatal operational condition attached to a
// decision. Unlike a Reason it does not name a guard; it explains why a
// guard could not be fully evaluated.
type Advisory string

const (
	// AdvisoryNone means no operational condition applies.
	AdvisoryNone Advisory = ""

	// AdvisoryPositionUnavailable indicates the external geolocation
	// collaborator failed (permission, availability, timeout). The engine
	// degrades to "position unknown" and fails closed.
	AdvisoryPositionUnavailable Advisory = "POSITION_UNAVAILABLE"
)

// Message returns the user-facing feedback line for a denial reason.
func (r Reason) Message() string {
	switch r {
	case ReasonOutOfRange:
		return "You must be at the capsule location to unlock it"
	case ReasonTooEarly:
		return "This capsule is not ready to be unlocked yet"
	case ReasonBadKey:
		return "Invalid access key"
	default:
		return ""
	}
}

// NotFoundError reports an unlock attempt against an id that is not in the
// capsule collection.
type NotFoundError struct {
	CapsuleID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("capsule not found: %s", e.CapsuleID)
}

// IsNotFound reports whether the error is a missing-capsule error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
