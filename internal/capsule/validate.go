package capsule

import "fmt"

// ValidationError reports a construction-time invariant violation on a
// single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the construction-time invariants of a capsule.
// It is called by New and by the seed importer; capsules already in the
// store are trusted (the rules are construction-time only).
func Validate(c TimeCapsule) error {
	if c.ID == "" {
		return invalid("id", "must not be empty")
	}
	if c.Title == "" {
		return invalid("title", "must not be empty")
	}
	if err := ValidateLocation(c.Location); err != nil {
		return err
	}
	if c.UnlockDate.IsZero() {
		return invalid("unlockDate", "must be set")
	}
	if !c.UnlockDate.After(c.CreatedDate) {
		return invalid("unlockDate", "must be after createdDate")
	}
	if c.CreatedBy == "" {
		return invalid("createdBy", "must not be empty")
	}
	if c.IsPublic && c.AccessKey != "" {
		return invalid("accessKey", "only private capsules may carry an access key")
	}
	for i, m := range c.MediaFiles {
		if m.ID == "" {
			return invalid(fmt.Sprintf("mediaFiles[%d].id", i), "must not be empty")
		}
		if !m.Kind.Valid() {
			return invalid(fmt.Sprintf("mediaFiles[%d].type", i), "unknown kind %q", string(m.Kind))
		}
	}
	return nil
}

// ValidateLocation checks coordinate ranges and the geofence radius.
func ValidateLocation(l Location) error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return invalid("location.latitude", "out of range: %v", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return invalid("location.longitude", "out of range: %v", l.Longitude)
	}
	if l.Radius <= 0 {
		return invalid("location.radius", "must be > 0, got %v", l.Radius)
	}
	return nil
}
