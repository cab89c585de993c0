package testutil

import (
	"time"

	"github.com/roach88/geocapsule/internal/capsule"
)

// BaseTime is the reference instant used across fixtures.
var BaseTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// Capsule returns a public capsule at the given coordinates whose unlock
// date is one hour before BaseTime. Override fields as needed.
func Capsule(id string, lat, lon float64) capsule.TimeCapsule {
	return capsule.TimeCapsule{
		ID:      id,
		Title:   "Fixture " + id,
		Message: "fixture message",
		Location: capsule.Location{
			Latitude:  lat,
			Longitude: lon,
			Address:   "Fixture Address",
			Radius:    50,
		},
		MediaFiles:  []capsule.MediaFile{},
		UnlockDate:  BaseTime.Add(-time.Hour),
		CreatedDate: BaseTime.Add(-24 * time.Hour),
		CreatedBy:   "user_fixture",
		IsPublic:    true,
	}
}

// PrivateCapsule returns a private capsule with the given access key.
func PrivateCapsule(id string, lat, lon float64, key string) capsule.TimeCapsule {
	c := Capsule(id, lat, lon)
	c.IsPublic = false
	c.AccessKey = key
	return c
}
