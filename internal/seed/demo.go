package seed

import (
	"time"

	"github.com/roach88/geocapsule/internal/capsule"
)

// Demo returns the built-in starter capsules so a fresh database has
// something to find. Both unlock a day after creation.
func Demo(createdBy string, now time.Time) *Document {
	unlockAt := now.Add(24 * time.Hour)
	return &Document{
		Capsules: []capsule.TimeCapsule{
			{
				ID:      "capsule_demo_bridge",
				Title:   "Message at the Bridge",
				Message: "Left here on a foggy morning. Come back when it clears.",
				MediaFiles: []capsule.MediaFile{},
				Location: capsule.Location{
					Latitude:  37.8199,
					Longitude: -122.4783,
					Address:   "Golden Gate Bridge, San Francisco",
					Radius:    100,
				},
				UnlockDate:  unlockAt,
				CreatedDate: now,
				CreatedBy:   createdBy,
				IsPublic:    true,
			},
			{
				ID:      "capsule_demo_park",
				Title:   "Picnic Spot",
				Message: "The best shade tree in the park. Bring a book.",
				MediaFiles: []capsule.MediaFile{},
				Location: capsule.Location{
					Latitude:  37.7694,
					Longitude: -122.4862,
					Address:   "Golden Gate Park, San Francisco",
					Radius:    75,
				},
				UnlockDate:  unlockAt,
				CreatedDate: now,
				CreatedBy:   createdBy,
				IsPublic:    true,
			},
		},
	}
}
