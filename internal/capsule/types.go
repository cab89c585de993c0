package capsule

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// Location is a geographic point with a geofence radius.
// Immutable once attached to a capsule.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`

	// Radius is the geofence threshold in meters. Must be > 0.
	Radius float64 `json:"radius"`
}

// TimeCapsule is a buried message tied to a location and an unlock time.
//
// Lifecycle: created with IsUnlocked=false, transitions to true exactly once
// via the eligibility engine, otherwise immutable except for deletion.
type TimeCapsule struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	MediaFiles  []MediaFile `json:"mediaFiles"`
	Location    Location    `json:"location"`
	UnlockDate  time.Time   `json:"unlockDate"`
	CreatedDate time.Time   `json:"createdDate"`
	CreatedBy   string      `json:"createdBy"`
	IsPublic    bool        `json:"isPublic"`

	// AccessKey gates private capsules. Empty means no key is required even
	// when the capsule is private.
	AccessKey string `json:"accessKey,omitempty"`

	IsUnlocked bool `json:"isUnlocked"`

	// ChainID and ChainOrder group a capsule into a memory chain for display.
	// No traversal logic lives in this module.
	ChainID    string `json:"chainId,omitempty"`
	ChainOrder int    `json:"chainOrder,omitempty"`
}

// MemoryChain is an ordered narrative sequence of capsule ids.
// Passthrough only: stored and listed, never traversed.
type MemoryChain struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CapsuleIDs  []string `json:"capsuleIds"`
	CreatedBy   string   `json:"createdBy"`
	IsPublic    bool     `json:"isPublic"`
}

// User is the single pseudo-user of a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MapHotspot is a derived map cluster: all capsules in one spatial grid cell.
// Regenerated on every aggregation pass, never persisted or mutated in place.
type MapHotspot struct {
	ID           string   `json:"id"`
	Location     Location `json:"location"`
	CapsuleCount int      `json:"capsuleCount"`

	// HasUnlocked reports whether the viewer can unlock (or re-read) at
	// least one capsule in this cell right now.
	HasUnlocked bool `json:"hasUnlocked"`
}

// Normalize returns the NFC normal form of s.
// All user-entered strings pass through here at construction so equality
// checks compare canonical forms.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Draft holds the caller-supplied fields of a new capsule. The remaining
// fields (id, createdDate, isUnlocked) are filled in by New.
type Draft struct {
	Title      string
	Message    string
	MediaFiles []MediaFile
	Location   Location
	UnlockDate time.Time
	CreatedBy  string
	IsPublic   bool
	AccessKey  string
	ChainID    string
	ChainOrder int
}

// New builds a TimeCapsule from a draft, stamping it with a generated id and
// the given creation time, and validates the construction-time invariants.
func New(d Draft, now time.Time) (TimeCapsule, error) {
	c := TimeCapsule{
		ID:          NewCapsuleID(),
		Title:       Normalize(d.Title),
		Message:     Normalize(d.Message),
		MediaFiles:  d.MediaFiles,
		Location:    d.Location,
		UnlockDate:  d.UnlockDate,
		CreatedDate: now,
		CreatedBy:   d.CreatedBy,
		IsPublic:    d.IsPublic,
		AccessKey:   Normalize(d.AccessKey),
		IsUnlocked:  false,
		ChainID:     d.ChainID,
		ChainOrder:  d.ChainOrder,
	}
	c.Location.Address = Normalize(c.Location.Address)

	if err := Validate(c); err != nil {
		return TimeCapsule{}, err
	}
	return c, nil
}
