package capsule

import (
	"encoding/json"
	"fmt"
)

// MediaKind is the closed set of media attachment kinds.
// Consumers must switch exhaustively over the three values; UnmarshalJSON
// rejects anything outside the set so an unknown tag can never leak past the
// decode boundary.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

// Valid reports whether k is one of the three known kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case KindImage, KindAudio, KindVideo:
		return true
	}
	return false
}

// Label returns a short human-readable label for the kind.
func (k MediaKind) Label() string {
	switch k {
	case KindImage:
		return "Image"
	case KindAudio:
		return "Audio"
	case KindVideo:
		return "Video"
	default:
		return "Unknown"
	}
}

// UnmarshalJSON enforces the closed kind set at the decode boundary.
func (k *MediaKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("media kind: %w", err)
	}
	kind := MediaKind(s)
	if !kind.Valid() {
		return fmt.Errorf("media kind: unknown kind %q", s)
	}
	*k = kind
	return nil
}

// MediaFile is an opaque media attachment. Encoding and upload are external
// concerns; the core only carries the reference.
type MediaFile struct {
	ID       string    `json:"id"`
	Kind     MediaKind `json:"type"`
	URL      string    `json:"url"`
	Filename string    `json:"filename"`
}
