package capsule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewCapsuleID returns a fresh capsule identifier.
func NewCapsuleID() string {
	return "capsule_" + uuid.NewString()
}

// NewMediaID returns a fresh media attachment identifier.
func NewMediaID() string {
	return "media_" + uuid.NewString()
}

// NewChainID returns a fresh memory chain identifier.
func NewChainID() string {
	return "chain_" + uuid.NewString()
}

// NewUserID returns the first-run user identifier, derived from the creation
// time in milliseconds. The persisted schema expects user_<timestamp>.
func NewUserID(now time.Time) string {
	return fmt.Sprintf("user_%d", now.UnixMilli())
}
