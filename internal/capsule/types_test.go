package capsule

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Title:      "Golden Gate memories",
		Message:    "We were here.",
		Location:   Location{Latitude: 37.7749, Longitude: -122.4194, Address: "San Francisco", Radius: 50},
		UnlockDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:  "user_1",
		IsPublic:   true,
	}
}

// TestNew_FillsGeneratedFields tests id, createdDate and locked state.
func TestNew_FillsGeneratedFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c, err := New(validDraft(), now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(c.ID, "capsule_"))
	assert.Equal(t, now, c.CreatedDate)
	assert.False(t, c.IsUnlocked)
}

// TestNew_UniqueIDs tests that consecutive capsules get distinct ids.
func TestNew_UniqueIDs(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	a, err := New(validDraft(), now)
	require.NoError(t, err)
	b, err := New(validDraft(), now)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

// TestNew_NormalizesStrings tests NFC normalization of user input.
func TestNew_NormalizesStrings(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	d := validDraft()
	d.IsPublic = false
	// "é" as 'e' + combining acute accent (NFD); NFC is the single rune.
	d.AccessKey = "café"
	d.Title = "Café"

	c, err := New(d, now)
	require.NoError(t, err)

	assert.Equal(t, "café", c.AccessKey)
	assert.Equal(t, "Café", c.Title)
}

// TestNew_RejectsUnlockBeforeCreation tests unlockDate > createdDate.
func TestNew_RejectsUnlockBeforeCreation(t *testing.T) {
	now := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	_, err := New(validDraft(), now) // unlockDate is 2026-06-01
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unlockDate", verr.Field)
}

// TestNew_RejectsKeyOnPublicCapsule tests the construction-time key rule.
func TestNew_RejectsKeyOnPublicCapsule(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d := validDraft()
	d.AccessKey = "secret7"

	_, err := New(d, now)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "accessKey", verr.Field)
}

// TestNew_AllowsPrivateWithoutKey tests that a keyless private capsule is valid.
func TestNew_AllowsPrivateWithoutKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d := validDraft()
	d.IsPublic = false

	c, err := New(d, now)
	require.NoError(t, err)
	assert.Empty(t, c.AccessKey)
}

// TestValidateLocation_Ranges tests coordinate and radius bounds.
func TestValidateLocation_Ranges(t *testing.T) {
	assert.NoError(t, ValidateLocation(Location{Latitude: 90, Longitude: -180, Radius: 1}))
	assert.Error(t, ValidateLocation(Location{Latitude: 91, Longitude: 0, Radius: 1}))
	assert.Error(t, ValidateLocation(Location{Latitude: 0, Longitude: 181, Radius: 1}))
	assert.Error(t, ValidateLocation(Location{Latitude: 0, Longitude: 0, Radius: 0}))
	assert.Error(t, ValidateLocation(Location{Latitude: 0, Longitude: 0, Radius: -5}))
}

// TestTimeCapsule_JSONRoundTrip tests the persisted camelCase schema.
func TestTimeCapsule_JSONRoundTrip(t *testing.T) {
	c := TimeCapsule{
		ID:          "capsule_1",
		Title:       "Hello",
		Message:     "World",
		MediaFiles:  []MediaFile{{ID: "media_1", Kind: KindImage, URL: "u", Filename: "f.jpg"}},
		Location:    Location{Latitude: 1, Longitude: 2, Address: "a", Radius: 50},
		UnlockDate:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		CreatedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "user_1",
		IsPublic:    true,
		IsUnlocked:  true,
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	// ISO-8601 dates and camelCase field names.
	assert.Contains(t, string(data), `"unlockDate":"2026-06-01T00:00:00Z"`)
	assert.Contains(t, string(data), `"isPublic":true`)
	assert.NotContains(t, string(data), "accessKey", "empty key must be omitted")

	var back TimeCapsule
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)
}

// TestNewUserID_TimestampFormat tests the user_<timestamp> id scheme.
func TestNewUserID_TimestampFormat(t *testing.T) {
	now := time.UnixMilli(1735689600000)
	assert.Equal(t, "user_1735689600000", NewUserID(now))
}
