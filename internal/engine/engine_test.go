package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/geo"
	"github.com/roach88/geocapsule/internal/ledger"
	"github.com/roach88/geocapsule/internal/store"
	"github.com/roach88/geocapsule/internal/testutil"
)

// setupEngine builds an engine over an in-memory store seeded with the
// given capsules, pinned to testutil.BaseTime.
func setupEngine(t *testing.T, capsules ...capsule.TimeCapsule) (*Engine, *store.Records, *ledger.Ledger, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	records := store.NewRecords(kv)
	require.NoError(t, records.SaveCapsules(context.Background(), capsules))

	led := ledger.New(records)
	e := New(records, led, WithTimeSource(testutil.NewFixedClock(testutil.BaseTime)))
	return e, records, led, kv
}

func here() *geo.Point {
	return &geo.Point{Latitude: 37.7749, Longitude: -122.4194}
}

// TestUnlock_PublicInRangeAfterTime tests the success path: public capsule,
// viewer at the capsule coordinates, unlock date an hour in the past.
func TestUnlock_PublicInRangeAfterTime(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	e, records, led, _ := setupEngine(t, c)
	ctx := context.Background()

	d, err := e.Unlock(ctx, "capsule_a", here(), "")
	require.NoError(t, err)

	assert.Equal(t, StateUnlocked, d.State)
	assert.Equal(t, ReasonNone, d.Reason)
	assert.False(t, d.AlreadyUnlocked)

	stored, err := records.Capsules(ctx)
	require.NoError(t, err)
	assert.True(t, stored[0].IsUnlocked)

	ok, err := led.HasDiscovered(ctx, "capsule_a")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestUnlock_OutOfRange tests denial for a viewer ~200 m away.
func TestUnlock_OutOfRange(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	e, records, _, _ := setupEngine(t, c)
	ctx := context.Background()

	viewer := &geo.Point{Latitude: 37.7767, Longitude: -122.4194}
	d, err := e.Unlock(ctx, "capsule_a", viewer, "")
	require.NoError(t, err)

	assert.Equal(t, StateLocked, d.State)
	assert.Equal(t, ReasonOutOfRange, d.Reason)

	stored, err := records.Capsules(ctx)
	require.NoError(t, err)
	assert.False(t, stored[0].IsUnlocked, "denial must not mutate")
}

// TestUnlock_NilViewerFailsClosed tests the missing-position rule.
func TestUnlock_NilViewerFailsClosed(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", nil, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonOutOfRange, d.Reason)
}

// TestUnlock_TooEarly tests denial when the unlock date is in the future.
func TestUnlock_TooEarly(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	c.UnlockDate = testutil.BaseTime.Add(24 * time.Hour)
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", here(), "")
	require.NoError(t, err)

	assert.Equal(t, StateLocked, d.State)
	assert.Equal(t, ReasonTooEarly, d.Reason)
}

// TestUnlock_ExactUnlockInstantPasses tests that time >= unlockDate is in.
func TestUnlock_ExactUnlockInstantPasses(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	c.UnlockDate = testutil.BaseTime
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", here(), "")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, d.State)
}

// TestUnlock_BadKey tests denial on a private keyed capsule with a wrong key.
func TestUnlock_BadKey(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "secret7")
	e, records, led, _ := setupEngine(t, c)
	ctx := context.Background()

	d, err := e.Unlock(ctx, "capsule_a", here(), "wrong")
	require.NoError(t, err)

	assert.Equal(t, StateLocked, d.State)
	assert.Equal(t, ReasonBadKey, d.Reason)

	stored, err := records.Capsules(ctx)
	require.NoError(t, err)
	assert.False(t, stored[0].IsUnlocked)

	ok, err := led.HasDiscovered(ctx, "capsule_a")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestUnlock_CorrectKey tests the private keyed success path.
func TestUnlock_CorrectKey(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "secret7")
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", here(), "secret7")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, d.State)
}

// TestUnlock_PublicIgnoresStrayKey tests that the key guard never runs for
// public capsules, whatever key the record might carry.
func TestUnlock_PublicIgnoresStrayKey(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	// A public capsule cannot gain a key through New, but records written
	// by other tooling might carry one; the guard must still skip it.
	c.AccessKey = "stray"
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", here(), "")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, d.State)
}

// TestUnlock_PrivateWithoutKey_SkipsKeyGuard flags the surprising edge case:
// a private capsule created without a key is unlockable by anyone in range
// once the unlock time passes. "Private" here means not map-discoverable,
// not key-gated.
func TestUnlock_PrivateWithoutKey_SkipsKeyGuard(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "")
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", here(), "")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, d.State)
}

// TestUnlock_GuardOrder tests that the first failing guard wins: a capsule
// that is out of range AND too early AND badly keyed reports OUT_OF_RANGE.
func TestUnlock_GuardOrder(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "secret7")
	c.UnlockDate = testutil.BaseTime.Add(time.Hour)
	e, _, _, _ := setupEngine(t, c)

	d, err := e.Unlock(context.Background(), "capsule_a", nil, "wrong")
	require.NoError(t, err)
	assert.Equal(t, ReasonOutOfRange, d.Reason)

	// In range, still too early: time guard reports before the key guard.
	d, err = e.Unlock(context.Background(), "capsule_a", here(), "wrong")
	require.NoError(t, err)
	assert.Equal(t, ReasonTooEarly, d.Reason)
}

// TestUnlock_Idempotent tests that a second identical attempt is a no-op
// success with no duplicate ledger entry.
func TestUnlock_Idempotent(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	e, _, led, _ := setupEngine(t, c)
	ctx := context.Background()

	first, err := e.Unlock(ctx, "capsule_a", here(), "")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, first.State)
	assert.False(t, first.AlreadyUnlocked)

	second, err := e.Unlock(ctx, "capsule_a", here(), "")
	require.NoError(t, err)
	assert.Equal(t, StateUnlocked, second.State)
	assert.True(t, second.AlreadyUnlocked)

	ids, err := led.SortedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"capsule_a"}, ids)
}

// TestUnlock_MonotonicUnderInvalidAttempts tests that no later attempt,
// valid or invalid, reverts a committed unlock.
func TestUnlock_MonotonicUnderInvalidAttempts(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "secret7")
	e, records, _, _ := setupEngine(t, c)
	ctx := context.Background()

	_, err := e.Unlock(ctx, "capsule_a", here(), "secret7")
	require.NoError(t, err)

	// Out of range, wrong key, nil viewer: all bypass the guards as no-op
	// successes because the capsule is already unlocked.
	for _, attempt := range []struct {
		viewer *geo.Point
		key    string
	}{
		{nil, ""},
		{&geo.Point{Latitude: 0, Longitude: 0}, "wrong"},
		{here(), ""},
	} {
		d, err := e.Unlock(ctx, "capsule_a", attempt.viewer, attempt.key)
		require.NoError(t, err)
		assert.Equal(t, StateUnlocked, d.State)
		assert.True(t, d.AlreadyUnlocked)
	}

	stored, err := records.Capsules(ctx)
	require.NoError(t, err)
	assert.True(t, stored[0].IsUnlocked)
}

// TestUnlock_UnknownCapsule tests the missing-id error.
func TestUnlock_UnknownCapsule(t *testing.T) {
	e, _, _, _ := setupEngine(t)

	_, err := e.Unlock(context.Background(), "capsule_missing", here(), "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

// TestUnlock_StoreFailureNotCommitted tests that a failed capsule write
// leaves state unchanged and surfaces the I/O error.
func TestUnlock_StoreFailureNotCommitted(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)
	e, records, led, kv := setupEngine(t, c)
	ctx := context.Background()

	kv.FailNextSet = assert.AnError
	_, err := e.Unlock(ctx, "capsule_a", here(), "")
	require.Error(t, err)
	assert.True(t, store.IsIOError(err))

	stored, err := records.Capsules(ctx)
	require.NoError(t, err)
	assert.False(t, stored[0].IsUnlocked)

	ok, err := led.HasDiscovered(ctx, "capsule_a")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestEvaluate_Pure tests that evaluation mutates nothing.
func TestEvaluate_Pure(t *testing.T) {
	c := testutil.Capsule("capsule_a", 37.7749, -122.4194)

	d := Evaluate(c, here(), testutil.BaseTime, "")
	assert.Equal(t, StateEligible, d.State)
	assert.False(t, c.IsUnlocked, "Evaluate must not commit")

	// Same inputs, same decision.
	assert.Equal(t, d, Evaluate(c, here(), testutil.BaseTime, ""))
}

// TestEvaluate_NormalizesSuppliedKey tests that an NFD-typed key matches an
// NFC-stored key.
func TestEvaluate_NormalizesSuppliedKey(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "café")

	d := Evaluate(c, here(), testutil.BaseTime, "café")
	assert.Equal(t, StateEligible, d.State)
}

// TestEligibleNow_PrivateKeyedNeverCountsUntilUnlocked tests the aggregator
// helper: no key is on offer, so a keyed capsule only counts once committed.
func TestEligibleNow_PrivateKeyedNeverCountsUntilUnlocked(t *testing.T) {
	c := testutil.PrivateCapsule("capsule_a", 37.7749, -122.4194, "secret7")

	assert.False(t, EligibleNow(c, here(), testutil.BaseTime))

	c.IsUnlocked = true
	assert.True(t, EligibleNow(c, here(), testutil.BaseTime))
}

// TestReason_Messages tests the user-facing feedback lines.
func TestReason_Messages(t *testing.T) {
	assert.NotEmpty(t, ReasonOutOfRange.Message())
	assert.NotEmpty(t, ReasonTooEarly.Message())
	assert.NotEmpty(t, ReasonBadKey.Message())
	assert.Empty(t, ReasonNone.Message())
}
