package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/geocapsule/internal/store"
)

func newTestLedger() (*Ledger, *store.Memory) {
	kv := store.NewMemory()
	return New(store.NewRecords(kv)), kv
}

// TestLedger_EmptyOnFirstRun tests reads against a missing record.
func TestLedger_EmptyOnFirstRun(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	ok, err := l.HasDiscovered(ctx, "capsule_1")
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := l.ListDiscovered(ctx)
	require.NoError(t, err)
	assert.Empty(t, set)
}

// TestLedger_MarkThenHas tests basic membership.
func TestLedger_MarkThenHas(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	require.NoError(t, l.MarkDiscovered(ctx, "capsule_1"))

	ok, err := l.HasDiscovered(ctx, "capsule_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.HasDiscovered(ctx, "capsule_2")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestLedger_MarkIsIdempotent tests that re-marking adds no duplicate entry.
func TestLedger_MarkIsIdempotent(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	require.NoError(t, l.MarkDiscovered(ctx, "capsule_1"))
	require.NoError(t, l.MarkDiscovered(ctx, "capsule_1"))
	require.NoError(t, l.MarkDiscovered(ctx, "capsule_2"))

	ids, err := l.SortedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"capsule_1", "capsule_2"}, ids)
}

// TestLedger_MarkPersistsImmediately tests that each mutation writes through.
func TestLedger_MarkPersistsImmediately(t *testing.T) {
	kv := store.NewMemory()
	l := New(store.NewRecords(kv))
	ctx := context.Background()

	require.NoError(t, l.MarkDiscovered(ctx, "capsule_1"))

	// A fresh ledger over the same KV sees the entry.
	l2 := New(store.NewRecords(kv))
	ok, err := l2.HasDiscovered(ctx, "capsule_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestLedger_WriteFailureSurfaces tests the not-committed path.
func TestLedger_WriteFailureSurfaces(t *testing.T) {
	l, kv := newTestLedger()
	ctx := context.Background()

	kv.FailNextSet = assert.AnError
	err := l.MarkDiscovered(ctx, "capsule_1")
	require.Error(t, err)
	assert.True(t, store.IsIOError(err))

	ok, err := l.HasDiscovered(ctx, "capsule_1")
	require.NoError(t, err)
	assert.False(t, ok, "failed write must not commit")
}
