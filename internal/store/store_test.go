package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore creates a SQLite store in a temp directory.
func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSQLite_GetMissingKey tests that absence is not an error.
func TestSQLite_GetMissingKey(t *testing.T) {
	s := openTestStore(t)

	value, ok, err := s.Get(context.Background(), "capsules")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

// TestSQLite_SetGetRoundTrip tests basic persistence.
func TestSQLite_SetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", []byte(`{"id":"user_1"}`)))

	value, ok, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"user_1"}`, string(value))
}

// TestSQLite_SetReplacesWholeValue tests full-record replacement.
func TestSQLite_SetReplacesWholeValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "discovered", []byte(`["a"]`)))
	require.NoError(t, s.Set(ctx, "discovered", []byte(`["b","c"]`)))

	value, ok, err := s.Get(ctx, "discovered")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["b","c"]`, string(value))
}

// TestSQLite_DeleteIsIdempotent tests delete of present and absent keys.
func TestSQLite_DeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op, not an error.
	require.NoError(t, s.Delete(ctx, "k"))
}

// TestOpen_Idempotent tests reopening an existing database.
func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.db"

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(context.Background(), "user", []byte(`{"id":"user_1"}`)))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	value, ok, err := s2.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"user_1"}`, string(value))
}

// TestMemory_MatchesKVContract tests the in-memory implementation against
// the same contract the SQLite store honors.
func TestMemory_MatchesKVContract(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v1")))
	require.NoError(t, m.Set(ctx, "k", []byte("v2")))

	value, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestMemory_FailNextSet tests the injected write failure used by engine
// tests to exercise the not-committed path.
func TestMemory_FailNextSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.FailNextSet = assert.AnError
	err := m.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.True(t, IsIOError(err))

	// Failure is one-shot.
	require.NoError(t, m.Set(ctx, "k", []byte("v")))
}

// TestIsIOError tests error type checking through wrapping.
func TestIsIOError(t *testing.T) {
	err := &IOError{Op: "set", Key: "capsules", Err: assert.AnError}
	assert.True(t, IsIOError(err))
	assert.False(t, IsIOError(assert.AnError))
	assert.False(t, IsIOError(nil))
}
