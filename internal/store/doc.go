// Package store provides the durable key-value persistence behind the
// capsule collection, memory chains, the user profile, and the discovery
// ledger.
//
// The core consumes the KV interface only: get-by-key, set-by-key, delete.
// Reads of a missing key report absence rather than an error; writes replace
// the whole record. Callers read-modify-write entire collections; there is
// no partial patch and no transaction across keys. The design assumes a
// single active writer per database.
//
// Two implementations ship here:
//   - SQLite (production): WAL mode, NORMAL synchronous, busy timeout,
//     single-writer connection pool, schema migrations via user_version.
//   - Memory (tests, harness): a map guarded by a mutex.
//
// records.go holds the typed codecs for the four fixed keys:
// "capsules", "chains", "user", "discovered". All values are JSON with
// RFC 3339 timestamps.
package store
