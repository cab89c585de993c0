// Package engine implements the unlock eligibility engine.
//
// Each capsule moves through a three-state machine:
//
//	locked → eligible → unlocked (terminal)
//
// The transition guard is evaluated in a fixed order with short-circuit,
// and each failure carries a distinct reason rather than a generic error:
//
//  1. Viewer position known and inside the capsule's geofence, else
//     OUT_OF_RANGE. An unknown position always fails closed.
//  2. Current time at or past the unlock date, else TOO_EARLY.
//  3. For private capsules carrying a non-empty access key, the supplied
//     key must match exactly, else BAD_KEY. Public capsules skip this
//     guard entirely, as do private capsules with no key configured.
//
// Success commits exactly once: the capsule's isUnlocked flag flips to true,
// the id is idempotently added to the discovery ledger, and the collection
// is persisted. Failures mutate nothing. Re-invoking on an already-unlocked
// capsule is a no-op success that bypasses all three guards.
//
// Eligibility failures are expected, user-actionable states (get closer,
// come back later, bring the right key) and are returned as reason codes on
// the Decision, never as errors. Only store I/O failures surface as errors;
// those leave the operation not-committed.
//
// Evaluation is pure and synchronous: no suspension, no retries, no
// mid-flight cancellation. The commit is a single read-modify-write against
// the store with a single-writer assumption.
package engine
