// Package capsule defines the domain records for geocapsule: time capsules,
// their locations, media attachments, memory chains, the single pseudo-user,
// and the derived map hotspot.
//
// Records are plain structs with camelCase JSON tags matching the persisted
// schema (dates serialize as RFC 3339 / ISO-8601). User-entered strings are
// NFC-normalized at construction so that later equality checks (notably the
// access-key guard) compare canonical forms.
//
// INVARIANTS (construction-time, enforced by Validate):
//   - radius > 0
//   - unlockDate > createdDate
//   - accessKey set only when isPublic=false
//   - media kinds are a closed set (image, audio, video)
//
// isUnlocked is monotonic: once true it never reverts. The engine is the only
// writer of that field.
package capsule
