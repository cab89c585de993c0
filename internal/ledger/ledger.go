// Package ledger implements the discovery ledger: the idempotent record of
// capsule ids the viewer has successfully unlocked at least once.
//
// Membership only, no ordering guarantee among entries. Every mutation is
// persisted immediately through the store; there is no batching.
package ledger

import (
	"context"
	"sort"

	"github.com/roach88/geocapsule/internal/store"
)

// Ledger tracks discovered capsule ids for the single session viewer.
type Ledger struct {
	records *store.Records
}

// New creates a ledger over the given record store.
func New(records *store.Records) *Ledger {
	return &Ledger{records: records}
}

// HasDiscovered reports whether the id has been recorded.
func (l *Ledger) HasDiscovered(ctx context.Context, id string) (bool, error) {
	ids, err := l.records.Discovered(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// MarkDiscovered records the id. Adding an already-present id is a no-op
// and does not rewrite the record.
func (l *Ledger) MarkDiscovered(ctx context.Context, id string) error {
	ids, err := l.records.Discovered(ctx)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return l.records.SaveDiscovered(ctx, append(ids, id))
}

// ListDiscovered returns the discovered id set.
func (l *Ledger) ListDiscovered(ctx context.Context) (map[string]struct{}, error) {
	ids, err := l.records.Discovered(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// SortedIDs returns the discovered ids in lexical order for stable display.
func (l *Ledger) SortedIDs(ctx context.Context) ([]string, error) {
	ids, err := l.records.Discovered(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
