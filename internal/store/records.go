package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/geocapsule/internal/capsule"
)

// The four fixed record keys. Each holds one whole JSON document.
const (
	KeyCapsules   = "capsules"
	KeyChains     = "chains"
	KeyUser       = "user"
	KeyDiscovered = "discovered"
)

// Records wraps a KV with the typed whole-record codecs for the persisted
// schema. Every accessor reads or replaces an entire record; callers
// read-modify-write collections themselves.
type Records struct {
	kv KV
}

// NewRecords creates typed record access over the given KV.
func NewRecords(kv KV) *Records {
	return &Records{kv: kv}
}

// KV returns the underlying key-value store.
func (r *Records) KV() KV {
	return r.kv
}

// Capsules returns the stored capsule collection, empty if absent.
func (r *Records) Capsules(ctx context.Context) ([]capsule.TimeCapsule, error) {
	var capsules []capsule.TimeCapsule
	if err := r.read(ctx, KeyCapsules, &capsules); err != nil {
		return nil, err
	}
	if capsules == nil {
		capsules = []capsule.TimeCapsule{}
	}
	return capsules, nil
}

// SaveCapsules replaces the whole capsule collection.
func (r *Records) SaveCapsules(ctx context.Context, capsules []capsule.TimeCapsule) error {
	return r.write(ctx, KeyCapsules, capsules)
}

// Chains returns the stored memory chains, empty if absent.
// Passthrough only: no traversal logic consumes these.
func (r *Records) Chains(ctx context.Context) ([]capsule.MemoryChain, error) {
	var chains []capsule.MemoryChain
	if err := r.read(ctx, KeyChains, &chains); err != nil {
		return nil, err
	}
	if chains == nil {
		chains = []capsule.MemoryChain{}
	}
	return chains, nil
}

// SaveChains replaces the whole chain collection.
func (r *Records) SaveChains(ctx context.Context, chains []capsule.MemoryChain) error {
	return r.write(ctx, KeyChains, chains)
}

// User returns the stored user profile, or ok=false on first run.
func (r *Records) User(ctx context.Context) (capsule.User, bool, error) {
	data, ok, err := r.kv.Get(ctx, KeyUser)
	if err != nil {
		return capsule.User{}, false, err
	}
	if !ok {
		return capsule.User{}, false, nil
	}

	var u capsule.User
	if err := json.Unmarshal(data, &u); err != nil {
		return capsule.User{}, false, fmt.Errorf("decode record %q: %w", KeyUser, err)
	}
	return u, true, nil
}

// SaveUser replaces the user profile.
func (r *Records) SaveUser(ctx context.Context, u capsule.User) error {
	return r.write(ctx, KeyUser, u)
}

// Discovered returns the discovered capsule ids, empty if absent.
func (r *Records) Discovered(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.read(ctx, KeyDiscovered, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// SaveDiscovered replaces the discovered id list.
func (r *Records) SaveDiscovered(ctx context.Context, ids []string) error {
	return r.write(ctx, KeyDiscovered, ids)
}

// read decodes the record under key into out; a missing key leaves out
// untouched (reads return empty values for absent records).
func (r *Records) read(ctx context.Context, key string, out any) error {
	data, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record %q: %w", key, err)
	}
	return nil
}

// write encodes v and replaces the record under key.
func (r *Records) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	return r.kv.Set(ctx, key, data)
}
