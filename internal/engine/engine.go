package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/geo"
	"github.com/roach88/geocapsule/internal/ledger"
	"github.com/roach88/geocapsule/internal/store"
)

// State is a capsule's position in the unlock state machine.
type State string

const (
	// StateLocked means at least one guard denies the viewer.
	StateLocked State = "locked"

	// StateEligible means all guards pass but the unlock has not been
	// committed.
	StateEligible State = "eligible"

	// StateUnlocked is terminal; it never regresses.
	StateUnlocked State = "unlocked"
)

// Decision is the outcome of evaluating one capsule for one viewer at one
// instant. On denial, Reason names the first failing guard.
type Decision struct {
	CapsuleID string `json:"capsuleId"`
	State     State  `json:"state"`
	Reason    Reason `json:"reason,omitempty"`

	// AlreadyUnlocked marks the no-op success on a capsule that was
	// committed unlocked before this attempt.
	AlreadyUnlocked bool `json:"alreadyUnlocked,omitempty"`

	// Advisory carries a non-fatal operational condition, e.g. position
	// acquisition failure behind an OUT_OF_RANGE denial.
	Advisory Advisory `json:"advisory,omitempty"`
}

// Denied reports whether a guard rejected the attempt.
func (d Decision) Denied() bool {
	return d.Reason != ReasonNone
}

// Evaluate runs the guard set for one capsule. Pure: no side effects, no
// store access, deterministic given its inputs.
//
// An already-unlocked capsule short-circuits to a no-op success before any
// guard runs. Otherwise the guards run in order (geofence, time, key)
// and the first failure decides the outcome.
func Evaluate(c capsule.TimeCapsule, viewer *geo.Point, now time.Time, key string) Decision {
	d := Decision{CapsuleID: c.ID}

	if c.IsUnlocked {
		d.State = StateUnlocked
		d.AlreadyUnlocked = true
		return d
	}

	if !geo.WithinGeofence(viewer, c.Location) {
		d.State = StateLocked
		d.Reason = ReasonOutOfRange
		return d
	}

	if now.Before(c.UnlockDate) {
		d.State = StateLocked
		d.Reason = ReasonTooEarly
		return d
	}

	if !c.IsPublic && c.AccessKey != "" && capsule.Normalize(key) != c.AccessKey {
		d.State = StateLocked
		d.Reason = ReasonBadKey
		return d
	}

	d.State = StateEligible
	return d
}

// EligibleNow reports whether the viewer could unlock (or re-read) the
// capsule right now with no key supplied. The hotspot aggregator uses this
// for the any-unlockable flag: eligibility counts whether or not the unlock
// has been committed, and private keyed capsules can only count once
// actually unlocked, since no key is on offer.
func EligibleNow(c capsule.TimeCapsule, viewer *geo.Point, now time.Time) bool {
	d := Evaluate(c, viewer, now, "")
	return d.State == StateEligible || d.AlreadyUnlocked
}

// Engine evaluates unlock attempts and commits successful ones.
type Engine struct {
	records *store.Records
	ledger  *ledger.Ledger
	clock   TimeSource
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeSource replaces the wall clock; used by tests and the harness.
func WithTimeSource(ts TimeSource) Option {
	return func(e *Engine) {
		e.clock = ts
	}
}

// WithLogger sets the structured logger for unlock outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine over the given records and ledger.
func New(records *store.Records, led *ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		records: records,
		ledger:  led,
		clock:   WallClock{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Unlock evaluates and, on success, commits an unlock attempt.
//
// Denials return a Decision with the failing guard's reason and mutate
// nothing. Success persists the unlocked capsule, then marks the discovery
// ledger; both writes are immediate. A store failure returns an error and
// the operation counts as not-committed. The write ordering guarantees
// the ledger is only written after the capsule write succeeded, and a
// ledger failure is repaired by the idempotent re-mark on the next
// (no-op success) attempt.
//
// Re-invocation on an unlocked capsule is an idempotent success: no capsule
// write, a no-op ledger mark.
func (e *Engine) Unlock(ctx context.Context, id string, viewer *geo.Point, key string) (Decision, error) {
	capsules, err := e.records.Capsules(ctx)
	if err != nil {
		return Decision{}, err
	}

	idx := -1
	for i := range capsules {
		if capsules[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Decision{}, &NotFoundError{CapsuleID: id}
	}

	c := capsules[idx]
	d := Evaluate(c, viewer, e.clock.Now(), key)

	if d.Denied() {
		e.logger.Info("unlock denied",
			slog.String("capsule", id),
			slog.String("reason", string(d.Reason)))
		return d, nil
	}

	if d.AlreadyUnlocked {
		// Idempotent read of content; the ledger mark is a no-op when the
		// id is already recorded.
		if err := e.ledger.MarkDiscovered(ctx, id); err != nil {
			return Decision{}, err
		}
		return d, nil
	}

	c.IsUnlocked = true
	capsules[idx] = c
	if err := e.records.SaveCapsules(ctx, capsules); err != nil {
		return Decision{}, err
	}
	if err := e.ledger.MarkDiscovered(ctx, id); err != nil {
		return Decision{}, err
	}

	d.State = StateUnlocked
	e.logger.Info("capsule unlocked", slog.String("capsule", id))
	return d, nil
}
