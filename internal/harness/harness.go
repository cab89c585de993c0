// Package harness executes YAML conformance scenarios against an
// in-memory stack: a pinned clock, a scripted viewer position and the
// full unlock pipeline. Each run produces a deterministic trace suitable
// for golden-file comparison.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/geocapsule/internal/app"
	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/geo"
	"github.com/roach88/geocapsule/internal/geoloc"
	"github.com/roach88/geocapsule/internal/store"
	"github.com/roach88/geocapsule/internal/testutil"
)

// TraceEvent is one recorded step outcome. Field order is the JSON order
// in golden files.
type TraceEvent struct {
	Seq int    `json:"seq"`
	Op  string `json:"op"`

	// Detail describes move and advance steps ("37.7749,-122.4194",
	// "none", "24h0m0s").
	Detail string `json:"detail,omitempty"`

	Capsule         string `json:"capsule,omitempty"`
	State           string `json:"state,omitempty"`
	Reason          string `json:"reason,omitempty"`
	AlreadyUnlocked bool   `json:"alreadyUnlocked,omitempty"`

	Hotspots   []HotspotSummary `json:"hotspots,omitempty"`
	Discovered []string         `json:"discovered,omitempty"`
}

// HotspotSummary is the trace rendering of one hotspot.
type HotspotSummary struct {
	ID          string `json:"id"`
	Count       int    `json:"count"`
	HasUnlocked bool   `json:"hasUnlocked"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Trace []TraceEvent

	// Failures lists expectation and assertion mismatches. Empty means the
	// scenario passed.
	Failures []string
}

// Passed reports whether every expectation and assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// scriptedProvider reports whatever position the running scenario has
// walked the viewer to.
type scriptedProvider struct {
	viewer **geo.Point
}

func (p scriptedProvider) Current(ctx context.Context) (geo.Point, error) {
	if *p.viewer == nil {
		return geo.Point{}, &geoloc.PositionError{Code: geoloc.CodePositionUnavailable}
	}
	return **p.viewer, nil
}

// Run executes a scenario against a fresh in-memory stack. Errors are
// infrastructure problems only; domain mismatches land in
// Result.Failures.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	start, err := time.Parse(time.RFC3339, scenario.Start)
	if err != nil {
		return nil, fmt.Errorf("parsing start: %w", err)
	}
	clock := testutil.NewFixedClock(start)

	var viewer *geo.Point
	svc := app.New(store.NewMemory(),
		app.WithTimeSource(clock),
		app.WithProvider(scriptedProvider{viewer: &viewer}))

	capsules := make([]capsule.TimeCapsule, 0, len(scenario.Capsules))
	for i, spec := range scenario.Capsules {
		c, err := buildCapsule(spec)
		if err != nil {
			return nil, fmt.Errorf("capsules[%d]: %w", i, err)
		}
		capsules = append(capsules, c)
	}
	if err := svc.Records().SaveCapsules(ctx, capsules); err != nil {
		return nil, fmt.Errorf("seeding capsules: %w", err)
	}

	result := &Result{}
	for i, step := range scenario.Flow {
		event := TraceEvent{Seq: i + 1, Op: step.Op}

		switch step.Op {
		case OpMove:
			if step.Lat == nil {
				viewer = nil
				event.Detail = "none"
			} else {
				viewer = &geo.Point{Latitude: *step.Lat, Longitude: *step.Lon}
				event.Detail = fmt.Sprintf("%v,%v", *step.Lat, *step.Lon)
			}

		case OpAdvance:
			d, err := time.ParseDuration(step.Duration)
			if err != nil {
				return nil, fmt.Errorf("flow[%d]: bad duration: %w", i, err)
			}
			clock.Advance(d)
			event.Detail = d.String()

		case OpUnlock:
			d, err := svc.Unlock(ctx, step.Capsule, step.Key)
			if err != nil {
				return nil, fmt.Errorf("flow[%d]: unlock %s: %w", i, step.Capsule, err)
			}
			event.Capsule = d.CapsuleID
			event.State = string(d.State)
			event.Reason = string(d.Reason)
			event.AlreadyUnlocked = d.AlreadyUnlocked

			if step.Expect != nil {
				if step.Expect.State != event.State {
					result.Failures = append(result.Failures, fmt.Sprintf(
						"flow[%d]: unlock %s: state %q, want %q", i, step.Capsule, event.State, step.Expect.State))
				}
				if step.Expect.Reason != event.Reason {
					result.Failures = append(result.Failures, fmt.Sprintf(
						"flow[%d]: unlock %s: reason %q, want %q", i, step.Capsule, event.Reason, step.Expect.Reason))
				}
			}

		case OpMap:
			hotspots, err := svc.Hotspots(ctx)
			if err != nil {
				return nil, fmt.Errorf("flow[%d]: map: %w", i, err)
			}
			for _, h := range hotspots {
				event.Hotspots = append(event.Hotspots, HotspotSummary{
					ID:          h.ID,
					Count:       h.CapsuleCount,
					HasUnlocked: h.HasUnlocked,
				})
			}

		case OpDiscover:
			ids, err := svc.Records().Discovered(ctx)
			if err != nil {
				return nil, fmt.Errorf("flow[%d]: discover: %w", i, err)
			}
			event.Discovered = ids

		case OpDelete:
			if err := svc.DeleteCapsule(ctx, step.Capsule); err != nil {
				return nil, fmt.Errorf("flow[%d]: delete %s: %w", i, step.Capsule, err)
			}
			event.Capsule = step.Capsule

		default:
			return nil, fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}

		result.Trace = append(result.Trace, event)
	}

	if err := checkAssertions(ctx, svc, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// buildCapsule expands scenario shorthand into a full capsule. The
// creation date backdates one day before the unlock date to satisfy the
// construction invariants.
func buildCapsule(spec CapsuleSpec) (capsule.TimeCapsule, error) {
	unlockAt, err := time.Parse(time.RFC3339, spec.Unlock)
	if err != nil {
		return capsule.TimeCapsule{}, fmt.Errorf("unlock: %w", err)
	}

	c := capsule.TimeCapsule{
		ID:         spec.ID,
		Title:      spec.Title,
		Message:    "scenario capsule",
		MediaFiles: []capsule.MediaFile{},
		Location: capsule.Location{
			Latitude:  spec.Lat,
			Longitude: spec.Lon,
			Address:   spec.Title,
			Radius:    spec.Radius,
		},
		UnlockDate:  unlockAt,
		CreatedDate: unlockAt.Add(-24 * time.Hour),
		CreatedBy:   "user_scenario",
		IsPublic:    !spec.Private,
		AccessKey:   capsule.Normalize(spec.Key),
	}
	if err := capsule.Validate(c); err != nil {
		return capsule.TimeCapsule{}, err
	}
	return c, nil
}

// checkAssertions evaluates final-state assertions into Result.Failures.
func checkAssertions(ctx context.Context, svc *app.Service, scenario *Scenario, result *Result) error {
	for i, a := range scenario.Assertions {
		switch a.Type {
		case AssertUnlocked:
			c, err := svc.Capsule(ctx, a.Capsule)
			if err != nil {
				result.Failures = append(result.Failures, fmt.Sprintf(
					"assertions[%d]: capsule %s: %v", i, a.Capsule, err))
				continue
			}
			if c.IsUnlocked != a.Value {
				result.Failures = append(result.Failures, fmt.Sprintf(
					"assertions[%d]: capsule %s: isUnlocked=%v, want %v", i, a.Capsule, c.IsUnlocked, a.Value))
			}

		case AssertDiscovered:
			ids, err := svc.Records().Discovered(ctx)
			if err != nil {
				return fmt.Errorf("assertions[%d]: %w", i, err)
			}
			if !equalStrings(ids, a.Capsules) {
				result.Failures = append(result.Failures, fmt.Sprintf(
					"assertions[%d]: discovered %v, want %v", i, ids, a.Capsules))
			}

		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
